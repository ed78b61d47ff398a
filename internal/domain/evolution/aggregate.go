package evolution

import (
	"math"

	"skima/internal/domain/skills"
)

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func growthTrend(growth float64) Trend {
	switch {
	case growth > TrendDeadZone:
		return TrendUp
	case growth < -TrendDeadZone:
		return TrendDown
	default:
		return TrendStable
	}
}

// sessionScore is the rounded mean of the eligible levels in one session.
// ok is false when nothing in the session counts.
func sessionScore(s sessionInput) (float64, bool) {
	var sum float64
	var n int
	for _, a := range s.Assessments {
		if !countsToward(a, s.Session.EvaluatedAt, s.Profile) {
			continue
		}
		sum += a.Level
		n++
	}
	if n == 0 {
		return 0, false
	}
	return round1(sum / float64(n)), true
}

// criticalGaps counts the critical skills below CriticalGapBelow in one
// session. With a usable profile every skill the profile tags critical is
// checked and an unassessed one counts as level 0. Without one the tag
// recorded on each assessment decides.
func criticalGaps(s sessionInput) int {
	if s.Profile == nil || s.Session.EvaluatedAt.Before(s.Profile.CreatedAt) {
		gaps := 0
		for _, a := range s.Assessments {
			if !a.SkillActive || a.Level >= CriticalGapBelow {
				continue
			}
			if a.Criticality == skills.CriticalityCritical {
				gaps++
			}
		}
		return gaps
	}

	levels := make(map[int64]float64, len(s.Assessments))
	archived := map[int64]bool{}
	for _, a := range s.Assessments {
		if !a.SkillActive {
			archived[a.SkillID] = true
			continue
		}
		levels[a.SkillID] = a.Level
	}
	gaps := 0
	for skillID, tag := range s.Profile.Skills {
		if tag != skills.CriticalityCritical || archived[skillID] {
			continue
		}
		if levels[skillID] < CriticalGapBelow {
			gaps++
		}
	}
	return gaps
}

// aggregateEmployee reduces one collaborator's sessions to an aggregate.
// ok is false when no session produced a score.
func aggregateEmployee(in employeeInput) (EmployeeAggregate, bool) {
	var history []scorePoint
	for _, s := range in.Sessions {
		score, ok := sessionScore(s)
		if !ok {
			continue
		}
		history = append(history, scorePoint{At: s.Session.EvaluatedAt, Score: score})
	}
	if len(history) == 0 {
		return EmployeeAggregate{}, false
	}
	// gaps come from the latest session in range, scored or not
	latest := in.Sessions[len(in.Sessions)-1]

	sparkline := make([]float64, len(history))
	for i, p := range history {
		sparkline[i] = p.Score
	}
	start := sparkline[0]
	current := sparkline[len(sparkline)-1]

	agg := EmployeeAggregate{
		ID:              in.Collaborator.ID,
		Name:            in.Collaborator.Name,
		Role:            in.Collaborator.Role,
		CurrentScore:    current,
		StartScore:      start,
		GrowthTrend:     TrendStable,
		IsNewHire:       len(history) == 1,
		LastEvaluatedAt: history[len(history)-1].At,
		LastEvaluated:   history[len(history)-1].At.Format(dateLayout),
		Sparkline:       sparkline,
		Status:          ClassifyStatus(current),
		history:         history,
		criticalGaps:    criticalGaps(latest),
	}
	if !agg.IsNewHire {
		growth := round1(current - start)
		agg.Growth = &growth
		agg.GrowthTrend = growthTrend(growth)
	}
	return agg, true
}
