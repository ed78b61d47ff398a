package evolution

import "sort"

// topImprover picks the largest growth among rising employees. Equal growth
// goes to the more recent evaluation, then to the lower id.
func topImprover(employees []EmployeeAggregate) *EmployeeAggregate {
	var best *EmployeeAggregate
	for i := range employees {
		e := &employees[i]
		if e.GrowthTrend != TrendUp {
			continue
		}
		if best == nil || betterImprover(e, best) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

func betterImprover(a, b *EmployeeAggregate) bool {
	if a.GrowthValue() != b.GrowthValue() {
		return a.GrowthValue() > b.GrowthValue()
	}
	if !a.LastEvaluatedAt.Equal(b.LastEvaluatedAt) {
		return a.LastEvaluatedAt.After(b.LastEvaluatedAt)
	}
	return a.ID < b.ID
}

func supportReasons(e EmployeeAggregate) []string {
	var reasons []string
	if e.Status == StatusAttention {
		reasons = append(reasons, ReasonLowScore)
	}
	if e.GrowthTrend == TrendDown {
		reasons = append(reasons, ReasonDeclining)
	}
	return reasons
}

func extractInsights(employees []EmployeeAggregate) Insights {
	cases := []SupportCase{}
	for _, e := range employees {
		reasons := supportReasons(e)
		if len(reasons) == 0 {
			continue
		}
		cases = append(cases, SupportCase{EmployeeAggregate: e, Reasons: reasons, CriticalGaps: e.criticalGaps})
	}
	sort.SliceStable(cases, func(i, j int) bool {
		a, b := cases[i], cases[j]
		if a.CriticalGaps != b.CriticalGaps {
			return a.CriticalGaps > b.CriticalGaps
		}
		if a.CurrentScore != b.CurrentScore {
			return a.CurrentScore < b.CurrentScore
		}
		return a.ID < b.ID
	})
	return Insights{
		TopImprover:  topImprover(employees),
		SupportCases: cases,
		SupportCount: len(cases),
	}
}
