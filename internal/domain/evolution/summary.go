package evolution

import "sort"

// BuildRoleSummaries groups employees by role, sorted by role name.
func BuildRoleSummaries(employees []EmployeeAggregate) []RoleSummary {
	type acc struct {
		count     int
		score     float64
		growth    float64
		attention int
		strength  int
	}
	byRole := map[string]*acc{}
	for _, e := range employees {
		a := byRole[e.Role]
		if a == nil {
			a = &acc{}
			byRole[e.Role] = a
		}
		a.count++
		a.score += e.CurrentScore
		a.growth += e.GrowthValue()
		switch e.Status {
		case StatusAttention:
			a.attention++
		case StatusStrength:
			a.strength++
		}
	}

	out := make([]RoleSummary, 0, len(byRole))
	for role, a := range byRole {
		out = append(out, RoleSummary{
			Role:          role,
			Employees:     a.count,
			AvgScore:      round1(a.score / float64(a.count)),
			AvgGrowth:     round1(a.growth / float64(a.count)),
			Attention:     a.attention,
			StrengthCount: a.strength,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}
