package evolution

import (
	"testing"
	"time"

	"skima/internal/domain/skills"
)

func TestProfileExcludesNotApplicableAndAbsentSkills(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.profile("Dev", day(2020, 1, 1), map[int64]skills.Criticality{
		1: skills.CriticalityCritical,
		2: skills.CriticalityNotApplicable,
	})
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 4.0, 2: 1.0, 3: 1.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if got := res.Employees[0].CurrentScore; got != 4.0 {
		t.Fatalf("expected only the critical skill to count, got %v", got)
	}
}

func TestMissingProfileFailsOpen(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "NoProfile")
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 4.0, 2: 2.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if got := res.Employees[0].CurrentScore; got != 3.0 {
		t.Fatalf("expected every assessed skill to count, got %v", got)
	}
}

func TestSessionBeforeProfileFailsOpen(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.profile("Dev", day(2025, 3, 1), map[int64]skills.Criticality{1: skills.CriticalityCritical})
	r.session(1, day(2025, 2, 1), map[int64]float64{1: 4.0, 2: 2.0})
	r.session(1, day(2025, 4, 1), map[int64]float64{1: 4.0, 2: 2.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if got := res.Employees[0].Sparkline; got[0] != 3.0 || got[1] != 4.0 {
		t.Fatalf("expected [3 4], got %v", got)
	}
}

func TestSessionRoleWinsOverCurrentRole(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Lead")
	r.profile("Dev", day(2020, 1, 1), map[int64]skills.Criticality{1: skills.CriticalityCritical, 2: skills.CriticalityNotApplicable})
	r.profile("Lead", day(2020, 1, 1), map[int64]skills.Criticality{1: skills.CriticalityNotApplicable, 2: skills.CriticalityCritical})
	r.sessionAs(1, "Dev", day(2025, 2, 1), map[int64]float64{1: 4.0, 2: 2.0})
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 4.0, 2: 2.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	e := res.Employees[0]
	if e.StartScore != 4.0 || e.CurrentScore != 2.0 {
		t.Fatalf("expected historical session scored under Dev profile, got start=%v current=%v", e.StartScore, e.CurrentScore)
	}
	if e.GrowthTrend != TrendDown {
		t.Fatalf("expected down trend, got %s", e.GrowthTrend)
	}
}

func TestProfilesFetchedOncePerRole(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.collaborator(2, "Luis", "Dev")
	r.session(1, day(2025, 2, 1), map[int64]float64{1: 3.0})
	r.session(1, day(2025, 3, 1), map[int64]float64{1: 3.0})
	r.session(2, day(2025, 4, 1), map[int64]float64{1: 3.0})

	compute(t, r, RangeSpec{Preset: "12m"})
	if r.profileCalls["Dev"] != 1 {
		t.Fatalf("expected one lookup for Dev, got %d", r.profileCalls["Dev"])
	}
}

func TestArchivedSkillDoesNotCount(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	id := r.session(1, day(2025, 5, 1), map[int64]float64{1: 4.0, 2: 1.0})
	for i := range r.assessments[id] {
		if r.assessments[id][i].SkillID == 2 {
			r.assessments[id][i].SkillActive = false
		}
	}

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if got := res.Employees[0].CurrentScore; got != 4.0 {
		t.Fatalf("expected archived skill ignored, got %v", got)
	}
}

func TestCountsToward(t *testing.T) {
	profile := &skills.RoleProfile{
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Skills:    map[int64]skills.Criticality{1: skills.CriticalityDesirable, 2: skills.CriticalityNotApplicable},
	}
	after := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		a     skills.Assessment
		at    time.Time
		p     *skills.RoleProfile
		count bool
	}{
		{"desirable", skills.Assessment{SkillID: 1, Level: 2, SkillActive: true}, after, profile, true},
		{"not applicable", skills.Assessment{SkillID: 2, Level: 2, SkillActive: true}, after, profile, false},
		{"absent", skills.Assessment{SkillID: 3, Level: 2, SkillActive: true}, after, profile, false},
		{"zero level", skills.Assessment{SkillID: 1, Level: 0, SkillActive: true}, after, profile, false},
		{"negative level", skills.Assessment{SkillID: 1, Level: -1, SkillActive: true}, after, nil, false},
		{"archived", skills.Assessment{SkillID: 1, Level: 2}, after, nil, false},
		{"no profile", skills.Assessment{SkillID: 9, Level: 2, SkillActive: true}, after, nil, true},
		{"predates profile", skills.Assessment{SkillID: 2, Level: 2, SkillActive: true}, profile.CreatedAt.Add(-time.Hour), profile, true},
	}
	for _, tc := range cases {
		if got := countsToward(tc.a, tc.at, tc.p); got != tc.count {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.count, got)
		}
	}
}
