package evolution

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"skima/internal/domain/skills"
)

func TestClassifyStatus(t *testing.T) {
	cases := map[float64]Status{
		1.5: StatusAttention,
		2.4: StatusAttention,
		2.5: StatusCompetent,
		3.0: StatusCompetent,
		3.5: StatusStrength,
		4.0: StatusStrength,
	}
	for score, want := range cases {
		if got := ClassifyStatus(score); got != want {
			t.Fatalf("score %.1f: expected %s, got %s", score, want, got)
		}
	}
}

func TestGrowthTrendDeadZone(t *testing.T) {
	cases := map[float64]Trend{
		0.1:   TrendStable,
		-0.1:  TrendStable,
		0:     TrendStable,
		0.11:  TrendUp,
		-0.11: TrendDown,
	}
	for growth, want := range cases {
		if got := growthTrend(growth); got != want {
			t.Fatalf("growth %.2f: expected %s, got %s", growth, want, got)
		}
	}
}

func TestTwoSessionsRoundTrip(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.session(1, day(2025, 2, 1), map[int64]float64{1: 2.0})
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 4.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	e := findEmployee(res, 1)
	if e == nil {
		t.Fatal("expected employee 1")
	}
	if !reflect.DeepEqual(e.Sparkline, []float64{2.0, 4.0}) {
		t.Fatalf("unexpected sparkline %v", e.Sparkline)
	}
	if e.StartScore != 2.0 || e.CurrentScore != 4.0 {
		t.Fatalf("unexpected scores start=%v current=%v", e.StartScore, e.CurrentScore)
	}
	if e.Growth == nil || *e.Growth != 2.0 || e.GrowthTrend != TrendUp {
		t.Fatalf("unexpected growth %v %s", e.Growth, e.GrowthTrend)
	}
	if e.IsNewHire || e.InsufficientData {
		t.Fatalf("unexpected flags %+v", e)
	}
	if !e.LastEvaluatedAt.Equal(day(2025, 5, 1)) {
		t.Fatalf("unexpected lastEvaluatedAt %v", e.LastEvaluatedAt)
	}
}

func TestSessionScoreIsRoundedMean(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 3, 2: 4, 3: 4})

	res := compute(t, r, RangeSpec{Preset: "6m"})
	if got := res.Employees[0].CurrentScore; got != 3.7 {
		t.Fatalf("expected 3.7, got %v", got)
	}
}

func TestNewHireOmitsGrowth(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 3.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	e := res.Employees[0]
	if !e.IsNewHire || e.Growth != nil || e.GrowthTrend != TrendStable {
		t.Fatalf("expected new hire without growth, got %+v", e)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), `"growth":`) {
		t.Fatalf("growth should be omitted for new hires: %s", raw)
	}
}

func TestZeroLevelsExcludeEmployee(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.collaborator(2, "Luis", "Dev")
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 0})
	r.session(2, day(2025, 5, 1), map[int64]float64{1: 3.0, 2: 0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if findEmployee(res, 1) != nil {
		t.Fatal("employee with only nivel 0 must be absent")
	}
	if e := findEmployee(res, 2); e == nil || e.CurrentScore != 3.0 {
		t.Fatalf("nivel 0 must not drag the mean, got %+v", e)
	}
	if res.Meta.TotalEmployees != 1 {
		t.Fatalf("expected 1 employee, got %d", res.Meta.TotalEmployees)
	}
}

func TestSessionWithoutEligibleAssessmentsIsSkipped(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.session(1, day(2025, 2, 1), map[int64]float64{1: 2.0})
	r.session(1, day(2025, 3, 1), map[int64]float64{1: 0})
	r.session(1, day(2025, 4, 1), map[int64]float64{1: 3.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if got := res.Employees[0].Sparkline; !reflect.DeepEqual(got, []float64{2.0, 3.0}) {
		t.Fatalf("expected empty session skipped, got %v", got)
	}
}

func TestInactiveCollaboratorNeverAppears(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.collaborators = append(r.collaborators, skills.Collaborator{ID: 2, Name: "Old", Role: "Dev", IsActive: false})
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 3.0})
	r.session(2, day(2025, 5, 1), map[int64]float64{1: 5.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if findEmployee(res, 2) != nil {
		t.Fatal("inactive collaborator must not appear")
	}
}

func TestMaturityIndexAndDelta(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.collaborator(2, "Luis", "Dev")
	r.session(1, day(2025, 2, 1), map[int64]float64{1: 3.0})
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 4.0})
	r.session(2, day(2025, 2, 1), map[int64]float64{1: 2.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if res.Meta.CurrentMaturityIndex == nil || *res.Meta.CurrentMaturityIndex != 3.0 {
		t.Fatalf("expected maturity 3.0, got %v", res.Meta.CurrentMaturityIndex)
	}
	if res.Meta.PeriodDelta == nil || *res.Meta.PeriodDelta != 0.5 {
		t.Fatalf("expected delta 0.5, got %v", res.Meta.PeriodDelta)
	}
}

func TestPeriodDeltaComparesRoundedIndexes(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.collaborator(2, "Luis", "Dev")
	r.collaborator(3, "Eva", "Dev")
	for id, levels := range map[int64][2]float64{1: {2.9, 3.0}, 2: {3.0, 3.0}, 3: {3.0, 3.1}} {
		r.session(id, day(2025, 2, 1), map[int64]float64{1: levels[0]})
		r.session(id, day(2025, 5, 1), map[int64]float64{1: levels[1]})
	}

	res := compute(t, r, RangeSpec{Preset: "12m"})
	if res.Meta.CurrentMaturityIndex == nil || *res.Meta.CurrentMaturityIndex != 3.0 {
		t.Fatalf("expected maturity 3.0, got %v", res.Meta.CurrentMaturityIndex)
	}
	if res.Meta.PeriodDelta == nil || *res.Meta.PeriodDelta != 0 {
		t.Fatalf("expected delta 0 between equal indexes, got %v", res.Meta.PeriodDelta)
	}
}

func TestLastEvaluatedAtIsADate(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.session(1, day(2025, 2, 1), map[int64]float64{1: 3.0})
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 4.0})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	raw, err := json.Marshal(res.Employees[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"lastEvaluatedAt":"2025-05-01"`) {
		t.Fatalf("unexpected employee json %s", raw)
	}
}

func TestEmptyDataIsWellFormed(t *testing.T) {
	res := compute(t, newFakeReader(), RangeSpec{Preset: "6m"})
	if res.Meta.CurrentMaturityIndex != nil || res.Meta.PeriodDelta != nil || res.Meta.TotalEmployees != 0 {
		t.Fatalf("expected null aggregates, got %+v", res.Meta)
	}
	if len(res.ChartData) != 7 {
		t.Fatalf("expected 7 month buckets, got %d", len(res.ChartData))
	}
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"employees":[]`, `"topImprover":null`, `"supportCases":[]`, `"supportCount":0`, `"avgScore":null`, `"newHires":[]`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("expected %s in %s", want, raw)
		}
	}
}

func TestStoreErrorSurfaces(t *testing.T) {
	r := newFakeReader()
	r.err = errors.New("disk gone")
	_, err := newTestService(r).Compute(context.Background(), RangeSpec{Preset: "12m"})
	if err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestObserverReceivesComputation(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Ana", "Dev")
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 3.0})
	obs := &recordingObserver{}
	svc := NewService(&fakeStore{reader: r}, nil, obs)
	svc.Now = func() time.Time { return testNow }
	if _, err := svc.Compute(context.Background(), RangeSpec{Preset: "ytd"}); err != nil {
		t.Fatalf("compute: %v", err)
	}
	if obs.calls != 1 || obs.rangeKey != RangeYTD || obs.employees != 1 {
		t.Fatalf("unexpected observation %+v", obs)
	}
}

func TestEmployeesSortedByGrowthThenNewHires(t *testing.T) {
	r := newFakeReader()
	r.collaborator(1, "Carla", "Dev")
	r.collaborator(2, "Beto", "Dev")
	r.collaborator(3, "Ana", "Dev")
	r.collaborator(4, "Dora", "Dev")
	r.session(1, day(2025, 2, 1), map[int64]float64{1: 2.0})
	r.session(1, day(2025, 5, 1), map[int64]float64{1: 2.5})
	r.session(2, day(2025, 2, 1), map[int64]float64{1: 2.0})
	r.session(2, day(2025, 5, 1), map[int64]float64{1: 3.0})
	r.session(3, day(2025, 5, 1), map[int64]float64{1: 4.0})
	r.session(4, day(2025, 2, 1), map[int64]float64{1: 2.0})
	r.session(4, day(2025, 5, 1), map[int64]float64{1: 2.5})

	res := compute(t, r, RangeSpec{Preset: "12m"})
	var got []int64
	for _, e := range res.Employees {
		got = append(got, e.ID)
	}
	if !reflect.DeepEqual(got, []int64{2, 1, 4, 3}) {
		t.Fatalf("unexpected order %v", got)
	}
}
