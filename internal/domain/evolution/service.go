package evolution

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Observer receives timing for each computation. The metrics collector
// implements it.
type Observer interface {
	ObserveEvolution(rangeKey string, took time.Duration, employees int)
}

type Service struct {
	store    StoreAPI
	logger   *slog.Logger
	observer Observer
	Now      func() time.Time
}

func NewService(store StoreAPI, logger *slog.Logger, observer Observer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, observer: observer, Now: time.Now}
}

// Compute resolves spec against the current time and builds the evolution
// view over active collaborators.
func (s *Service) Compute(ctx context.Context, spec RangeSpec) (*Result, error) {
	began := time.Now()
	window, fellBack := ResolveWindow(spec, s.Now())
	if fellBack {
		s.logger.Warn("unusable custom range; using full history", "startDate", spec.StartDate, "endDate", spec.EndDate)
	}

	var inputs []employeeInput
	err := s.store.ReadSnapshot(ctx, func(r Reader) error {
		loaded, err := loadInputs(ctx, r, window, s.logger)
		inputs = loaded
		return err
	})
	if err != nil {
		return nil, err
	}

	result := compose(window, inputs)
	if s.observer != nil {
		s.observer.ObserveEvolution(window.Key, time.Since(began), len(result.Employees))
	}
	return result, nil
}

func compose(window Window, inputs []employeeInput) *Result {
	employees := []EmployeeAggregate{}
	for _, in := range inputs {
		if agg, ok := aggregateEmployee(in); ok {
			employees = append(employees, agg)
		}
	}
	sortEmployees(employees)

	start := window.Start
	if !window.Bounded() {
		start = earliestSession(inputs, window.End)
	}

	return &Result{
		Meta:      buildMeta(window, start, employees),
		ChartData: buildChart(employees, start, window.End),
		Employees: employees,
		Insights:  extractInsights(employees),
	}
}

func earliestSession(inputs []employeeInput, fallback time.Time) time.Time {
	earliest := fallback
	for _, in := range inputs {
		if len(in.Sessions) == 0 {
			continue
		}
		if at := in.Sessions[0].Session.EvaluatedAt; at.Before(earliest) {
			earliest = at
		}
	}
	return monthStart(earliest)
}

func buildMeta(window Window, start time.Time, employees []EmployeeAggregate) Meta {
	meta := Meta{
		TimeRangeLabel: window.Label,
		StartDate:      start.Format(dateLayout),
		EndDate:        window.End.Format(dateLayout),
		TotalEmployees: len(employees),
	}
	if len(employees) == 0 {
		return meta
	}
	var current, initial float64
	for _, e := range employees {
		current += e.CurrentScore
		initial += e.StartScore
	}
	n := float64(len(employees))
	index := round1(current / n)
	startIndex := round1(initial / n)
	delta := round1(index - startIndex)
	meta.CurrentMaturityIndex = &index
	meta.PeriodDelta = &delta
	return meta
}

// sortEmployees orders by growth descending with new hires last, then by
// name and id.
func sortEmployees(employees []EmployeeAggregate) {
	sort.SliceStable(employees, func(i, j int) bool {
		a, b := employees[i], employees[j]
		if a.IsNewHire != b.IsNewHire {
			return !a.IsNewHire
		}
		if a.GrowthValue() != b.GrowthValue() {
			return a.GrowthValue() > b.GrowthValue()
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
