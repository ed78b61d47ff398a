package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"skima/internal/domain/evolution"
	"skima/internal/platform/config"
	"skima/internal/platform/db"
)

const (
	JobMaturitySnapshot = "maturity_snapshot"

	snapshotRange = evolution.Range12M
)

type Computer interface {
	Compute(ctx context.Context, spec evolution.RangeSpec) (*evolution.Result, error)
}

type Recorder interface {
	RecordJob(jobType, status string)
}

type Service struct {
	DB        *db.DB
	Cfg       config.Config
	evolution Computer
	metrics   Recorder
	queue     chan job
	cron      *cron.Cron
	Now       func() time.Time
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(d *db.DB, cfg config.Config, evo Computer, metrics Recorder) *Service {
	return &Service{
		DB:        d,
		Cfg:       cfg,
		evolution: evo,
		metrics:   metrics,
		queue:     make(chan job, 16),
		Now:       time.Now,
	}
}

// Start launches the worker and, when a schedule is configured, the cron
// trigger for maturity snapshots. Both stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	go s.worker(ctx)

	spec := strings.TrimSpace(s.Cfg.SnapshotSchedule)
	if spec == "" {
		slog.Info("maturity snapshots disabled (snapshot_schedule not set)")
		return nil
	}
	s.cron = cron.New(cron.WithLocation(time.UTC))
	if _, err := s.cron.AddFunc(spec, func() {
		s.Enqueue(JobMaturitySnapshot, s.snapshotRun)
	}); err != nil {
		return fmt.Errorf("snapshot schedule %q: %w", spec, err)
	}
	s.cron.Start()
	slog.Info("maturity snapshots scheduled", "cron", spec)

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
	return nil
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	var runID int64
	if err := s.DB.QueryRowContext(ctx, s.DB.Rebind(`
    INSERT INTO job_runs (job_type, status, started_at)
    VALUES (?, ?, ?)
    RETURNING id
  `), j.Type, "running", s.Now().UTC()).Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
		details = map[string]any{"error": err.Error()}
	}
	if s.metrics != nil {
		s.metrics.RecordJob(j.Type, status)
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != 0 {
		if _, updErr := s.DB.ExecContext(ctx, s.DB.Rebind(`
      UPDATE job_runs
      SET status = ?, details_json = ?, completed_at = ?
      WHERE id = ?
    `), status, string(detailsJSON), s.Now().UTC(), runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

type Snapshot struct {
	ID             int64     `json:"id"`
	TakenAt        time.Time `json:"takenAt"`
	RangeKey       string    `json:"range"`
	MaturityIndex  *float64  `json:"maturityIndex"`
	PeriodDelta    *float64  `json:"periodDelta"`
	TotalEmployees int       `json:"totalEmployees"`
	SupportCount   int       `json:"supportCount"`
}

// TakeSnapshot computes the current maturity and stores it, recording the
// run in job_runs.
func (s *Service) TakeSnapshot(ctx context.Context) (Snapshot, error) {
	out, err := s.RunNow(ctx, JobMaturitySnapshot, s.snapshotRun)
	if err != nil {
		return Snapshot{}, err
	}
	snap, _ := out.(Snapshot)
	return snap, nil
}

func (s *Service) snapshotRun(ctx context.Context) (any, error) {
	res, err := s.evolution.Compute(ctx, evolution.RangeSpec{Preset: snapshotRange})
	if err != nil {
		return nil, fmt.Errorf("compute evolution: %w", err)
	}
	snap := Snapshot{
		TakenAt:        s.Now().UTC(),
		RangeKey:       snapshotRange,
		MaturityIndex:  res.Meta.CurrentMaturityIndex,
		PeriodDelta:    res.Meta.PeriodDelta,
		TotalEmployees: res.Meta.TotalEmployees,
		SupportCount:   res.Insights.SupportCount,
	}
	if err := s.DB.QueryRowContext(ctx, s.DB.Rebind(`
    INSERT INTO maturity_snapshots (taken_at, range_key, maturity_index, period_delta, total_employees, support_count)
    VALUES (?, ?, ?, ?, ?, ?)
    RETURNING id
  `), snap.TakenAt, snap.RangeKey, nullFloat(snap.MaturityIndex), nullFloat(snap.PeriodDelta), snap.TotalEmployees, snap.SupportCount).Scan(&snap.ID); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	slog.Info("maturity snapshot stored", "id", snap.ID, "employees", snap.TotalEmployees)
	return snap, nil
}

// ListSnapshots returns the newest snapshots first.
func (s *Service) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 || limit > 120 {
		limit = 24
	}
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind(`
    SELECT id, taken_at, range_key, maturity_index, period_delta, total_employees, support_count
    FROM maturity_snapshots
    ORDER BY taken_at DESC, id DESC
    LIMIT ?
  `), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		var index, delta sql.NullFloat64
		if err := rows.Scan(&snap.ID, &snap.TakenAt, &snap.RangeKey, &index, &delta, &snap.TotalEmployees, &snap.SupportCount); err != nil {
			return nil, err
		}
		if index.Valid {
			snap.MaturityIndex = &index.Float64
		}
		if delta.Valid {
			snap.PeriodDelta = &delta.Float64
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
