package evolution

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"skima/internal/domain/skills"
	"skima/internal/platform/config"
	"skima/internal/platform/db"
)

func TestComputeAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "evolution.db")
	conn, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	skillSvc := skills.NewService(skills.NewStore(conn), skills.DBTransactor{DB: conn}, nil)
	skillSvc.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	cat, err := skillSvc.CreateCategory(ctx, "Backend", "BE", 1)
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	goSkill, _ := skillSvc.CreateSkill(ctx, "Go", cat.ID)
	sqlSkill, _ := skillSvc.CreateSkill(ctx, "SQL", cat.ID)
	legacy, _ := skillSvc.CreateSkill(ctx, "COBOL", cat.ID)
	if err := skillSvc.UpsertRoleProfile(ctx, "Dev", map[int64]skills.Criticality{
		goSkill.ID:  skills.CriticalityCritical,
		sqlSkill.ID: skills.CriticalityImportant,
		legacy.ID:   skills.CriticalityDesirable,
	}); err != nil {
		t.Fatalf("profile: %v", err)
	}

	ana, _ := skillSvc.CreateCollaborator(ctx, skills.CollaboratorInput{Name: "Ana", Role: "Dev"})
	gone, _ := skillSvc.CreateCollaborator(ctx, skills.CollaboratorInput{Name: "Gone", Role: "Dev"})

	record := func(id int64, at time.Time, levels ...skills.AssessmentInput) {
		t.Helper()
		if _, err := skillSvc.RecordEvaluation(ctx, id, skills.EvaluationInput{EvaluatedAt: &at, Assessments: levels}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	record(ana.ID, day(2025, 1, 15),
		skills.AssessmentInput{SkillID: goSkill.ID, Level: 2},
		skills.AssessmentInput{SkillID: sqlSkill.ID, Level: 2},
		skills.AssessmentInput{SkillID: legacy.ID, Level: 5},
	)
	record(ana.ID, day(2025, 4, 15),
		skills.AssessmentInput{SkillID: goSkill.ID, Level: 4},
		skills.AssessmentInput{SkillID: sqlSkill.ID, Level: 3},
	)
	record(gone.ID, day(2025, 4, 15), skills.AssessmentInput{SkillID: goSkill.ID, Level: 5})

	if err := skillSvc.SetSkillActive(ctx, legacy.ID, false); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := skillSvc.SetCollaboratorActive(ctx, gone.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	svc := NewService(NewStore(conn), nil, nil)
	svc.Now = func() time.Time { return testNow }
	res, err := svc.Compute(ctx, RangeSpec{Preset: "12m"})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(res.Employees) != 1 || res.Employees[0].ID != ana.ID {
		t.Fatalf("expected only Ana, got %+v", res.Employees)
	}
	e := res.Employees[0]
	if e.StartScore != 2.0 || e.CurrentScore != 3.5 || e.GrowthValue() != 1.5 {
		t.Fatalf("unexpected scores %+v", e)
	}
	if res.Insights.TopImprover == nil || res.Insights.TopImprover.ID != ana.ID {
		t.Fatalf("expected Ana as top improver, got %+v", res.Insights.TopImprover)
	}
	if len(res.ChartData) != 13 {
		t.Fatalf("expected 13 month buckets, got %d", len(res.ChartData))
	}
}
