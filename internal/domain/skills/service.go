package skills

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store  StoreAPI
	tx     Transactor
	logger *slog.Logger
	Now    func() time.Time
}

func NewService(store StoreAPI, tx Transactor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, tx: tx, logger: logger, Now: time.Now}
}

func (s *Service) ListCollaborators(ctx context.Context) ([]Collaborator, error) {
	return s.store.ListCollaborators(ctx)
}

func (s *Service) GetCollaborator(ctx context.Context, id int64) (Collaborator, error) {
	return s.store.GetCollaborator(ctx, id)
}

func (s *Service) CreateCollaborator(ctx context.Context, in CollaboratorInput) (Collaborator, error) {
	name := strings.TrimSpace(in.Name)
	role := strings.TrimSpace(in.Role)
	if name == "" || role == "" {
		return Collaborator{}, fmt.Errorf("nombre and rol are required: %w", ErrInvalidInput)
	}
	joined := s.Now().UTC()
	if in.JoinedAt != nil && !in.JoinedAt.IsZero() {
		joined = in.JoinedAt.UTC()
	}
	id, err := s.store.CreateCollaborator(ctx, name, role, strings.TrimSpace(in.Email), joined)
	if err != nil {
		return Collaborator{}, err
	}
	return Collaborator{ID: id, Name: name, Role: role, Email: strings.TrimSpace(in.Email), IsActive: true, JoinedAt: joined}, nil
}

func (s *Service) SetCollaboratorActive(ctx context.Context, id int64, active bool) error {
	return s.store.SetCollaboratorActive(ctx, id, active)
}

func validateEvaluation(in EvaluationInput) error {
	if len(in.Assessments) == 0 {
		return fmt.Errorf("at least one assessment is required: %w", ErrInvalidInput)
	}
	seen := make(map[int64]struct{}, len(in.Assessments))
	for _, a := range in.Assessments {
		if a.SkillID <= 0 {
			return fmt.Errorf("skillId must be positive: %w", ErrInvalidInput)
		}
		if _, dup := seen[a.SkillID]; dup {
			return fmt.Errorf("skill %d assessed twice: %w", a.SkillID, ErrInvalidInput)
		}
		seen[a.SkillID] = struct{}{}
		if math.IsNaN(a.Level) || a.Level < MinLevel || a.Level > MaxLevel {
			return fmt.Errorf("skill %d: nivel must be between %.0f and %.0f: %w", a.SkillID, MinLevel, MaxLevel, ErrInvalidInput)
		}
	}
	return nil
}

// RecordEvaluation stores one evaluation session and its assessments
// atomically. The collaborator's current name and role are copied onto the
// session.
func (s *Service) RecordEvaluation(ctx context.Context, collaboratorID int64, in EvaluationInput) (EvaluationSession, error) {
	if err := validateEvaluation(in); err != nil {
		return EvaluationSession{}, err
	}
	now := s.Now().UTC()
	evaluatedAt := now
	if in.EvaluatedAt != nil && !in.EvaluatedAt.IsZero() {
		evaluatedAt = in.EvaluatedAt.UTC()
	}

	var session EvaluationSession
	err := s.tx.InTx(ctx, func(store StoreAPI) error {
		collab, err := store.GetCollaborator(ctx, collaboratorID)
		if err != nil {
			return err
		}
		session = EvaluationSession{
			UUID:             uuid.NewString(),
			CollaboratorID:   collab.ID,
			CollaboratorName: collab.Name,
			CollaboratorRole: collab.Role,
			EvaluatedBy:      strings.TrimSpace(in.EvaluatedBy),
			Notes:            strings.TrimSpace(in.Notes),
			EvaluatedAt:      evaluatedAt,
		}
		id, err := store.CreateSession(ctx, session)
		if err != nil {
			return err
		}
		session.ID = id
		for _, a := range in.Assessments {
			criticality := a.Criticality
			if criticality == "" {
				criticality = CriticalityNotApplicable
			}
			frequency := a.Frequency
			if frequency == "" {
				frequency = FrequencyNever
			}
			if err := store.CreateAssessment(ctx, Assessment{
				SessionID:      id,
				CollaboratorID: collab.ID,
				SkillID:        a.SkillID,
				Level:          a.Level,
				Criticality:    criticality,
				Frequency:      frequency,
			}, now); err != nil {
				return fmt.Errorf("assessment for skill %d: %w", a.SkillID, err)
			}
		}
		return store.TouchLastEvaluated(ctx, collab.ID, evaluatedAt)
	})
	if err != nil {
		return EvaluationSession{}, err
	}
	s.logger.Info("evaluation recorded", "collaborator_id", collaboratorID, "session", session.UUID, "assessments", len(in.Assessments))
	return session, nil
}

// ListSessions returns every session of the collaborator, oldest first.
func (s *Service) ListSessions(ctx context.Context, collaboratorID int64) ([]EvaluationSession, error) {
	if _, err := s.store.GetCollaborator(ctx, collaboratorID); err != nil {
		return nil, err
	}
	return s.store.ListSessionsInRange(ctx, collaboratorID, time.Time{}, s.Now().UTC().AddDate(100, 0, 0))
}

func (s *Service) ListAssessments(ctx context.Context, sessionID int64) ([]Assessment, error) {
	return s.store.ListAssessments(ctx, sessionID)
}

func (s *Service) ListRoleProfiles(ctx context.Context) ([]RoleProfile, error) {
	return s.store.ListRoleProfiles(ctx)
}

func (s *Service) GetRoleProfile(ctx context.Context, role string) (RoleProfile, error) {
	p, err := s.store.GetRoleProfile(ctx, strings.TrimSpace(role))
	if err != nil {
		return RoleProfile{}, err
	}
	if p == nil {
		return RoleProfile{}, fmt.Errorf("role profile %q: %w", role, ErrNotFound)
	}
	return *p, nil
}

func (s *Service) UpsertRoleProfile(ctx context.Context, role string, skills map[int64]Criticality) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return fmt.Errorf("rol is required: %w", ErrInvalidInput)
	}
	for id := range skills {
		if id <= 0 {
			return fmt.Errorf("skill id %d must be positive: %w", id, ErrInvalidInput)
		}
	}
	return s.store.UpsertRoleProfile(ctx, role, skills, s.Now())
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name, abbrev string, order int) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("nombre is required: %w", ErrInvalidInput)
	}
	abbrev = strings.TrimSpace(abbrev)
	if abbrev == "" {
		runes := []rune(name)
		abbrev = strings.ToUpper(string(runes[:min(3, len(runes))]))
	}
	id, err := s.store.CreateCategory(ctx, name, abbrev, order)
	if err != nil {
		return Category{}, err
	}
	return Category{ID: id, Name: name, Abbrev: abbrev, Order: order, IsActive: true}, nil
}

func (s *Service) ListSkills(ctx context.Context) ([]Skill, error) {
	return s.store.ListSkills(ctx)
}

func (s *Service) CreateSkill(ctx context.Context, name string, categoryID int64) (Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" || categoryID <= 0 {
		return Skill{}, fmt.Errorf("nombre and categoria are required: %w", ErrInvalidInput)
	}
	id, err := s.store.CreateSkill(ctx, name, categoryID)
	if err != nil {
		return Skill{}, err
	}
	return Skill{ID: id, Name: name, CategoryID: categoryID, IsActive: true}, nil
}

// SetSkillActive archives or restores a skill. Archived skills drop out of
// every evolution score, past sessions included.
func (s *Service) SetSkillActive(ctx context.Context, id int64, active bool) error {
	return s.store.SetSkillActive(ctx, id, active)
}
