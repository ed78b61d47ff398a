package skills

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListCollaborators(ctx context.Context) ([]Collaborator, error)
	ListActiveCollaborators(ctx context.Context) ([]Collaborator, error)
	GetCollaborator(ctx context.Context, id int64) (Collaborator, error)
	CreateCollaborator(ctx context.Context, name, role, email string, joinedAt time.Time) (int64, error)
	SetCollaboratorActive(ctx context.Context, id int64, active bool) error
	TouchLastEvaluated(ctx context.Context, id int64, at time.Time) error
	ListSessionsInRange(ctx context.Context, collaboratorID int64, start, end time.Time) ([]EvaluationSession, error)
	CreateSession(ctx context.Context, es EvaluationSession) (int64, error)
	ListAssessments(ctx context.Context, sessionID int64) ([]Assessment, error)
	CreateAssessment(ctx context.Context, a Assessment, createdAt time.Time) error
	GetRoleProfile(ctx context.Context, role string) (*RoleProfile, error)
	ListRoleProfiles(ctx context.Context) ([]RoleProfile, error)
	UpsertRoleProfile(ctx context.Context, role string, skills map[int64]Criticality, now time.Time) error
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name, abbrev string, order int) (int64, error)
	ListSkills(ctx context.Context) ([]Skill, error)
	CreateSkill(ctx context.Context, name string, categoryID int64) (int64, error)
	SetSkillActive(ctx context.Context, id int64, active bool) error
}

// Transactor runs fn against a store bound to a single transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(StoreAPI) error) error
}
