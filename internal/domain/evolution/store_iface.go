package evolution

import (
	"context"
	"time"

	"skima/internal/domain/skills"
)

// Reader is the read-only view of skills data the computation consumes.
type Reader interface {
	ListActiveCollaborators(ctx context.Context) ([]skills.Collaborator, error)
	ListSessionsInRange(ctx context.Context, collaboratorID int64, start, end time.Time) ([]skills.EvaluationSession, error)
	ListAssessments(ctx context.Context, sessionID int64) ([]skills.Assessment, error)
	GetRoleProfile(ctx context.Context, role string) (*skills.RoleProfile, error)
}

// StoreAPI hands a Reader to fn for the duration of one consistent read.
type StoreAPI interface {
	ReadSnapshot(ctx context.Context, fn func(Reader) error) error
}
