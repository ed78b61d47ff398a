package evolution

import (
	"context"
	"fmt"
	"log/slog"

	"skima/internal/domain/skills"
)

type sessionInput struct {
	Session     skills.EvaluationSession
	Assessments []skills.Assessment
	Profile     *skills.RoleProfile
}

type employeeInput struct {
	Collaborator skills.Collaborator
	Sessions     []sessionInput
}

// profileCache memoizes role profile lookups for one request, including
// roles that have no profile.
type profileCache struct {
	reader Reader
	logger *slog.Logger
	seen   map[string]*skills.RoleProfile
}

func (c *profileCache) get(ctx context.Context, role string) (*skills.RoleProfile, error) {
	if p, ok := c.seen[role]; ok {
		return p, nil
	}
	p, err := c.reader.GetRoleProfile(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("role profile %q: %w", role, err)
	}
	if p == nil {
		c.logger.Warn("no role profile; counting every assessed skill", "role", role)
	}
	c.seen[role] = p
	return p, nil
}

func loadInputs(ctx context.Context, r Reader, w Window, logger *slog.Logger) ([]employeeInput, error) {
	collaborators, err := r.ListActiveCollaborators(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	profiles := &profileCache{reader: r, logger: logger, seen: map[string]*skills.RoleProfile{}}
	start, end := w.QueryBounds()

	var out []employeeInput
	for _, c := range collaborators {
		if !c.IsActive {
			continue
		}
		sessions, err := r.ListSessionsInRange(ctx, c.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("list sessions for collaborator %d: %w", c.ID, err)
		}
		if len(sessions) == 0 {
			continue
		}
		in := employeeInput{Collaborator: c, Sessions: make([]sessionInput, 0, len(sessions))}
		for _, s := range sessions {
			assessments, err := r.ListAssessments(ctx, s.ID)
			if err != nil {
				return nil, fmt.Errorf("list assessments for session %d: %w", s.ID, err)
			}
			role := s.CollaboratorRole
			if role == "" {
				role = c.Role
			}
			profile, err := profiles.get(ctx, role)
			if err != nil {
				return nil, err
			}
			in.Sessions = append(in.Sessions, sessionInput{Session: s, Assessments: assessments, Profile: profile})
		}
		out = append(out, in)
	}
	return out, nil
}
