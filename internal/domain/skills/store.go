package skills

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skima/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const collaboratorColumns = "id, nombre, rol, email, is_active, joined_at, last_evaluated"

func scanCollaborator(row interface{ Scan(...any) error }) (Collaborator, error) {
	var c Collaborator
	var last sql.NullTime
	if err := row.Scan(&c.ID, &c.Name, &c.Role, &c.Email, &c.IsActive, &c.JoinedAt, &last); err != nil {
		return Collaborator{}, err
	}
	if last.Valid {
		t := last.Time
		c.LastEvaluated = &t
	}
	return c, nil
}

func (s *Store) ListCollaborators(ctx context.Context) ([]Collaborator, error) {
	return s.queryCollaborators(ctx, "SELECT "+collaboratorColumns+" FROM collaborators ORDER BY nombre, id")
}

func (s *Store) ListActiveCollaborators(ctx context.Context) ([]Collaborator, error) {
	return s.queryCollaborators(ctx, "SELECT "+collaboratorColumns+" FROM collaborators WHERE is_active = ? ORDER BY id", true)
}

func (s *Store) queryCollaborators(ctx context.Context, query string, args ...any) ([]Collaborator, error) {
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Collaborator
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCollaborator(ctx context.Context, id int64) (Collaborator, error) {
	row := s.DB.QueryRowContext(ctx, s.DB.Rebind("SELECT "+collaboratorColumns+" FROM collaborators WHERE id = ?"), id)
	c, err := scanCollaborator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Collaborator{}, fmt.Errorf("collaborator %d: %w", id, ErrNotFound)
	}
	return c, err
}

func (s *Store) CreateCollaborator(ctx context.Context, name, role, email string, joinedAt time.Time) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, s.DB.Rebind(`
    INSERT INTO collaborators (nombre, rol, email, is_active, joined_at)
    VALUES (?, ?, ?, ?, ?)
    RETURNING id
  `), name, role, email, true, joinedAt.UTC()).Scan(&id)
	return id, err
}

func (s *Store) SetCollaboratorActive(ctx context.Context, id int64, active bool) error {
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind("UPDATE collaborators SET is_active = ? WHERE id = ?"), active, id)
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Sprintf("collaborator %d", id))
}

func (s *Store) TouchLastEvaluated(ctx context.Context, id int64, at time.Time) error {
	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
    UPDATE collaborators
    SET last_evaluated = ?
    WHERE id = ? AND (last_evaluated IS NULL OR last_evaluated < ?)
  `), at.UTC(), id, at.UTC())
	return err
}

// ListSessionsInRange returns the collaborator's sessions evaluated in
// [start, end), oldest first. A zero start means no lower bound.
func (s *Store) ListSessionsInRange(ctx context.Context, collaboratorID int64, start, end time.Time) ([]EvaluationSession, error) {
	query := `
    SELECT id, uuid, collaborator_id, collaborator_nombre, collaborator_rol, evaluated_by, notes, evaluated_at
    FROM evaluation_sessions
    WHERE collaborator_id = ? AND evaluated_at < ?`
	args := []any{collaboratorID, end.UTC()}
	if !start.IsZero() {
		query += " AND evaluated_at >= ?"
		args = append(args, start.UTC())
	}
	query += " ORDER BY evaluated_at, id"

	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EvaluationSession
	for rows.Next() {
		var es EvaluationSession
		if err := rows.Scan(&es.ID, &es.UUID, &es.CollaboratorID, &es.CollaboratorName, &es.CollaboratorRole, &es.EvaluatedBy, &es.Notes, &es.EvaluatedAt); err != nil {
			return nil, err
		}
		es.EvaluatedAt = es.EvaluatedAt.UTC()
		out = append(out, es)
	}
	return out, rows.Err()
}

func (s *Store) CreateSession(ctx context.Context, es EvaluationSession) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, s.DB.Rebind(`
    INSERT INTO evaluation_sessions (uuid, collaborator_id, collaborator_nombre, collaborator_rol, evaluated_by, notes, evaluated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?)
    RETURNING id
  `), es.UUID, es.CollaboratorID, es.CollaboratorName, es.CollaboratorRole, es.EvaluatedBy, es.Notes, es.EvaluatedAt.UTC()).Scan(&id)
	return id, err
}

func (s *Store) ListAssessments(ctx context.Context, sessionID int64) ([]Assessment, error) {
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind(`
    SELECT a.id, a.evaluation_session_id, a.collaborator_id, a.skill_id, a.nivel, a.criticidad, a.frecuencia, sk.is_active
    FROM assessments a
    JOIN skills sk ON sk.id = a.skill_id
    WHERE a.evaluation_session_id = ?
    ORDER BY a.skill_id
  `), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var a Assessment
		var criticality, frequency string
		if err := rows.Scan(&a.ID, &a.SessionID, &a.CollaboratorID, &a.SkillID, &a.Level, &criticality, &frequency, &a.SkillActive); err != nil {
			return nil, err
		}
		a.Criticality = ParseCriticality(criticality)
		a.Frequency = ParseFrequency(frequency)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CreateAssessment(ctx context.Context, a Assessment, createdAt time.Time) error {
	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
    INSERT INTO assessments (collaborator_id, skill_id, nivel, criticidad, frecuencia, evaluation_session_id, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?)
  `), a.CollaboratorID, a.SkillID, a.Level, string(a.Criticality), string(a.Frequency), a.SessionID, createdAt.UTC())
	return err
}

const roleProfileColumns = "id, rol, skills, created_at, updated_at"

func scanRoleProfile(row interface{ Scan(...any) error }) (RoleProfile, error) {
	var p RoleProfile
	var raw string
	if err := row.Scan(&p.ID, &p.Role, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return RoleProfile{}, err
	}
	parsed, err := ParseProfileSkills([]byte(raw))
	if err != nil {
		return RoleProfile{}, fmt.Errorf("role profile %q: %w", p.Role, err)
	}
	p.Skills = parsed
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// GetRoleProfile returns nil without error when the role has no profile.
func (s *Store) GetRoleProfile(ctx context.Context, role string) (*RoleProfile, error) {
	row := s.DB.QueryRowContext(ctx, s.DB.Rebind("SELECT "+roleProfileColumns+" FROM role_profiles WHERE rol = ?"), role)
	p, err := scanRoleProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListRoleProfiles(ctx context.Context) ([]RoleProfile, error) {
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind("SELECT "+roleProfileColumns+" FROM role_profiles ORDER BY rol"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoleProfile
	for rows.Next() {
		p, err := scanRoleProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpsertRoleProfile(ctx context.Context, role string, skills map[int64]Criticality, now time.Time) error {
	encoded, err := EncodeProfileSkills(skills)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, s.DB.Rebind(`
    INSERT INTO role_profiles (rol, skills, created_at, updated_at)
    VALUES (?, ?, ?, ?)
    ON CONFLICT (rol) DO UPDATE SET skills = excluded.skills, updated_at = excluded.updated_at
  `), role, string(encoded), now.UTC(), now.UTC())
	return err
}

type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	Abbrev   string `json:"abrev"`
	Order    int    `json:"orden"`
	IsActive bool   `json:"isActive"`
}

type Skill struct {
	ID         int64  `json:"id"`
	Name       string `json:"nombre"`
	CategoryID int64  `json:"categoria"`
	IsActive   bool   `json:"isActive"`
}

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind("SELECT id, nombre, abrev, orden, is_active FROM categories ORDER BY orden, id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Abbrev, &c.Order, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, name, abbrev string, order int) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, s.DB.Rebind(`
    INSERT INTO categories (nombre, abrev, orden, is_active)
    VALUES (?, ?, ?, ?)
    RETURNING id
  `), name, abbrev, order, true).Scan(&id)
	return id, err
}

func (s *Store) ListSkills(ctx context.Context) ([]Skill, error) {
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind("SELECT id, nombre, categoria_id, is_active FROM skills ORDER BY id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Skill
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.CategoryID, &sk.IsActive); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *Store) CreateSkill(ctx context.Context, name string, categoryID int64) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, s.DB.Rebind(`
    INSERT INTO skills (nombre, categoria_id, is_active)
    VALUES (?, ?, ?)
    RETURNING id
  `), name, categoryID, true).Scan(&id)
	return id, err
}

func (s *Store) SetSkillActive(ctx context.Context, id int64, active bool) error {
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind("UPDATE skills SET is_active = ? WHERE id = ?"), active, id)
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Sprintf("skill %d", id))
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
