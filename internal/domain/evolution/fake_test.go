package evolution

import (
	"context"
	"testing"
	"time"

	"skima/internal/domain/skills"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

type fakeReader struct {
	collaborators []skills.Collaborator
	sessions      map[int64][]skills.EvaluationSession
	assessments   map[int64][]skills.Assessment
	profiles      map[string]*skills.RoleProfile
	profileCalls  map[string]int
	err           error

	nextSession    int64
	nextAssessment int64
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		sessions:     map[int64][]skills.EvaluationSession{},
		assessments:  map[int64][]skills.Assessment{},
		profiles:     map[string]*skills.RoleProfile{},
		profileCalls: map[string]int{},
	}
}

func (f *fakeReader) collaborator(id int64, name, role string) {
	f.collaborators = append(f.collaborators, skills.Collaborator{ID: id, Name: name, Role: role, IsActive: true})
}

func (f *fakeReader) collaboratorByID(id int64) skills.Collaborator {
	for _, c := range f.collaborators {
		if c.ID == id {
			return c
		}
	}
	return skills.Collaborator{}
}

// session records one evaluation under the collaborator's current role.
func (f *fakeReader) session(collabID int64, at time.Time, levels map[int64]float64) int64 {
	return f.sessionAs(collabID, f.collaboratorByID(collabID).Role, at, levels)
}

func (f *fakeReader) sessionAs(collabID int64, role string, at time.Time, levels map[int64]float64) int64 {
	f.nextSession++
	id := f.nextSession
	f.sessions[collabID] = append(f.sessions[collabID], skills.EvaluationSession{
		ID:               id,
		CollaboratorID:   collabID,
		CollaboratorRole: role,
		EvaluatedAt:      at,
	})
	for skillID, level := range levels {
		f.nextAssessment++
		f.assessments[id] = append(f.assessments[id], skills.Assessment{
			ID:             f.nextAssessment,
			SessionID:      id,
			CollaboratorID: collabID,
			SkillID:        skillID,
			Level:          level,
			Criticality:    skills.CriticalityNotApplicable,
			SkillActive:    true,
		})
	}
	return id
}

func (f *fakeReader) profile(role string, created time.Time, tags map[int64]skills.Criticality) {
	f.profiles[role] = &skills.RoleProfile{Role: role, Skills: tags, CreatedAt: created, UpdatedAt: created}
}

func (f *fakeReader) ListActiveCollaborators(ctx context.Context) ([]skills.Collaborator, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []skills.Collaborator
	for _, c := range f.collaborators {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeReader) ListSessionsInRange(ctx context.Context, collaboratorID int64, start, end time.Time) ([]skills.EvaluationSession, error) {
	var out []skills.EvaluationSession
	for _, s := range f.sessions[collaboratorID] {
		if !start.IsZero() && s.EvaluatedAt.Before(start) {
			continue
		}
		if !s.EvaluatedAt.Before(end) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeReader) ListAssessments(ctx context.Context, sessionID int64) ([]skills.Assessment, error) {
	return f.assessments[sessionID], nil
}

func (f *fakeReader) GetRoleProfile(ctx context.Context, role string) (*skills.RoleProfile, error) {
	f.profileCalls[role]++
	return f.profiles[role], nil
}

type fakeStore struct {
	reader *fakeReader
	calls  int
}

func (s *fakeStore) ReadSnapshot(ctx context.Context, fn func(Reader) error) error {
	s.calls++
	return fn(s.reader)
}

type recordingObserver struct {
	rangeKey  string
	employees int
	calls     int
}

func (o *recordingObserver) ObserveEvolution(rangeKey string, took time.Duration, employees int) {
	o.rangeKey = rangeKey
	o.employees = employees
	o.calls++
}

func newTestService(r *fakeReader) *Service {
	svc := NewService(&fakeStore{reader: r}, nil, nil)
	svc.Now = func() time.Time { return testNow }
	return svc
}

func compute(t testing.TB, r *fakeReader, spec RangeSpec) *Result {
	t.Helper()
	res, err := newTestService(r).Compute(context.Background(), spec)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return res
}

func findEmployee(res *Result, id int64) *EmployeeAggregate {
	for i := range res.Employees {
		if res.Employees[i].ID == id {
			return &res.Employees[i]
		}
	}
	return nil
}
