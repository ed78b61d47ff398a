package skillshandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"skima/internal/domain/audit"
	"skima/internal/domain/auth"
	"skima/internal/domain/skills"
	"skima/internal/platform/config"
	"skima/internal/platform/db"
	"skima/internal/transport/http/middleware"
)

const testSecret = "skills-secret"

type testServer struct {
	t      *testing.T
	router http.Handler
	token  string
	audit  *audit.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "handlers.db")
	conn, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := skills.NewService(skills.NewStore(conn), skills.DBTransactor{DB: conn}, nil)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Auth(testSecret))
	auditSvc := audit.New(conn)
	NewHandler(svc, auditSvc, nil).RegisterRoutes(r)

	token, err := auth.GenerateToken(testSecret, auth.Claims{Role: auth.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return &testServer{t: t, router: r, token: token, audit: auditSvc}
}

func (s *testServer) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// data decodes the envelope's data field into out.
func (s *testServer) data(rec *httptest.ResponseRecorder, status int, out any) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("decode envelope: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			s.t.Fatalf("decode data: %v", err)
		}
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return env.Error.Code
}

func TestCatalogAndEvaluationFlow(t *testing.T) {
	s := newTestServer(t)

	var cat skills.Category
	s.data(s.do(http.MethodPost, "/categories", `{"nombre":"Backend","orden":1}`, true), http.StatusCreated, &cat)
	var skill skills.Skill
	s.data(s.do(http.MethodPost, "/skills", fmt.Sprintf(`{"nombre":"Go","categoria":%d}`, cat.ID), true), http.StatusCreated, &skill)

	var collab skills.Collaborator
	s.data(s.do(http.MethodPost, "/collaborators", `{"nombre":"Ana","rol":"Dev","joinedAt":"2024-01-10"}`, true), http.StatusCreated, &collab)
	if collab.ID == 0 || !collab.IsActive {
		t.Fatalf("unexpected collaborator %+v", collab)
	}

	body := fmt.Sprintf(`{"evaluatedAt":"2025-03-01","evaluatedBy":"lead","assessments":[{"skillId":%d,"nivel":3.5,"criticidad":"C","frecuencia":"S"}]}`, skill.ID)
	var session skills.EvaluationSession
	s.data(s.do(http.MethodPost, fmt.Sprintf("/collaborators/%d/evaluations", collab.ID), body, true), http.StatusCreated, &session)
	if session.CollaboratorRole != "Dev" || session.UUID == "" {
		t.Fatalf("unexpected session %+v", session)
	}

	var sessions []skills.EvaluationSession
	s.data(s.do(http.MethodGet, fmt.Sprintf("/collaborators/%d/evaluations", collab.ID), "", false), http.StatusOK, &sessions)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}

	var assessments []skills.Assessment
	s.data(s.do(http.MethodGet, fmt.Sprintf("/evaluations/%d/assessments", session.ID), "", false), http.StatusOK, &assessments)
	if len(assessments) != 1 || assessments[0].Level != 3.5 || assessments[0].Criticality != skills.CriticalityCritical {
		t.Fatalf("unexpected assessments %+v", assessments)
	}

	var profile skills.RoleProfile
	s.data(s.do(http.MethodPut, "/role-profiles/Dev", fmt.Sprintf(`{"skills":{"%d":"I"}}`, skill.ID), true), http.StatusOK, &profile)
	if profile.Criticality(skill.ID) != skills.CriticalityImportant {
		t.Fatalf("unexpected profile %+v", profile)
	}

	s.data(s.do(http.MethodPut, fmt.Sprintf("/collaborators/%d/status", collab.ID), `{"isActive":false}`, true), http.StatusOK, nil)
	var active []skills.Collaborator
	s.data(s.do(http.MethodGet, "/collaborators?active=true", "", false), http.StatusOK, &active)
	if len(active) != 0 {
		t.Fatalf("expected no active collaborators, got %+v", active)
	}

	s.data(s.do(http.MethodPut, fmt.Sprintf("/skills/%d/status", skill.ID), `{"isActive":false}`, true), http.StatusOK, nil)
	var list []skills.Skill
	s.data(s.do(http.MethodGet, "/skills", "", false), http.StatusOK, &list)
	if len(list) != 1 || list[0].IsActive {
		t.Fatalf("expected archived skill, got %+v", list)
	}

	events, err := s.audit.List(context.Background(), audit.Filter{}, false, 0, 0)
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	if len(events) != 7 {
		t.Fatalf("expected 7 audit events, got %d", len(events))
	}
	for _, evt := range events {
		if evt.Actor != auth.RoleAdmin || evt.RequestID == "" {
			t.Fatalf("unexpected audit event %+v", evt)
		}
	}
}

func TestWritesRequireAuth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/collaborators", `{"nombre":"Ana","rol":"Dev"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), middleware.CodeAuthRequired) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/collaborators/99", "", false)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "not_found" {
		t.Fatalf("expected not_found, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/collaborators/abc", "", false)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_id" {
		t.Fatalf("expected invalid_id, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/collaborators/1/evaluations", `{"assessments":[{"skillId":0,"nivel":7}]}`, true)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "validation_error" {
		t.Fatalf("expected validation_error, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/collaborators/1/evaluations", `{"assessments":[{"skillId":1,"nivel":3}]}`, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown collaborator to be 404, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/categories", `{`, true)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_json" {
		t.Fatalf("expected invalid_json, got %d", rec.Code)
	}

	rec = s.do(http.MethodGet, "/role-profiles/Nobody", "", false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected missing profile to be 404, got %d", rec.Code)
	}
}
