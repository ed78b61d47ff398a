package skillshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"skima/internal/domain/audit"
	"skima/internal/domain/skills"
	"skima/internal/platform/requestctx"
	"skima/internal/transport/http/api"
	"skima/internal/transport/http/middleware"
	"skima/internal/transport/http/shared"
)

type Handler struct {
	Service *skills.Service
	Audit   *audit.Service
	Logger  *slog.Logger
}

func NewHandler(svc *skills.Service, auditSvc *audit.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Service: svc, Audit: auditSvc, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/collaborators", func(r chi.Router) {
		r.Get("/", h.handleListCollaborators)
		r.With(middleware.RequireAuth).Post("/", h.handleCreateCollaborator)
		r.Get("/{id}", h.handleGetCollaborator)
		r.With(middleware.RequireAuth).Put("/{id}/status", h.handleCollaboratorStatus)
		r.Get("/{id}/evaluations", h.handleListEvaluations)
		r.With(middleware.RequireAuth).Post("/{id}/evaluations", h.handleRecordEvaluation)
	})
	r.Get("/evaluations/{id}/assessments", h.handleListAssessments)

	r.Route("/role-profiles", func(r chi.Router) {
		r.Get("/", h.handleListRoleProfiles)
		r.Get("/{role}", h.handleGetRoleProfile)
		r.With(middleware.RequireAuth).Put("/{role}", h.handlePutRoleProfile)
	})

	r.Get("/categories", h.handleListCategories)
	r.With(middleware.RequireAuth).Post("/categories", h.handleCreateCategory)
	r.Get("/skills", h.handleListSkills)
	r.With(middleware.RequireAuth).Post("/skills", h.handleCreateSkill)
	r.With(middleware.RequireAuth).Put("/skills/{id}/status", h.handleSkillStatus)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, skills.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "recurso no encontrado", reqID)
	case errors.Is(err, skills.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), reqID)
	case errors.As(err, &tooLarge):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", reqID)
	default:
		requestctx.Logger(r.Context(), h.Logger).Error("skills request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "server_error", "Error en el servidor", reqID)
	}
}

// record writes an audit event for a successful admin write. Failures are
// logged and never fail the request.
func (h *Handler) record(r *http.Request, action, entityType, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	actor := "anonymous"
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		actor = claims.Role
	}
	if err := h.Audit.Record(r.Context(), actor, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), after); err != nil {
		requestctx.Logger(r.Context(), h.Logger).Warn("audit "+action+" failed", "err", err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, err)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_json", "invalid json", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := shared.PathID(chi.URLParam(r, "id"))
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer", middleware.GetRequestID(r.Context()))
	}
	return id, ok
}

type statusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *Handler) decodeStatus(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var payload statusRequest
	if !h.decode(w, r, &payload) {
		return false, false
	}
	v := shared.NewValidator()
	if payload.IsActive == nil {
		v.Add("isActive", "is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return false, false
	}
	return *payload.IsActive, true
}

func (h *Handler) handleListCollaborators(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListCollaborators(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("active") == "true" {
		active := list[:0]
		for _, c := range list {
			if c.IsActive {
				active = append(active, c)
			}
		}
		list = active
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

type collaboratorRequest struct {
	Name     string `json:"nombre"`
	Role     string `json:"rol"`
	Email    string `json:"email"`
	JoinedAt string `json:"joinedAt"`
}

func (h *Handler) handleCreateCollaborator(w http.ResponseWriter, r *http.Request) {
	var payload collaboratorRequest
	if !h.decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("nombre", payload.Name)
	v.Required("rol", payload.Role)
	joined := v.Date("joinedAt", payload.JoinedAt)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	c, err := h.Service.CreateCollaborator(r.Context(), skills.CollaboratorInput{
		Name:     payload.Name,
		Role:     payload.Role,
		Email:    strings.TrimSpace(payload.Email),
		JoinedAt: joined,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, "collaborator.create", "collaborator", strconv.FormatInt(c.ID, 10), c)
	api.Created(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCollaborator(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Service.GetCollaborator(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCollaboratorStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	active, ok := h.decodeStatus(w, r)
	if !ok {
		return
	}
	if err := h.Service.SetCollaboratorActive(r.Context(), id, active); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, "collaborator.status", "collaborator", strconv.FormatInt(id, 10), map[string]bool{"isActive": active})
	api.Success(w, map[string]any{"id": id, "isActive": active}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sessions, err := h.Service.ListSessions(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, sessions, middleware.GetRequestID(r.Context()))
}

type evaluationRequest struct {
	EvaluatedAt string                   `json:"evaluatedAt"`
	EvaluatedBy string                   `json:"evaluatedBy"`
	Notes       string                   `json:"notes"`
	Assessments []skills.AssessmentInput `json:"assessments"`
}

func (h *Handler) handleRecordEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload evaluationRequest
	if !h.decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	at := v.Date("evaluatedAt", payload.EvaluatedAt)
	if len(payload.Assessments) == 0 {
		v.Add("assessments", "at least one assessment is required")
	}
	for _, a := range payload.Assessments {
		v.Positive("skillId", a.SkillID)
		v.Between("nivel", a.Level, skills.MinLevel, skills.MaxLevel)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	session, err := h.Service.RecordEvaluation(r.Context(), id, skills.EvaluationInput{
		EvaluatedAt: at,
		EvaluatedBy: payload.EvaluatedBy,
		Notes:       payload.Notes,
		Assessments: payload.Assessments,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, "evaluation.record", "evaluation_session", strconv.FormatInt(session.ID, 10), map[string]any{"collaboratorId": id, "assessments": len(payload.Assessments)})
	api.Created(w, session, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.Service.ListAssessments(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRoleProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListRoleProfiles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRoleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetRoleProfile(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

type roleProfileRequest struct {
	Skills map[int64]skills.Criticality `json:"skills"`
}

func (h *Handler) handlePutRoleProfile(w http.ResponseWriter, r *http.Request) {
	var payload roleProfileRequest
	if !h.decode(w, r, &payload) {
		return
	}
	role := chi.URLParam(r, "role")
	if err := h.Service.UpsertRoleProfile(r.Context(), role, payload.Skills); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.Service.GetRoleProfile(r.Context(), role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, "role_profile.upsert", "role_profile", role, p.Skills)
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

type categoryRequest struct {
	Name   string `json:"nombre"`
	Abbrev string `json:"abrev"`
	Order  int    `json:"orden"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryRequest
	if !h.decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("nombre", payload.Name)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	c, err := h.Service.CreateCategory(r.Context(), payload.Name, payload.Abbrev, payload.Order)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, "category.create", "category", strconv.FormatInt(c.ID, 10), c)
	api.Created(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSkills(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListSkills(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

type skillRequest struct {
	Name       string `json:"nombre"`
	CategoryID int64  `json:"categoria"`
}

func (h *Handler) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	var payload skillRequest
	if !h.decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("nombre", payload.Name)
	v.Positive("categoria", payload.CategoryID)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	s, err := h.Service.CreateSkill(r.Context(), payload.Name, payload.CategoryID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, "skill.create", "skill", strconv.FormatInt(s.ID, 10), s)
	api.Created(w, s, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSkillStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	active, ok := h.decodeStatus(w, r)
	if !ok {
		return
	}
	if err := h.Service.SetSkillActive(r.Context(), id, active); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, "skill.status", "skill", strconv.FormatInt(id, 10), map[string]bool{"isActive": active})
	api.Success(w, map[string]any{"id": id, "isActive": active}, middleware.GetRequestID(r.Context()))
}
