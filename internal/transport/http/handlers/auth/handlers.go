package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skima/internal/domain/auth"
	"skima/internal/platform/requestctx"
	"skima/internal/transport/http/api"
	"skima/internal/transport/http/middleware"
)

type Handler struct {
	Service *auth.Service
	// LoginLimit wraps the login route when set.
	LoginLimit func(http.Handler) http.Handler
}

func NewHandler(svc *auth.Service, loginLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: svc, LoginLimit: loginLimit}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	login := http.Handler(http.HandlerFunc(h.HandleLogin))
	if h.LoginLimit != nil {
		login = h.LoginLimit(login)
	}
	r.Method(http.MethodPost, "/auth/login", login)
	r.Get("/auth/verify", h.HandleVerify)
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	_ = json.NewDecoder(r.Body).Decode(&payload)

	token, err := h.Service.Login(r.Context(), payload.Password)
	switch {
	case err == nil:
		api.WriteJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, Message: "Inicio de sesión exitoso"})
	case errors.Is(err, auth.ErrPasswordRequired):
		api.Reject(w, http.StatusBadRequest, "PASSWORD_REQUIRED", "Contraseña requerida")
	case errors.Is(err, auth.ErrInvalidPassword):
		api.Reject(w, http.StatusUnauthorized, "INVALID_PASSWORD", "Contraseña incorrecta")
	case errors.Is(err, auth.ErrNotConfigured):
		api.Reject(w, http.StatusServiceUnavailable, "NOT_CONFIGURED", "El sistema no está configurado")
	default:
		requestctx.Logger(r.Context(), slog.Default()).Error("login failed", "err", err)
		api.Reject(w, http.StatusInternalServerError, "SERVER_ERROR", "Error en el servidor")
	}
}

type verifyResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *auth.Claims `json:"user,omitempty"`
}

// HandleVerify never fails; an absent or bad token reads as unauthenticated.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		api.WriteJSON(w, http.StatusOK, verifyResponse{})
		return
	}
	api.WriteJSON(w, http.StatusOK, verifyResponse{Authenticated: true, User: claims})
}
