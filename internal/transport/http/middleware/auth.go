package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"skima/internal/domain/auth"
	"skima/internal/transport/http/api"
)

type ctxKey string

const (
	ctxKeyClaims   ctxKey = "claims"
	ctxKeyTokenErr ctxKey = "token_err"
)

const (
	CodeAuthRequired = "AUTH_REQUIRED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeInvalidToken = "INVALID_TOKEN"
)

// Auth parses a bearer token when one is present. It never rejects; routes
// that need a session are wrapped in RequireAuth.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.ParseToken(secret, token)
			ctx := r.Context()
			if err != nil {
				ctx = context.WithValue(ctx, ctxKeyTokenErr, err)
			} else {
				ctx = context.WithValue(ctx, ctxKeyClaims, claims)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetClaims(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		err, _ := r.Context().Value(ctxKeyTokenErr).(error)
		switch {
		case err == nil:
			api.Reject(w, http.StatusUnauthorized, CodeAuthRequired, "No autorizado. Inicia sesión para continuar.")
		case errors.Is(err, auth.ErrTokenExpired):
			api.Reject(w, http.StatusUnauthorized, CodeTokenExpired, "Sesión expirada. Por favor inicia sesión de nuevo.")
		default:
			api.Reject(w, http.StatusUnauthorized, CodeInvalidToken, "Token inválido.")
		}
	})
}

func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return claims, ok && claims != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
