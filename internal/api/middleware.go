package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"travelagency/internal/authz"
	"travelagency/pkg/apperr"
	"travelagency/pkg/logger"
	"travelagency/pkg/metrics"
	"travelagency/pkg/token"
)

// Authenticate validates a Bearer access token and attaches the caller's
// identity to the request context.
//
// Expected header:
// - Authorization: Bearer <JWT>
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}

			v, err := token.VerifyAccess(strings.TrimSpace(header[7:]), secret, time.Now())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), &Identity{
				UserID: v.UserID,
				Role:   roleOf(v.Role),
			})))
		})
	}
}

// RoleSource reports the role a user holds now.
type RoleSource interface {
	CurrentRole(ctx context.Context, userID string) (authz.Role, error)
}

// RefreshRole replaces the role from the access token with the stored one,
// so a demotion applies before the token expires. It runs after
// Authenticate. A deleted user is treated as signed out.
func RefreshRole(src RoleSource, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				next.ServeHTTP(w, r)
				return
			}
			role, err := src.CurrentRole(r.Context(), id.UserID)
			if err != nil {
				var nf *apperr.NotFoundError
				if errors.As(err, &nf) {
					WriteAppError(w, apperr.Unauthenticated())
					return
				}
				log.Error("load current role", "user", id.UserID, "error", err)
				WriteAppError(w, apperr.Internal(err))
				return
			}
			if role != id.Role {
				log.Info("token role superseded", "user", id.UserID, "token_role", id.Role, "role", role)
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), &Identity{UserID: id.UserID, Role: roleOf(string(role))})))
		})
	}
}

// roleOf keeps unknown claim values as-is so authorization rejects them.
func roleOf(s string) authz.Role {
	if r, err := authz.ParseRole(s); err == nil {
		return r
	}
	return authz.Role(s)
}

// Caller returns the authenticated identity or writes 401.
func Caller(w http.ResponseWriter, r *http.Request) (*Identity, bool) {
	id := IdentityFromContext(r.Context())
	if id == nil {
		WriteAppError(w, apperr.Unauthenticated())
		return nil, false
	}
	return id, true
}

// Authorize returns the identity when its role may perform action and
// otherwise writes 401 or 403. Handlers call it before reading the body.
func Authorize(w http.ResponseWriter, r *http.Request, action authz.Action) (*Identity, bool) {
	id, ok := Caller(w, r)
	if !ok {
		return nil, false
	}
	if err := authz.Authorize(id.Role, action); err != nil {
		WriteAppError(w, err)
		return nil, false
	}
	return id, true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request and records request metrics.
func RequestLogger(log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			d := time.Since(start)
			m.ObserveRequest(r.Method, route, rec.status, d)

			kv := []any{"method", r.Method, "route", route, "status", rec.status, "duration", d.String()}
			if rec.status >= 500 {
				log.Error("request", kv...)
				return
			}
			log.Info("request", kv...)
		})
	}
}
