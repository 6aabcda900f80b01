package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthorizationError is returned when the caller's role is insufficient.
// Unauthenticated marks a missing or invalid identity rather than a weak one.
type AuthorizationError struct {
	Role            string
	Action          string
	Unauthenticated bool
}

func (e *AuthorizationError) Error() string {
	if e.Unauthenticated {
		return "authentication required"
	}
	if e.Role == "" {
		return "not allowed to " + e.Action
	}
	if e.Action == "" {
		return fmt.Sprintf("role %q is not allowed", e.Role)
	}
	return fmt.Sprintf("role %q is not allowed to %s", e.Role, e.Action)
}

type ValidationError struct {
	Code    string
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// TransientNetworkError wraps a timeout or connection failure. It is the
// only error kind eligible for retry.
type TransientNetworkError struct {
	Op  string
	Err error
}

func (e *TransientNetworkError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("transient network error: %v", e.Err)
	}
	return fmt.Sprintf("%s: transient network error: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// ServerError is an unexpected failure surfaced as-is. Status carries the
// upstream HTTP status when the error came from a remote call.
type ServerError struct {
	Status  int
	Message string
	Err     error
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "internal error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ServerError) Unwrap() error { return e.Err }

func Invalid(field, value, message string) *ValidationError {
	return &ValidationError{Code: "VALIDATION_FAILED", Field: field, Value: value, Message: message}
}

func Forbidden(role, action string) *AuthorizationError {
	return &AuthorizationError{Role: role, Action: action}
}

func Unauthenticated() *AuthorizationError {
	return &AuthorizationError{Unauthenticated: true}
}

func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func Internal(err error) *ServerError {
	return &ServerError{Status: http.StatusInternalServerError, Err: err}
}

func HTTPStatus(err error) int {
	var (
		authErr  *AuthorizationError
		valErr   *ValidationError
		nfErr    *NotFoundError
		transErr *TransientNetworkError
		srvErr   *ServerError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &authErr):
		if authErr.Unauthenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.As(err, &nfErr):
		return http.StatusNotFound
	case errors.As(err, &transErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &srvErr) && srvErr.Status >= 500:
		return srvErr.Status
	default:
		return http.StatusInternalServerError
	}
}

func Code(err error) string {
	var (
		authErr  *AuthorizationError
		valErr   *ValidationError
		nfErr    *NotFoundError
		transErr *TransientNetworkError
	)
	switch {
	case errors.As(err, &authErr):
		if authErr.Unauthenticated {
			return "UNAUTHORIZED"
		}
		return "FORBIDDEN"
	case errors.As(err, &valErr):
		if valErr.Code != "" {
			return valErr.Code
		}
		return "VALIDATION_FAILED"
	case errors.As(err, &nfErr):
		return "NOT_FOUND"
	case errors.As(err, &transErr):
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// PublicMessage is the message safe to show a caller. Server errors never
// leak their cause.
func PublicMessage(err error) string {
	var (
		authErr  *AuthorizationError
		valErr   *ValidationError
		nfErr    *NotFoundError
		transErr *TransientNetworkError
	)
	switch {
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &nfErr):
		return nfErr.Error()
	case errors.As(err, &transErr):
		return "service temporarily unavailable"
	default:
		return "internal error"
	}
}
