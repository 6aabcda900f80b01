package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"travelagency/internal/authz"
	"travelagency/pkg/apperr"
	"travelagency/pkg/token"
)

const testSecret = "test_secret"

func bearer(t *testing.T, userID string, role authz.Role) string {
	t.Helper()
	acc, err := token.IssueAccess(testSecret, userID, string(role), time.Minute, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return "Bearer " + acc.Token
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env.Error
}

func TestAuthenticate_MissingToken(t *testing.T) {
	h := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthenticate_AttachesIdentity(t *testing.T) {
	var got *Identity
	h := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, "u-1", authz.RoleAdmin))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.UserID != "u-1" || got.Role != authz.RoleAdmin {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestAuthorize_CustomerGetsForbidden(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: "c-1", Role: authz.RoleCustomer}))
	rr := httptest.NewRecorder()

	if _, ok := Authorize(rr, req, authz.ActionUpdateBookingStatus); ok {
		t.Fatalf("expected customer to be rejected")
	}
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if e := decodeEnvelope(t, rr); e.Code != "FORBIDDEN" {
		t.Fatalf("unexpected code %q", e.Code)
	}
}

func TestWriteAppError_ValidationKeepsValue(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAppError(rr, apperr.Invalid("bookingStatus", "SHIPPED", `unknown booking status: "SHIPPED"`))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	e := decodeEnvelope(t, rr)
	if e.Value != "SHIPPED" || e.Field != "bookingStatus" {
		t.Fatalf("unexpected envelope %+v", e)
	}
}

func TestDecode_RunsValidateTags(t *testing.T) {
	type body struct {
		Rating int `json:"rating" validate:"min=1,max=5"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":7}`))
	var b body
	err := Decode(req, &b)
	ve, ok := err.(*apperr.ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "rating" || ve.Value != "7" {
		t.Fatalf("unexpected error %+v", ve)
	}
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	var gotErr error
	var gotID string
	r.Get("/x/{id}", func(w http.ResponseWriter, req *http.Request) {
		gotID, gotErr = PathID(req, "id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/not-a-uuid", nil))
	if gotErr == nil {
		t.Fatalf("expected malformed id to fail")
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/6f1c2a52-4b7e-4a8e-9d0a-2f7f5b0c9e11", nil))
	if gotErr != nil || gotID != "6f1c2a52-4b7e-4a8e-9d0a-2f7f5b0c9e11" {
		t.Fatalf("unexpected result %q %v", gotID, gotErr)
	}
}

func TestCORSMiddleware_OnlyAllowedOrigins(t *testing.T) {
	h := CORSMiddleware(CORSOptions{AllowedOrigins: []string{"https://travel.example"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected allow origin header")
	}

	req.Header.Set("Origin", "https://travel.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://travel.example" || rr.Code != http.StatusNoContent {
		t.Fatalf("expected preflight to be allowed")
	}
}

func TestCORSMiddleware_WildcardForDevelopment(t *testing.T) {
	h := CORSMiddleware(CORSOptions{AllowedOrigins: []string{"*"}, ExposedHeaders: []string{"Content-Disposition"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected request to reach handler, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("expected origin to be echoed")
	}
	if rr.Header().Get("Access-Control-Expose-Headers") != "Content-Disposition" {
		t.Fatalf("expected exposed headers")
	}
}
