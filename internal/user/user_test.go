package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"travelagency/internal/api"
	"travelagency/internal/authz"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ok, err := CheckPassword(hash, "correct horse"); !ok || err != nil {
		t.Fatalf("expected match, got %t %v", ok, err)
	}
	if ok, err := CheckPassword(hash, "wrong horse"); ok || err != nil {
		t.Fatalf("expected clean mismatch, got %t %v", ok, err)
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short", bcrypt.MinCost); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Fatalf("unexpected %q", got)
	}
}

func serve(h Handlers, role authz.Role, userID, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Post("/employees", h.CreateEmployee)
	r.Patch("/users/{id}/role", h.ChangeRole)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(api.WithIdentity(req.Context(), &api.Identity{UserID: userID, Role: role}))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateEmployee_AdminIsForbidden(t *testing.T) {
	rr := serve(Handlers{}, authz.RoleAdmin, "a-1", http.MethodPost, "/employees",
		`{"email":"new@example.com","password":"longenough","name":"New","role":"ADMIN"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestCreateEmployee_CustomerRoleRejected(t *testing.T) {
	rr := serve(Handlers{}, authz.RoleSuperAdmin, "s-1", http.MethodPost, "/employees",
		`{"email":"new@example.com","password":"longenough","name":"New","role":"CUSTOMER"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestChangeRole_Guards(t *testing.T) {
	const self = "6f1c2a52-4b7e-4a8e-9d0a-2f7f5b0c9e11"
	cases := []struct {
		name string
		role authz.Role
		body string
		want int
	}{
		{"admin", authz.RoleAdmin, `{"role":"SUPER_ADMIN"}`, http.StatusForbidden},
		{"customer", authz.RoleCustomer, `{"role":"ADMIN"}`, http.StatusForbidden},
		{"unknown role", authz.RoleSuperAdmin, `{"role":"OWNER"}`, http.StatusBadRequest},
		{"self", authz.RoleSuperAdmin, `{"role":"ADMIN"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		rr := serve(Handlers{}, tc.role, self, http.MethodPatch, "/users/"+self+"/role", tc.body)
		if rr.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rr.Code)
		}
	}
}
