package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegister_ValidatesBody(t *testing.T) {
	cases := []string{
		`{"email":"not-an-email","password":"longenough","name":"Ana"}`,
		`{"email":"ana@example.com","password":"short","name":"Ana"}`,
		`{"email":"ana@example.com","password":"longenough"}`,
		`{"email":"ana@example.com","password":"longenough","name":"Ana","role":"SUPER_ADMIN"}`,
	}
	for _, body := range cases {
		rr := httptest.NewRecorder()
		Handlers{}.Register(rr, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestRefresh_RequiresToken(t *testing.T) {
	rr := httptest.NewRecorder()
	Handlers{}.Refresh(rr, httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	rr := httptest.NewRecorder()
	Handlers{}.Me(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
