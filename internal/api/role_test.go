package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"travelagency/internal/authz"
	"travelagency/pkg/apperr"
	"travelagency/pkg/logger"
)

type roleTable map[string]authz.Role

func (t roleTable) CurrentRole(_ context.Context, id string) (authz.Role, error) {
	if id == "broken" {
		return "", errors.New("connection reset")
	}
	role, ok := t[id]
	if !ok {
		return "", apperr.NotFound("user", id)
	}
	return role, nil
}

func adminRoute(t *testing.T, roles roleTable, userID string, tokenRole authz.Role) *httptest.ResponseRecorder {
	t.Helper()
	h := Authenticate(testSecret)(RefreshRole(roles, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := Authorize(w, r, authz.ActionUpdateBookingStatus); ok {
			w.WriteHeader(http.StatusNoContent)
		}
	})))
	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	req.Header.Set("Authorization", bearer(t, userID, tokenRole))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRefreshRole_DemotedAdminLosesAccess(t *testing.T) {
	rr := adminRoute(t, roleTable{"u-1": authz.RoleCustomer}, "u-1", authz.RoleAdmin)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRefreshRole_PromotionAppliesImmediately(t *testing.T) {
	rr := adminRoute(t, roleTable{"u-1": authz.RoleAdmin}, "u-1", authz.RoleCustomer)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestRefreshRole_DeletedUserIsSignedOut(t *testing.T) {
	rr := adminRoute(t, roleTable{}, "u-1", authz.RoleAdmin)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRefreshRole_StoreFailureIsServerError(t *testing.T) {
	rr := adminRoute(t, roleTable{}, "broken", authz.RoleAdmin)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
