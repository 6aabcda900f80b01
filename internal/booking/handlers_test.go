package booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"travelagency/internal/api"
	"travelagency/internal/authz"
)

const testID = "6f1c2a52-4b7e-4a8e-9d0a-2f7f5b0c9e11"

func patch(t *testing.T, role authz.Role, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := Handlers{}
	r := chi.NewRouter()
	r.Patch("/bookings/{id}/status", h.PatchStatus)
	r.Patch("/bookings/{id}/payment-status", h.PatchPaymentStatus)

	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	if role != "" {
		req = req.WithContext(api.WithIdentity(req.Context(), &api.Identity{UserID: "u-1", Role: role}))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) api.APIError {
	t.Helper()
	var env api.ErrorEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Error
}

func TestPatchStatus_CustomerIsForbidden(t *testing.T) {
	rr := patch(t, authz.RoleCustomer, "/bookings/"+testID+"/status", `{"status":"CONFIRMED"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestPatchStatus_Unauthenticated(t *testing.T) {
	rr := patch(t, "", "/bookings/"+testID+"/status", `{"status":"CONFIRMED"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestPatchStatus_UnknownStatusRejectedBeforeStorage(t *testing.T) {
	rr := patch(t, authz.RoleAdmin, "/bookings/"+testID+"/status", `{"status":"SHIPPED"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	e := errorOf(t, rr)
	if e.Code != "INVALID_BOOKING_STATUS" || e.Value != "SHIPPED" {
		t.Fatalf("unexpected error %+v", e)
	}
}

func TestPatchPaymentStatus_UnknownStatus(t *testing.T) {
	rr := patch(t, authz.RoleSuperAdmin, "/bookings/"+testID+"/payment-status", `{"paymentStatus":"OVERDUE"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if e := errorOf(t, rr); e.Field != "paymentStatus" || e.Value != "OVERDUE" {
		t.Fatalf("unexpected error %+v", e)
	}
}

func TestPatchStatus_MalformedID(t *testing.T) {
	rr := patch(t, authz.RoleAdmin, "/bookings/123/status", `{"status":"CONFIRMED"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
