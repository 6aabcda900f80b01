package review

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"travelagency/internal/api"
	"travelagency/internal/authz"
	"travelagency/internal/listing"
	"travelagency/internal/workflow"
)

func TestModerate_ApproveKeepsRating(t *testing.T) {
	rv := Review{Rating: 4, Comment: "great guide"}
	from, to, changed := Moderate(&rv, workflow.ReviewApprove)
	if !changed || from || !to {
		t.Fatalf("unexpected result %t %t %t", from, to, changed)
	}
	if !rv.IsApproved || rv.Rating != 4 || rv.Comment != "great guide" {
		t.Fatalf("unexpected review %+v", rv)
	}
}

func TestModerate_RepeatApproveIsNoop(t *testing.T) {
	rv := Review{Rating: 5, IsApproved: true}
	if _, _, changed := Moderate(&rv, workflow.ReviewApprove); changed {
		t.Fatalf("expected no change")
	}
	if !rv.IsApproved {
		t.Fatalf("approval lost")
	}
}

func TestModerate_RejectUnapproves(t *testing.T) {
	rv := Review{Rating: 2, IsApproved: true}
	if _, to, changed := Moderate(&rv, workflow.ReviewReject); !changed || to {
		t.Fatalf("expected reject to clear approval")
	}
}

func TestModerate_DeleteIsNotAModerationState(t *testing.T) {
	rv := Review{Rating: 3}
	if _, _, changed := Moderate(&rv, workflow.ReviewDelete); changed {
		t.Fatalf("delete must not toggle isApproved")
	}
}

func TestFields_StatusFilter(t *testing.T) {
	items := []Review{
		{ID: "1", IsApproved: true, AuthorName: "Kim"},
		{ID: "2", IsApproved: false, AuthorName: "Lee"},
	}
	got := listing.Filter(items, listing.Criteria{Status: "approved"}, Fields)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected result %+v", got)
	}
	got = listing.Filter(items, listing.Criteria{Status: "pending", Search: "LEE"}, Fields)
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestApprove_CustomerIsForbidden(t *testing.T) {
	h := Handlers{}
	r := chi.NewRouter()
	r.Post("/reviews/{id}/approve", h.Approve)
	r.Delete("/reviews/{id}", h.Delete)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/reviews/6f1c2a52-4b7e-4a8e-9d0a-2f7f5b0c9e11/approve"},
		{http.MethodDelete, "/reviews/6f1c2a52-4b7e-4a8e-9d0a-2f7f5b0c9e11"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req = req.WithContext(api.WithIdentity(req.Context(), &api.Identity{UserID: "c-1", Role: authz.RoleCustomer}))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestCreate_RatingOutOfRange(t *testing.T) {
	h := Handlers{}
	r := chi.NewRouter()
	r.Post("/tours/{id}/reviews", h.Create)

	for _, body := range []string{`{"rating":0}`, `{"rating":6}`, `{"rating":4.5}`} {
		req := httptest.NewRequest(http.MethodPost, "/tours/6f1c2a52-4b7e-4a8e-9d0a-2f7f5b0c9e11/reviews", strings.NewReader(body))
		req = req.WithContext(api.WithIdentity(req.Context(), &api.Identity{UserID: "c-1", Role: authz.RoleCustomer}))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rr.Code)
		}
	}
}
