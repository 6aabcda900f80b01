package job

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"travelagency/internal/api"
	"travelagency/internal/authz"
	"travelagency/internal/listing"
	"travelagency/internal/workflow"
)

const testID = "6f1c2a52-4b7e-4a8e-9d0a-2f7f5b0c9e11"

func TestApplyUpdate_StatusAndNotesKeepAppliedAt(t *testing.T) {
	applied := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	a := Application{Status: workflow.ApplicationPending, AppliedAt: applied}
	st := workflow.ApplicationShortlisted
	notes := "strong portfolio"

	changes := ApplyUpdate(&a, &st, &notes)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", changes)
	}
	if a.Status != workflow.ApplicationShortlisted || a.Notes != "strong portfolio" {
		t.Fatalf("unexpected application %+v", a)
	}
	if !a.AppliedAt.Equal(applied) {
		t.Fatalf("appliedAt changed to %s", a.AppliedAt)
	}
}

func TestApplyUpdate_NotesOnly(t *testing.T) {
	a := Application{Status: workflow.ApplicationReviewing}
	notes := "call on monday"
	changes := ApplyUpdate(&a, nil, &notes)
	if len(changes) != 1 || changes[0].Field != "notes" || a.Status != workflow.ApplicationReviewing {
		t.Fatalf("unexpected result %+v %+v", changes, a)
	}
}

func TestApplyUpdate_RepeatIsNoop(t *testing.T) {
	a := Application{Status: workflow.ApplicationAccepted, Notes: "hired"}
	st := workflow.ApplicationAccepted
	notes := "hired"
	if changes := ApplyUpdate(&a, &st, &notes); len(changes) != 0 {
		t.Fatalf("expected no changes, got %+v", changes)
	}
}

func TestPatchApplicationRequest_RequiresAField(t *testing.T) {
	if _, err := (PatchApplicationRequest{}).parse(); err == nil {
		t.Fatalf("expected empty patch to fail")
	}
	bad := "HIRED"
	if _, err := (PatchApplicationRequest{Status: &bad}).parse(); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
	ok := "interview_scheduled"
	st, err := (PatchApplicationRequest{Status: &ok}).parse()
	if err != nil || *st != workflow.ApplicationInterviewScheduled {
		t.Fatalf("unexpected result %v %v", st, err)
	}
}

func TestSetActive(t *testing.T) {
	p := Posting{IsActive: true}
	if !SetActive(&p, false) || p.IsActive {
		t.Fatalf("expected deactivation")
	}
	if SetActive(&p, false) {
		t.Fatalf("expected repeat to be a no-op")
	}
}

func TestApplicationFields_FilterByJobAndStatus(t *testing.T) {
	items := []Application{
		{ID: "1", JobID: "j1", Status: workflow.ApplicationPending, Name: "Ada"},
		{ID: "2", JobID: "j2", Status: workflow.ApplicationPending, Name: "Bo"},
		{ID: "3", JobID: "j1", Status: workflow.ApplicationRejected, Name: "Cy"},
	}
	got := listing.Filter(items, listing.Criteria{Category: "j1", Status: "pending"}, ApplicationFields)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestPatchApplication_Guards(t *testing.T) {
	h := Handlers{}
	r := chi.NewRouter()
	r.Patch("/applications/{id}", h.PatchApplication)

	cases := []struct {
		role authz.Role
		body string
		want int
	}{
		{authz.RoleCustomer, `{"status":"ACCEPTED"}`, http.StatusForbidden},
		{authz.RoleAdmin, `{}`, http.StatusBadRequest},
		{authz.RoleAdmin, `{"status":"HIRED"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPatch, "/applications/"+testID, strings.NewReader(tc.body))
		req = req.WithContext(api.WithIdentity(req.Context(), &api.Identity{UserID: "u-1", Role: tc.role}))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.role, tc.body, tc.want, rr.Code)
		}
	}
}

func TestCreatePosting_PositionsAtLeastOne(t *testing.T) {
	h := Handlers{}
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{"title":"Guide","positions":0}`))
	req = req.WithContext(api.WithIdentity(req.Context(), &api.Identity{UserID: "u-1", Role: authz.RoleAdmin}))
	rr := httptest.NewRecorder()
	h.CreatePosting(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
