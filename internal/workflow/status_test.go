package workflow

import (
	"errors"
	"strings"
	"testing"

	"travelagency/pkg/apperr"
)

func TestParseBookingStatus_RejectsUnknownAndNamesValue(t *testing.T) {
	_, err := ParseBookingStatus("SHIPPED")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Value != "SHIPPED" || !strings.Contains(ve.Message, "SHIPPED") {
		t.Fatalf("expected error to name SHIPPED, got %+v", ve)
	}
}

func TestParse_CaseAndSpaceInsensitive(t *testing.T) {
	got, err := ParsePaymentStatus(" paid ")
	if err != nil || got != PaymentPaid {
		t.Fatalf("expected PAID, got %q err=%v", got, err)
	}
	app, err := ParseApplicationStatus("interview_scheduled")
	if err != nil || app != ApplicationInterviewScheduled {
		t.Fatalf("expected INTERVIEW_SCHEDULED, got %q err=%v", app, err)
	}
}

func TestParse_EveryMemberRoundTrips(t *testing.T) {
	for _, s := range BookingStatuses {
		if got, err := ParseBookingStatus(string(s)); err != nil || got != s {
			t.Fatalf("booking %s: got %q err=%v", s, got, err)
		}
	}
	for _, s := range PaymentStatuses {
		if got, err := ParsePaymentStatus(string(s)); err != nil || got != s {
			t.Fatalf("payment %s: got %q err=%v", s, got, err)
		}
	}
	for _, s := range ApplicationStatuses {
		if got, err := ParseApplicationStatus(string(s)); err != nil || got != s {
			t.Fatalf("application %s: got %q err=%v", s, got, err)
		}
	}
}

func TestParse_EmptyIsInvalid(t *testing.T) {
	if _, err := ParseApplicationStatus(""); err == nil {
		t.Fatalf("expected error for empty status")
	}
}

func TestReviewAction_Approved(t *testing.T) {
	if v, ok := ReviewApprove.Approved(); !ok || !v {
		t.Fatalf("approve should yield true")
	}
	if v, ok := ReviewReject.Approved(); !ok || v {
		t.Fatalf("reject should yield false")
	}
	if _, ok := ReviewDelete.Approved(); ok {
		t.Fatalf("delete has no resulting value")
	}
}
