package workflow

import (
	"fmt"
	"strings"

	"travelagency/pkg/apperr"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded}

type ApplicationStatus string

const (
	ApplicationPending            ApplicationStatus = "PENDING"
	ApplicationReviewing          ApplicationStatus = "REVIEWING"
	ApplicationShortlisted        ApplicationStatus = "SHORTLISTED"
	ApplicationInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	ApplicationAccepted           ApplicationStatus = "ACCEPTED"
	ApplicationRejected           ApplicationStatus = "REJECTED"
)

var ApplicationStatuses = []ApplicationStatus{
	ApplicationPending, ApplicationReviewing, ApplicationShortlisted,
	ApplicationInterviewScheduled, ApplicationAccepted, ApplicationRejected,
}

type ReviewAction string

const (
	ReviewApprove ReviewAction = "APPROVE"
	ReviewReject  ReviewAction = "REJECT"
	ReviewDelete  ReviewAction = "DELETE"
)

// Approved is the isApproved value a moderation action leaves behind.
// DELETE has no resulting value.
func (a ReviewAction) Approved() (bool, bool) {
	switch a {
	case ReviewApprove:
		return true, true
	case ReviewReject:
		return false, true
	default:
		return false, false
	}
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	return parse(s, BookingStatuses, "bookingStatus", "booking status")
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	return parse(s, PaymentStatuses, "paymentStatus", "payment status")
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	return parse(s, ApplicationStatuses, "status", "application status")
}

func ParseReviewAction(s string) (ReviewAction, error) {
	return parse(s, []ReviewAction{ReviewApprove, ReviewReject, ReviewDelete}, "action", "review action")
}

// parse is a closed-set membership check. Matching ignores case and
// surrounding space; the error names the value exactly as received.
func parse[S ~string](s string, members []S, field, label string) (S, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	for _, m := range members {
		if string(m) == norm {
			return m, nil
		}
	}
	return "", &apperr.ValidationError{
		Code:    "INVALID_" + strings.ToUpper(strings.ReplaceAll(label, " ", "_")),
		Field:   field,
		Value:   s,
		Message: fmt.Sprintf("unknown %s: %q", label, s),
	}
}
