package booking

import "travelagency/internal/workflow"

// Anomaly is a status pair worth a second look. Status fields are
// independent, so these are reported and never rejected.
type Anomaly struct {
	Booking Booking `json:"booking"`
	Reason  string  `json:"reason"`
}

func anomalyReason(b Booking) (string, bool) {
	switch {
	case b.BookingStatus == workflow.BookingCancelled && b.PaymentStatus == workflow.PaymentPaid:
		return "cancelled but fully paid; refund may be due", true
	case b.BookingStatus == workflow.BookingPending && b.PaymentStatus == workflow.PaymentRefunded:
		return "refunded while still pending", true
	case b.BookingStatus == workflow.BookingCompleted && b.PaymentStatus == workflow.PaymentPending:
		return "completed with no payment recorded", true
	}
	return "", false
}

func Anomalies(items []Booking) []Anomaly {
	out := []Anomaly{}
	for _, b := range items {
		if reason, ok := anomalyReason(b); ok {
			out = append(out, Anomaly{Booking: b, Reason: reason})
		}
	}
	return out
}
