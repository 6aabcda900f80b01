package workflow

import (
	"fmt"

	"travelagency/pkg/apperr"
)

// Rule decides whether a status field may move from one value to another.
// Values reaching a Rule are already known members of the enumeration.
type Rule[S ~string] interface {
	Allows(from, to S) bool
	Name() string
}

// AnyToAny lets an admin set any member from any other member. It is the
// default policy for booking, payment and application statuses.
type AnyToAny[S ~string] struct{}

func (AnyToAny[S]) Allows(from, to S) bool { return true }
func (AnyToAny[S]) Name() string           { return "any-to-any" }

// Graph allows only the listed successors. Staying in the same state is
// always allowed so repeated requests stay idempotent.
type Graph[S ~string] struct {
	name  string
	edges map[S]map[S]bool
}

func NewGraph[S ~string](name string, edges map[S][]S) Graph[S] {
	g := Graph[S]{name: name, edges: make(map[S]map[S]bool, len(edges))}
	for from, tos := range edges {
		m := make(map[S]bool, len(tos))
		for _, to := range tos {
			m[to] = true
		}
		g.edges[from] = m
	}
	return g
}

func (g Graph[S]) Allows(from, to S) bool {
	if from == to {
		return true
	}
	return g.edges[from][to]
}

func (g Graph[S]) Name() string { return g.name }

var strictBooking = NewGraph("strict", map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
	BookingCancelled: {},
	BookingCompleted: {},
})

var strictPayment = NewGraph("strict", map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPartial, PaymentPaid},
	PaymentPartial:  {PaymentPaid, PaymentRefunded},
	PaymentPaid:     {PaymentRefunded},
	PaymentRefunded: {},
})

var strictApplication = NewGraph("strict", map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:            {ApplicationReviewing, ApplicationRejected},
	ApplicationReviewing:          {ApplicationShortlisted, ApplicationRejected},
	ApplicationShortlisted:        {ApplicationInterviewScheduled, ApplicationRejected},
	ApplicationInterviewScheduled: {ApplicationAccepted, ApplicationRejected},
	ApplicationAccepted:           {},
	ApplicationRejected:           {},
})

// Rules bundles the rule for each status field.
type Rules struct {
	Booking     Rule[BookingStatus]
	Payment     Rule[PaymentStatus]
	Application Rule[ApplicationStatus]
}

// DefaultRules is the any-to-any policy for every field.
func DefaultRules() Rules {
	return Rules{
		Booking:     AnyToAny[BookingStatus]{},
		Payment:     AnyToAny[PaymentStatus]{},
		Application: AnyToAny[ApplicationStatus]{},
	}
}

// RulesFor maps the WORKFLOW_TRANSITIONS setting to a rule set.
func RulesFor(mode string) (Rules, error) {
	switch mode {
	case "", "any":
		return DefaultRules(), nil
	case "strict":
		return Rules{Booking: strictBooking, Payment: strictPayment, Application: strictApplication}, nil
	default:
		return Rules{}, fmt.Errorf("unknown workflow transitions mode: %s", mode)
	}
}

// Check returns a conflict-style validation error when rule rejects the move.
func Check[S ~string](rule Rule[S], field string, from, to S) error {
	if rule == nil || rule.Allows(from, to) {
		return nil
	}
	return &apperr.ValidationError{
		Code:    "INVALID_STATE_TRANSITION",
		Field:   field,
		Value:   string(to),
		Message: fmt.Sprintf("%s cannot move from %s to %s under the %s rule", field, from, to, rule.Name()),
	}
}
