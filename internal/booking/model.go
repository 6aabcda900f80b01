package booking

import (
	"cmp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"travelagency/internal/listing"
	"travelagency/internal/workflow"
)

type PackageKind string

const (
	PackageTour PackageKind = "TOUR"
	PackageVisa PackageKind = "VISA"
)

type Booking struct {
	ID              string                 `json:"id"`
	CustomerID      string                 `json:"customerId"`
	CustomerName    string                 `json:"customerName,omitempty"`
	CustomerEmail   string                 `json:"customerEmail,omitempty"`
	PackageKind     PackageKind            `json:"packageKind"`
	PackageID       string                 `json:"packageId"`
	PackageTitle    string                 `json:"packageTitle"`
	TravelDate      time.Time              `json:"travelDate"`
	Travelers       int                    `json:"travelers"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
	Currency        string                 `json:"currency"`
	BookingStatus   workflow.BookingStatus `json:"bookingStatus"`
	PaymentStatus   workflow.PaymentStatus `json:"paymentStatus"`
	SpecialRequests string                 `json:"specialRequests,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// Change is one applied field mutation.
type Change struct {
	Field string
	From  string
	To    string
}

// ApplyStatus sets the booking status. It reports false when the booking
// already has that status, in which case nothing else should happen.
func ApplyStatus(b *Booking, next workflow.BookingStatus) (Change, bool) {
	if b.BookingStatus == next {
		return Change{}, false
	}
	c := Change{Field: "bookingStatus", From: string(b.BookingStatus), To: string(next)}
	b.BookingStatus = next
	return c, true
}

// ApplyPayment sets the payment status and leaves the booking status alone.
func ApplyPayment(b *Booking, next workflow.PaymentStatus) (Change, bool) {
	if b.PaymentStatus == next {
		return Change{}, false
	}
	c := Change{Field: "paymentStatus", From: string(b.PaymentStatus), To: string(next)}
	b.PaymentStatus = next
	return c, true
}

var Fields = listing.Fields[Booking]{
	Status:        func(b Booking) string { return string(b.BookingStatus) },
	PaymentStatus: func(b Booking) string { return string(b.PaymentStatus) },
	Category:      func(b Booking) string { return string(b.PackageKind) },
	Date:          func(b Booking) time.Time { return b.TravelDate },
	Text: func(b Booking) []string {
		return []string{b.ID, b.CustomerName, b.CustomerEmail, b.PackageTitle}
	},
}

var SortKeys = listing.Keys[Booking]{
	"createdat":  func(a, b Booking) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"traveldate": func(a, b Booking) int { return a.TravelDate.Compare(b.TravelDate) },
	"total":      func(a, b Booking) int { return a.TotalAmount.Cmp(b.TotalAmount) },
	"travelers":  func(a, b Booking) int { return cmp.Compare(a.Travelers, b.Travelers) },
	"customer": func(a, b Booking) int {
		return strings.Compare(strings.ToLower(a.CustomerName), strings.ToLower(b.CustomerName))
	},
}
