package listing

import (
	"strings"
	"time"
)

// Criteria is a set of independent predicates. An empty or "all" value
// disables its predicate.
type Criteria struct {
	Status        string
	PaymentStatus string
	Category      string
	From          *time.Time
	To            *time.Time
	Search        string
}

// Fields extracts the values a record kind exposes to each predicate. A nil
// accessor means the kind has no such field and the predicate is skipped.
type Fields[T any] struct {
	Status        func(T) string
	PaymentStatus func(T) string
	Category      func(T) string
	Date          func(T) time.Time
	Text          func(T) []string
}

func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// Filter returns the records matching every predicate, in their original order.
func Filter[T any](items []T, c Criteria, f Fields[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Matches(it, c, f) {
			out = append(out, it)
		}
	}
	return out
}

func Matches[T any](it T, c Criteria, f Fields[T]) bool {
	if !IsAll(c.Status) && f.Status != nil && !strings.EqualFold(f.Status(it), strings.TrimSpace(c.Status)) {
		return false
	}
	if !IsAll(c.PaymentStatus) && f.PaymentStatus != nil && !strings.EqualFold(f.PaymentStatus(it), strings.TrimSpace(c.PaymentStatus)) {
		return false
	}
	if !IsAll(c.Category) && f.Category != nil && !strings.EqualFold(f.Category(it), strings.TrimSpace(c.Category)) {
		return false
	}
	if f.Date != nil && (c.From != nil || c.To != nil) && !inRange(f.Date(it), c.From, c.To) {
		return false
	}
	if q := strings.TrimSpace(c.Search); q != "" && f.Text != nil && !containsFold(f.Text(it), q) {
		return false
	}
	return true
}

// inRange is inclusive of both calendar days.
func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(startOfDay(*from)) {
		return false
	}
	if to != nil && !d.Before(startOfDay(*to).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func containsFold(fields []string, q string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
