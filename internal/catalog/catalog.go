package catalog

import (
	"cmp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"travelagency/internal/listing"
)

type Tour struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Location     string          `json:"location"`
	Country      string          `json:"country"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	DurationDays int             `json:"durationDays"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	Rating       decimal.Decimal `json:"rating"`
	ReviewCount  int             `json:"reviewCount"`
	Featured     bool            `json:"featured"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type VisaPackage struct {
	ID             string          `json:"id"`
	Country        string          `json:"country"`
	VisaType       string          `json:"visaType"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	ProcessingDays int             `json:"processingDays"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	Requirements   []string        `json:"requirements"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func activeLabel(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "INACTIVE"
}

var TourFields = listing.Fields[Tour]{
	Status:   func(t Tour) string { return activeLabel(t.IsActive) },
	Category: func(t Tour) string { return t.Category },
	Date:     func(t Tour) time.Time { return t.CreatedAt },
	Text:     func(t Tour) []string { return []string{t.Title, t.Location, t.Country, t.Description} },
}

var TourSortKeys = listing.Keys[Tour]{
	"price":      func(a, b Tour) int { return a.Price.Cmp(b.Price) },
	"rating":     func(a, b Tour) int { return a.Rating.Cmp(b.Rating) },
	"popularity": func(a, b Tour) int { return cmp.Compare(a.ReviewCount, b.ReviewCount) },
	"duration":   func(a, b Tour) int { return cmp.Compare(a.DurationDays, b.DurationDays) },
	"title":      func(a, b Tour) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) },
	"createdat":  func(a, b Tour) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

var VisaFields = listing.Fields[VisaPackage]{
	Status:   func(v VisaPackage) string { return activeLabel(v.IsActive) },
	Category: func(v VisaPackage) string { return v.Category },
	Date:     func(v VisaPackage) time.Time { return v.CreatedAt },
	Text:     func(v VisaPackage) []string { return []string{v.Country, v.VisaType, v.Description} },
}

var VisaSortKeys = listing.Keys[VisaPackage]{
	"price":      func(a, b VisaPackage) int { return a.Price.Cmp(b.Price) },
	"processing": func(a, b VisaPackage) int { return cmp.Compare(a.ProcessingDays, b.ProcessingDays) },
	"country":    func(a, b VisaPackage) int { return strings.Compare(strings.ToLower(a.Country), strings.ToLower(b.Country)) },
	"createdat":  func(a, b VisaPackage) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
