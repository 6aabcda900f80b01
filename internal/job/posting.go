package job

import (
	"cmp"
	"strings"
	"time"

	"travelagency/internal/listing"
)

type Posting struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Department       string    `json:"department"`
	Type             string    `json:"type"`
	Location         string    `json:"location"`
	Salary           string    `json:"salary,omitempty"`
	Description      string    `json:"description"`
	Requirements     []string  `json:"requirements"`
	Responsibilities []string  `json:"responsibilities"`
	Benefits         []string  `json:"benefits"`
	Positions        int       `json:"positions"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// SetActive toggles visibility. It reports false when nothing changes.
func SetActive(p *Posting, active bool) bool {
	if p.IsActive == active {
		return false
	}
	p.IsActive = active
	return true
}

func activeLabel(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "INACTIVE"
}

var PostingFields = listing.Fields[Posting]{
	Status:   func(p Posting) string { return activeLabel(p.IsActive) },
	Category: func(p Posting) string { return p.Department },
	Date:     func(p Posting) time.Time { return p.CreatedAt },
	Text:     func(p Posting) []string { return []string{p.Title, p.Department, p.Location, p.Type} },
}

var PostingSortKeys = listing.Keys[Posting]{
	"createdat": func(a, b Posting) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"title":     func(a, b Posting) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) },
	"positions": func(a, b Posting) int { return cmp.Compare(a.Positions, b.Positions) },
}
