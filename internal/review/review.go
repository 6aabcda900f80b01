package review

import (
	"cmp"
	"strconv"
	"time"

	"travelagency/internal/listing"
	"travelagency/internal/workflow"
)

type Review struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	TourID     string    `json:"tourId"`
	TourTitle  string    `json:"tourTitle"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// State is the moderation label used by the admin list filter.
func (r Review) State() string {
	if r.IsApproved {
		return "APPROVED"
	}
	return "PENDING"
}

// Moderate applies APPROVE or REJECT. The rating and comment are never
// touched. It reports false when isApproved already has the target value.
func Moderate(r *Review, action workflow.ReviewAction) (from, to, changed bool) {
	target, ok := action.Approved()
	if !ok || r.IsApproved == target {
		return r.IsApproved, r.IsApproved, false
	}
	from = r.IsApproved
	r.IsApproved = target
	return from, target, true
}

var Fields = listing.Fields[Review]{
	Status:   func(r Review) string { return r.State() },
	Category: func(r Review) string { return strconv.Itoa(r.Rating) },
	Date:     func(r Review) time.Time { return r.CreatedAt },
	Text:     func(r Review) []string { return []string{r.AuthorName, r.TourTitle, r.Comment} },
}

var SortKeys = listing.Keys[Review]{
	"createdat": func(a, b Review) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"rating":    func(a, b Review) int { return cmp.Compare(a.Rating, b.Rating) },
}
