package job

import (
	"strings"
	"time"

	"travelagency/internal/listing"
	"travelagency/internal/workflow"
)

type Application struct {
	ID          string                     `json:"id"`
	JobID       string                     `json:"jobId"`
	JobTitle    string                     `json:"jobTitle"`
	Name        string                     `json:"name"`
	Email       string                     `json:"email"`
	Phone       string                     `json:"phone,omitempty"`
	Experience  string                     `json:"experience,omitempty"`
	CoverLetter string                     `json:"coverLetter,omitempty"`
	Status      workflow.ApplicationStatus `json:"status"`
	Notes       string                     `json:"notes"`
	AppliedAt   time.Time                  `json:"appliedAt"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
}

// Change is one applied field mutation.
type Change struct {
	Field string
	From  string
	To    string
}

// ApplyUpdate sets status and notes when given. appliedAt is never
// touched. Fields already holding the requested value produce no change.
func ApplyUpdate(a *Application, status *workflow.ApplicationStatus, notes *string) []Change {
	var out []Change
	if status != nil && a.Status != *status {
		out = append(out, Change{Field: "status", From: string(a.Status), To: string(*status)})
		a.Status = *status
	}
	if notes != nil && a.Notes != *notes {
		out = append(out, Change{Field: "notes", From: a.Notes, To: *notes})
		a.Notes = *notes
	}
	return out
}

var ApplicationFields = listing.Fields[Application]{
	Status:   func(a Application) string { return string(a.Status) },
	Category: func(a Application) string { return a.JobID },
	Date:     func(a Application) time.Time { return a.AppliedAt },
	Text:     func(a Application) []string { return []string{a.Name, a.Email, a.JobTitle} },
}

var ApplicationSortKeys = listing.Keys[Application]{
	"appliedat": func(a, b Application) int { return a.AppliedAt.Compare(b.AppliedAt) },
	"name":      func(a, b Application) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	"status":    func(a, b Application) int { return strings.Compare(string(a.Status), string(b.Status)) },
}
