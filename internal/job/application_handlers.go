package job

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"travelagency/internal/adminaction"
	"travelagency/internal/api"
	"travelagency/internal/audit"
	"travelagency/internal/authz"
	"travelagency/internal/events"
	"travelagency/internal/listing"
	"travelagency/internal/workflow"
	"travelagency/pkg/apperr"
	"travelagency/pkg/db"
)

type SubmitRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"max=50"`
	Experience  string `json:"experience" validate:"max=200"`
	CoverLetter string `json:"coverLetter" validate:"max=10000"`
}

// Submit takes a public application against an active posting.
func (h Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	jobID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req SubmitRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}

	var id string
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		p, err := GetPostingForUpdate(r.Context(), tx, jobID)
		if err != nil {
			return db.NotFound(err, events.KindJobPosting, jobID)
		}
		if !p.IsActive {
			api.WriteError(w, http.StatusConflict, "JOB_CLOSED", "this posting is no longer accepting applications")
			return pgx.ErrTxCommitRollback
		}

		id, err = InsertApplication(r.Context(), tx, SubmitParams{
			JobID:       p.ID,
			Name:        strings.TrimSpace(req.Name),
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:       req.Phone,
			Experience:  req.Experience,
			CoverLetter: req.CoverLetter,
		})
		if err != nil {
			return err
		}
		data := map[string]any{"jobId": p.ID}
		if err := audit.Insert(r.Context(), tx, audit.Entry{
			Action:     "APPLICATION_SUBMITTED",
			RecordKind: events.KindApplication,
			RecordID:   &id,
			Metadata:   data,
		}); err != nil {
			return err
		}
		return events.Insert(r.Context(), tx, events.KindApplication, id, events.TypeCreated, "Application received", "applicant", time.Now().UTC(), data)
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		api.WriteAppError(w, err)
		return
	}

	a, err := h.Jobs.GetApplication(r.Context(), id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"application": a})
}

func (h Handlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionViewApplications); !ok {
		return
	}
	c, s, p, err := listing.ParseQuery(r.URL.Query())
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	if job := r.URL.Query().Get("job"); job != "" {
		c.Category = job
	}
	all, err := h.Jobs.ListApplications(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	items, err := listing.Sort(listing.Filter(all, c, ApplicationFields), s, ApplicationSortKeys)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	page, total := listing.Paginate(items, p)
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": page, "total": total})
}

func (h Handlers) GetApplication(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionViewApplications); !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var a Application
	hit := h.Cache.Get(r.Context(), events.KindApplication, id, &a)
	h.Metrics.Cache(events.KindApplication, hit)
	if !hit {
		got, err := h.Jobs.GetApplication(r.Context(), id)
		if err != nil {
			api.WriteAppError(w, db.NotFound(err, events.KindApplication, id))
			return
		}
		a = *got
		h.Cache.Set(r.Context(), events.KindApplication, id, a)
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"application": a})
}

type PatchApplicationRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes" validate:"omitempty,max=5000"`
}

// parse checks the request shape before any storage access.
func (req PatchApplicationRequest) parse() (*workflow.ApplicationStatus, error) {
	if req.Status == nil && req.Notes == nil {
		return nil, apperr.Invalid("status", "", "status or notes is required")
	}
	if req.Status == nil {
		return nil, nil
	}
	st, err := workflow.ParseApplicationStatus(*req.Status)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (h Handlers) PatchApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionUpdateApplication)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req PatchApplicationRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	status, err := req.parse()
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var a *Application
	var changes []Change
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		a, err = GetApplicationForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindApplication, id)
		}
		if status != nil {
			if err := workflow.Check(h.Rules.Application, "status", a.Status, *status); err != nil {
				return err
			}
		}
		if changes = ApplyUpdate(a, status, req.Notes); len(changes) == 0 {
			return nil
		}
		if a.UpdatedAt, err = UpdateApplication(r.Context(), tx, a); err != nil {
			return err
		}
		for _, c := range changes {
			eventType, summary := events.TypeNotesChanged, "Notes updated"
			if c.Field == "status" {
				eventType, summary = events.TypeStatusChanged, fmt.Sprintf("status changed from %s to %s", c.From, c.To)
			}
			if err := audit.Record(r.Context(), tx, audit.Mutation{
				ActorID:    caller.UserID,
				ActorRole:  string(caller.Role),
				RecordKind: events.KindApplication,
				RecordID:   a.ID,
				Action:     adminaction.ActionUpdateApplication,
				EventType:  eventType,
				Summary:    summary,
				Note:       a.Notes,
				Data:       map[string]any{"field": c.Field, "from": c.From, "to": c.To},
				At:         a.UpdatedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	if len(changes) > 0 {
		h.Cache.Invalidate(r.Context(), events.KindApplication, a.ID)
	}
	for _, c := range changes {
		if c.Field != "status" {
			continue
		}
		h.Metrics.Transition(events.KindApplication, c.Field, c.To)
		events.Notify(r.Context(), h.Publisher, h.Log, events.StatusChanged{
			RecordKind: events.KindApplication,
			RecordID:   a.ID,
			Field:      c.Field,
			From:       c.From,
			To:         c.To,
			Actor:      caller.UserID,
			ActorRole:  string(caller.Role),
			Notes:      a.Notes,
			OccurredAt: a.UpdatedAt,
		})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"application": a, "changed": len(changes) > 0})
}
