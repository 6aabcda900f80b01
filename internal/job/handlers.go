package job

import (
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelagency/internal/adminaction"
	"travelagency/internal/api"
	"travelagency/internal/audit"
	"travelagency/internal/authz"
	"travelagency/internal/events"
	"travelagency/internal/listing"
	"travelagency/internal/workflow"
	"travelagency/pkg/apperr"
	"travelagency/pkg/cache"
	"travelagency/pkg/db"
	"travelagency/pkg/logger"
	"travelagency/pkg/metrics"
)

type Handlers struct {
	DB        *pgxpool.Pool
	Jobs      *Repository
	Cache     cache.Records
	Metrics   *metrics.Metrics
	Log       logger.Logger
	Publisher events.Publisher
	Rules     workflow.Rules
}

// ListActive is the public careers page.
func (h Handlers) ListActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.Jobs.ListActivePostings(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetActive hides inactive postings from the public.
func (h Handlers) GetActive(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	p, err := h.posting(r, id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	if !p.IsActive {
		api.WriteAppError(w, apperr.NotFound(events.KindJobPosting, id))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"job": p})
}

func (h Handlers) posting(r *http.Request, id string) (*Posting, error) {
	var p Posting
	hit := h.Cache.Get(r.Context(), events.KindJobPosting, id, &p)
	h.Metrics.Cache(events.KindJobPosting, hit)
	if hit {
		return &p, nil
	}
	got, err := h.Jobs.GetPosting(r.Context(), id)
	if err != nil {
		return nil, db.NotFound(err, events.KindJobPosting, id)
	}
	h.Cache.Set(r.Context(), events.KindJobPosting, id, got)
	return got, nil
}

func (h Handlers) ListPostings(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionManageJobs); !ok {
		return
	}
	c, s, p, err := listing.ParseQuery(r.URL.Query())
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	all, err := h.Jobs.ListPostings(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	items, err := listing.Sort(listing.Filter(all, c, PostingFields), s, PostingSortKeys)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	page, total := listing.Paginate(items, p)
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": page, "total": total})
}

type PostingRequest struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Department       string   `json:"department" validate:"max=100"`
	Type             string   `json:"type" validate:"max=50"`
	Location         string   `json:"location" validate:"max=200"`
	Salary           string   `json:"salary" validate:"max=100"`
	Description      string   `json:"description" validate:"max=10000"`
	Requirements     []string `json:"requirements" validate:"dive,max=500"`
	Responsibilities []string `json:"responsibilities" validate:"dive,max=500"`
	Benefits         []string `json:"benefits" validate:"dive,max=500"`
	Positions        int      `json:"positions" validate:"required,min=1"`
	IsActive         *bool    `json:"isActive"`
}

func (req PostingRequest) posting() Posting {
	return Posting{
		Title:            req.Title,
		Department:       req.Department,
		Type:             req.Type,
		Location:         req.Location,
		Salary:           req.Salary,
		Description:      req.Description,
		Requirements:     req.Requirements,
		Responsibilities: req.Responsibilities,
		Benefits:         req.Benefits,
		Positions:        req.Positions,
		IsActive:         req.IsActive == nil || *req.IsActive,
	}
}

func (h Handlers) CreatePosting(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionManageJobs)
	if !ok {
		return
	}
	var req PostingRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}

	var id string
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		if id, err = InsertPosting(r.Context(), tx, req.posting()); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindJobPosting,
			RecordID:   id,
			Action:     adminaction.ActionCreateJobPosting,
			EventType:  events.TypeCreated,
			Summary:    "Job posting created",
			Data:       map[string]any{"title": req.Title, "positions": req.Positions},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	p, err := h.Jobs.GetPosting(r.Context(), id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"job": p})
}

func (h Handlers) UpdatePosting(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionManageJobs)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req PostingRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}

	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		cur, err := GetPostingForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindJobPosting, id)
		}
		next := req.posting()
		next.ID = cur.ID
		if err := UpdatePosting(r.Context(), tx, next); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindJobPosting,
			RecordID:   cur.ID,
			Action:     adminaction.ActionUpdateJobPosting,
			EventType:  events.TypeUpdated,
			Summary:    "Job posting updated",
			Data:       map[string]any{"title": req.Title, "positions": req.Positions},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	h.Cache.Invalidate(r.Context(), events.KindJobPosting, id)

	p, err := h.Jobs.GetPosting(r.Context(), id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"job": p})
}

type PatchActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// PatchActive hides or shows a posting without deleting it.
func (h Handlers) PatchActive(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionManageJobs)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req PatchActiveRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}

	var p *Posting
	var changed bool
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		p, err = GetPostingForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindJobPosting, id)
		}
		from := p.IsActive
		if changed = SetActive(p, *req.IsActive); !changed {
			return nil
		}
		if p.UpdatedAt, err = UpdatePostingActive(r.Context(), tx, p.ID, p.IsActive); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindJobPosting,
			RecordID:   p.ID,
			Action:     adminaction.ActionToggleJobPosting,
			EventType:  events.TypeStatusChanged,
			Summary:    "Posting marked " + activeLabel(p.IsActive),
			Data:       map[string]any{"field": "isActive", "from": from, "to": p.IsActive},
			At:         p.UpdatedAt,
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	if changed {
		h.Cache.Invalidate(r.Context(), events.KindJobPosting, p.ID)
		h.Metrics.Transition(events.KindJobPosting, "isActive", strconv.FormatBool(p.IsActive))
		events.Notify(r.Context(), h.Publisher, h.Log, events.StatusChanged{
			RecordKind: events.KindJobPosting,
			RecordID:   p.ID,
			Field:      "isActive",
			From:       strconv.FormatBool(!p.IsActive),
			To:         strconv.FormatBool(p.IsActive),
			Actor:      caller.UserID,
			ActorRole:  string(caller.Role),
			OccurredAt: p.UpdatedAt,
		})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"job": p, "changed": changed})
}
