package review

import (
	"fmt"
	"net/http"
	"strconv"
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
	"travelagency/pkg/cache"
	"travelagency/pkg/db"
	"travelagency/pkg/logger"
	"travelagency/pkg/metrics"
)

type Handlers struct {
	DB        db.TxStarter
	Reviews   *Repository
	Cache     cache.Records
	Metrics   *metrics.Metrics
	Log       logger.Logger
	Publisher events.Publisher
}

type CreateRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Caller(w, r)
	if !ok {
		return
	}
	tourID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req CreateRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}

	var id string
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		active, err := TourIsActive(r.Context(), tx, tourID)
		if err != nil {
			return db.NotFound(err, events.KindTour, tourID)
		}
		if !active {
			return apperr.NotFound(events.KindTour, tourID)
		}
		if id, err = Create(r.Context(), tx, caller.UserID, tourID, req.Rating, req.Comment); err != nil {
			return err
		}
		data := map[string]any{"tourId": tourID, "rating": req.Rating}
		if err := audit.Insert(r.Context(), tx, audit.Entry{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			Action:     "REVIEW_CREATED",
			RecordKind: events.KindReview,
			RecordID:   &id,
			Metadata:   data,
		}); err != nil {
			return err
		}
		return events.Insert(r.Context(), tx, events.KindReview, id, events.TypeCreated, "Review submitted", caller.UserID, time.Now().UTC(), data)
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	rv, err := h.Reviews.GetByID(r.Context(), id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"review": rv})
}

func (h Handlers) ListForTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	items, err := h.Reviews.ListApprovedByTour(r.Context(), tourID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionModerateReview); !ok {
		return
	}
	c, s, p, err := listing.ParseQuery(r.URL.Query())
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	all, err := h.Reviews.ListAll(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	items, err := listing.Sort(listing.Filter(all, c, Fields), s, SortKeys)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	page, total := listing.Paginate(items, p)
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": page, "total": total})
}

func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, workflow.ReviewApprove, adminaction.ActionApproveReview)
}

func (h Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, workflow.ReviewReject, adminaction.ActionRejectReview)
}

// moderate sets isApproved. Re-approving an approved review changes nothing
// and records nothing.
func (h Handlers) moderate(w http.ResponseWriter, r *http.Request, action workflow.ReviewAction, at adminaction.ActionType) {
	caller, ok := api.Authorize(w, r, authz.ActionModerateReview)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var rv *Review
	var from, to, changed bool
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		rv, err = GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindReview, id)
		}
		if from, to, changed = Moderate(rv, action); !changed {
			return nil
		}
		if rv.UpdatedAt, err = StoreApproval(r.Context(), tx, rv); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindReview,
			RecordID:   rv.ID,
			Action:     at,
			EventType:  events.TypeStatusChanged,
			Summary:    fmt.Sprintf("isApproved changed from %t to %t", from, to),
			Data:       map[string]any{"field": "isApproved", "from": from, "to": to},
			At:         rv.UpdatedAt,
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	if changed {
		h.afterCommit(r, caller, rv, strconv.FormatBool(from), strconv.FormatBool(to))
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"review": rv, "changed": changed})
}

// Delete removes a review for good. A second delete reports not found.
func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionDeleteReview)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var rv *Review
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		rv, err = GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindReview, id)
		}
		if err := Remove(r.Context(), tx, rv); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindReview,
			RecordID:   rv.ID,
			Action:     adminaction.ActionDeleteReview,
			EventType:  events.TypeDeleted,
			Summary:    "Review deleted",
			Data:       map[string]any{"tourId": rv.TourID, "rating": rv.Rating, "wasApproved": rv.IsApproved},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	h.afterCommit(r, caller, rv, strconv.FormatBool(rv.IsApproved), "deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) afterCommit(r *http.Request, caller *api.Identity, rv *Review, from, to string) {
	h.Cache.Invalidate(r.Context(), events.KindReview, rv.ID)
	h.Cache.Invalidate(r.Context(), events.KindTour, rv.TourID)
	h.Metrics.Transition(events.KindReview, "isApproved", to)
	events.Notify(r.Context(), h.Publisher, h.Log, events.StatusChanged{
		RecordKind: events.KindReview,
		RecordID:   rv.ID,
		Field:      "isApproved",
		From:       from,
		To:         to,
		Actor:      caller.UserID,
		ActorRole:  string(caller.Role),
		OccurredAt: time.Now().UTC(),
	})
}
