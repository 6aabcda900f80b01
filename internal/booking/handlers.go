package booking

import (
	"context"
	"fmt"
	"net/http"
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
	DB        db.Store
	Bookings  *Repository
	Cache     cache.Records
	Metrics   *metrics.Metrics
	Log       logger.Logger
	Publisher events.Publisher
	Rules     workflow.Rules
}

type CreateRequest struct {
	PackageKind     string `json:"packageKind" validate:"required,oneof=TOUR VISA"`
	PackageID       string `json:"packageId" validate:"required,uuid"`
	TravelDate      string `json:"travelDate" validate:"required,datetime=2006-01-02"`
	Travelers       int    `json:"travelers" validate:"required,min=1,max=50"`
	SpecialRequests string `json:"specialRequests" validate:"max=1000"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Caller(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	travelDate, _ := time.Parse("2006-01-02", req.TravelDate)
	if travelDate.Before(time.Now().UTC().Truncate(24 * time.Hour)) {
		api.WriteAppError(w, apperr.Invalid("travelDate", req.TravelDate, "travelDate cannot be in the past"))
		return
	}
	kind := PackageKind(req.PackageKind)

	var bookingID string
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		pkg, err := GetPackage(r.Context(), tx, kind, req.PackageID)
		if err != nil {
			return db.NotFound(err, "package", req.PackageID)
		}
		if !pkg.Active {
			return apperr.Invalid("packageId", req.PackageID, "package is not available for booking")
		}
		total, err := Total(pkg.Price, req.Travelers, DefaultCurrencyScale)
		if err != nil {
			return err
		}

		bookingID, err = Create(r.Context(), tx, CreateParams{
			CustomerID:      caller.UserID,
			PackageKind:     kind,
			PackageID:       req.PackageID,
			PackageTitle:    pkg.Title,
			TravelDate:      travelDate,
			Travelers:       req.Travelers,
			TotalAmount:     total,
			Currency:        pkg.Currency,
			SpecialRequests: req.SpecialRequests,
		})
		if err != nil {
			return err
		}

		data := map[string]any{"packageKind": kind, "packageId": req.PackageID, "total": total.String()}
		if err := audit.Insert(r.Context(), tx, audit.Entry{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			Action:     "BOOKING_CREATED",
			RecordKind: events.KindBooking,
			RecordID:   &bookingID,
			Metadata:   data,
		}); err != nil {
			return err
		}
		return events.Insert(r.Context(), tx, events.KindBooking, bookingID, events.TypeCreated, "Booking created", caller.UserID, time.Now().UTC(), data)
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	b, err := h.Bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"booking": b})
}

func (h Handlers) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Caller(w, r)
	if !ok {
		return
	}
	items, err := h.Bookings.ListByCustomer(r.Context(), caller.UserID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// filtered loads all bookings and applies the shared list parameters.
func (h Handlers) filtered(r *http.Request) ([]Booking, listing.Page, error) {
	c, s, p, err := listing.ParseQuery(r.URL.Query())
	if err != nil {
		return nil, listing.Page{}, err
	}
	all, err := h.Bookings.ListAll(r.Context())
	if err != nil {
		return nil, listing.Page{}, err
	}
	items, err := listing.Sort(listing.Filter(all, c, Fields), s, SortKeys)
	if err != nil {
		return nil, listing.Page{}, err
	}
	return items, p, nil
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionViewBookings); !ok {
		return
	}
	items, p, err := h.filtered(r)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	page, total := listing.Paginate(items, p)
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": page, "total": total})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionViewBookings); !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var b Booking
	hit := h.Cache.Get(r.Context(), events.KindBooking, id, &b)
	h.Metrics.Cache(events.KindBooking, hit)
	if !hit {
		got, err := h.Bookings.GetByID(r.Context(), id)
		if err != nil {
			api.WriteAppError(w, db.NotFound(err, events.KindBooking, id))
			return
		}
		b = *got
		h.Cache.Set(r.Context(), events.KindBooking, id, b)
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b})
}

type PatchStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h Handlers) PatchStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionUpdateBookingStatus)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req PatchStatusRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	next, err := workflow.ParseBookingStatus(req.Status)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	h.mutate(w, r, caller, id, adminaction.ActionSetBookingStatus, func(b *Booking) (Change, bool, error) {
		if err := workflow.Check(h.Rules.Booking, "bookingStatus", b.BookingStatus, next); err != nil {
			return Change{}, false, err
		}
		c, changed := ApplyStatus(b, next)
		return c, changed, nil
	}, func(ctx context.Context, tx pgx.Tx, b *Booking) (time.Time, error) {
		return UpdateBookingStatus(ctx, tx, b.ID, b.BookingStatus)
	})
}

type PatchPaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

func (h Handlers) PatchPaymentStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionUpdatePaymentStatus)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req PatchPaymentRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	next, err := workflow.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	h.mutate(w, r, caller, id, adminaction.ActionSetPaymentStatus, func(b *Booking) (Change, bool, error) {
		if err := workflow.Check(h.Rules.Payment, "paymentStatus", b.PaymentStatus, next); err != nil {
			return Change{}, false, err
		}
		c, changed := ApplyPayment(b, next)
		return c, changed, nil
	}, func(ctx context.Context, tx pgx.Tx, b *Booking) (time.Time, error) {
		return UpdatePaymentStatus(ctx, tx, b.ID, b.PaymentStatus)
	})
}

// mutate locks the booking, applies one field change and records it. A
// request that leaves the booking as it was writes nothing and publishes
// nothing.
func (h Handlers) mutate(
	w http.ResponseWriter,
	r *http.Request,
	caller *api.Identity,
	id string,
	action adminaction.ActionType,
	apply func(b *Booking) (Change, bool, error),
	store func(ctx context.Context, tx pgx.Tx, b *Booking) (time.Time, error),
) {
	var b *Booking
	var change Change
	var changed bool
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		b, err = GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindBooking, id)
		}
		change, changed, err = apply(b)
		if err != nil || !changed {
			return err
		}
		if b.UpdatedAt, err = store(r.Context(), tx, b); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindBooking,
			RecordID:   b.ID,
			Action:     action,
			EventType:  events.TypeStatusChanged,
			Summary:    fmt.Sprintf("%s changed from %s to %s", change.Field, change.From, change.To),
			Data:       map[string]any{"field": change.Field, "from": change.From, "to": change.To},
			At:         b.UpdatedAt,
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	if changed {
		h.Cache.Invalidate(r.Context(), events.KindBooking, b.ID)
		h.Metrics.Transition(events.KindBooking, change.Field, change.To)
		events.Notify(r.Context(), h.Publisher, h.Log, events.StatusChanged{
			RecordKind: events.KindBooking,
			RecordID:   b.ID,
			Field:      change.Field,
			From:       change.From,
			To:         change.To,
			Actor:      caller.UserID,
			ActorRole:  string(caller.Role),
			OccurredAt: b.UpdatedAt,
		})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b, "changed": changed})
}

func (h Handlers) Export(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionExportBookings)
	if !ok {
		return
	}
	items, _, err := h.filtered(r)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	if err := adminaction.InsertStandalone(r.Context(), h.DB, events.KindBooking, adminaction.ActionExportBookings, caller.UserID, map[string]any{
		"query": r.URL.RawQuery,
		"rows":  len(items),
	}); err != nil {
		h.Log.Warn("record export failed", "error", err)
	}

	name := fmt.Sprintf("bookings-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := WriteCSV(w, items); err != nil {
		h.Log.Error("write bookings csv", "error", err)
	}
}

func (h Handlers) Anomalies(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionViewBookings); !ok {
		return
	}
	all, err := h.Bookings.ListAll(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": Anomalies(all)})
}
