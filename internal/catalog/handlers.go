package catalog

import (
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"travelagency/internal/adminaction"
	"travelagency/internal/api"
	"travelagency/internal/audit"
	"travelagency/internal/authz"
	"travelagency/internal/events"
	"travelagency/internal/listing"
	"travelagency/pkg/apperr"
	"travelagency/pkg/cache"
	"travelagency/pkg/db"
	"travelagency/pkg/metrics"
)

type Handlers struct {
	DB      *pgxpool.Pool
	Catalog *Repository
	Cache   cache.Records
	Metrics *metrics.Metrics
}

// page filters, sorts and paginates items with the shared list parameters.
func page[T any](w http.ResponseWriter, r *http.Request, all []T, f listing.Fields[T], k listing.Keys[T]) {
	c, s, p, err := listing.ParseQuery(r.URL.Query())
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	items, err := listing.Sort(listing.Filter(all, c, f), s, k)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	out, total := listing.Paginate(items, p)
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func checkPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return apperr.Invalid("price", p.String(), "price must be >= 0")
	}
	return nil
}

func (h Handlers) ListTours(w http.ResponseWriter, r *http.Request) {
	all, err := h.Catalog.ListTours(r.Context(), true)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	page(w, r, all, TourFields, TourSortKeys)
}

func (h Handlers) GetTour(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var t Tour
	hit := h.Cache.Get(r.Context(), events.KindTour, id, &t)
	h.Metrics.Cache(events.KindTour, hit)
	if !hit {
		got, err := h.Catalog.GetTour(r.Context(), id)
		if err != nil {
			api.WriteAppError(w, db.NotFound(err, events.KindTour, id))
			return
		}
		t = *got
		h.Cache.Set(r.Context(), events.KindTour, id, t)
	}
	if !t.IsActive {
		api.WriteAppError(w, apperr.NotFound(events.KindTour, id))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"tour": t})
}

func (h Handlers) AdminListTours(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionManageCatalog); !ok {
		return
	}
	all, err := h.Catalog.ListTours(r.Context(), false)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	page(w, r, all, TourFields, TourSortKeys)
}

type TourRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Slug         string          `json:"slug" validate:"omitempty,max=200"`
	Location     string          `json:"location" validate:"required,max=200"`
	Country      string          `json:"country" validate:"required,max=100"`
	Category     string          `json:"category" validate:"max=100"`
	Description  string          `json:"description" validate:"max=20000"`
	DurationDays int             `json:"durationDays" validate:"required,min=1,max=365"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency" validate:"omitempty,len=3"`
	Featured     bool            `json:"featured"`
	IsActive     *bool           `json:"isActive"`
}

func (req TourRequest) tour() (Tour, error) {
	if err := checkPrice(req.Price); err != nil {
		return Tour{}, err
	}
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Title)
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	return Tour{
		Title:        strings.TrimSpace(req.Title),
		Slug:         slug,
		Location:     req.Location,
		Country:      req.Country,
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		Description:  req.Description,
		DurationDays: req.DurationDays,
		Price:        req.Price.Round(2),
		Currency:     currency,
		Featured:     req.Featured,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}, nil
}

func (h Handlers) CreateTour(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionManageCatalog)
	if !ok {
		return
	}
	var req TourRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	t, err := req.tour()
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var id string
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		if id, err = InsertTour(r.Context(), tx, t); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindTour,
			RecordID:   id,
			Action:     adminaction.ActionCreatePackage,
			EventType:  events.TypeCreated,
			Summary:    "Tour created",
			Data:       map[string]any{"title": t.Title, "price": t.Price.String()},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	created, err := h.Catalog.GetTour(r.Context(), id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"tour": created})
}

func (h Handlers) UpdateTour(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionManageCatalog)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req TourRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	next, err := req.tour()
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		cur, err := GetTourForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindTour, id)
		}
		next.ID = cur.ID
		if err := UpdateTour(r.Context(), tx, next); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindTour,
			RecordID:   cur.ID,
			Action:     adminaction.ActionUpdatePackage,
			EventType:  events.TypeUpdated,
			Summary:    "Tour updated",
			Data: map[string]any{
				"fromPrice":  cur.Price.String(),
				"toPrice":    next.Price.String(),
				"fromActive": cur.IsActive,
				"toActive":   next.IsActive,
			},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	h.Cache.Invalidate(r.Context(), events.KindTour, id)

	t, err := h.Catalog.GetTour(r.Context(), id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"tour": t})
}

func (h Handlers) ListVisas(w http.ResponseWriter, r *http.Request) {
	all, err := h.Catalog.ListVisas(r.Context(), true)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	page(w, r, all, VisaFields, VisaSortKeys)
}

func (h Handlers) GetVisa(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var v VisaPackage
	hit := h.Cache.Get(r.Context(), events.KindVisa, id, &v)
	h.Metrics.Cache(events.KindVisa, hit)
	if !hit {
		got, err := h.Catalog.GetVisa(r.Context(), id)
		if err != nil {
			api.WriteAppError(w, db.NotFound(err, events.KindVisa, id))
			return
		}
		v = *got
		h.Cache.Set(r.Context(), events.KindVisa, id, v)
	}
	if !v.IsActive {
		api.WriteAppError(w, apperr.NotFound(events.KindVisa, id))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"visa": v})
}

func (h Handlers) AdminListVisas(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionManageCatalog); !ok {
		return
	}
	all, err := h.Catalog.ListVisas(r.Context(), false)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	page(w, r, all, VisaFields, VisaSortKeys)
}

type VisaRequest struct {
	Country        string          `json:"country" validate:"required,max=100"`
	VisaType       string          `json:"visaType" validate:"required,max=100"`
	Category       string          `json:"category" validate:"max=100"`
	Description    string          `json:"description" validate:"max=20000"`
	ProcessingDays int             `json:"processingDays" validate:"required,min=1,max=365"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency" validate:"omitempty,len=3"`
	Requirements   []string        `json:"requirements" validate:"dive,max=500"`
	IsActive       *bool           `json:"isActive"`
}

func (req VisaRequest) visa() (VisaPackage, error) {
	if err := checkPrice(req.Price); err != nil {
		return VisaPackage{}, err
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	return VisaPackage{
		Country:        strings.TrimSpace(req.Country),
		VisaType:       strings.TrimSpace(req.VisaType),
		Category:       strings.ToLower(strings.TrimSpace(req.Category)),
		Description:    req.Description,
		ProcessingDays: req.ProcessingDays,
		Price:          req.Price.Round(2),
		Currency:       currency,
		Requirements:   req.Requirements,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}, nil
}

func (h Handlers) CreateVisa(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionManageCatalog)
	if !ok {
		return
	}
	var req VisaRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	v, err := req.visa()
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var id string
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		if id, err = InsertVisa(r.Context(), tx, v); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindVisa,
			RecordID:   id,
			Action:     adminaction.ActionCreatePackage,
			EventType:  events.TypeCreated,
			Summary:    "Visa package created",
			Data:       map[string]any{"country": v.Country, "visaType": v.VisaType, "price": v.Price.String()},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	created, err := h.Catalog.GetVisa(r.Context(), id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"visa": created})
}

func (h Handlers) UpdateVisa(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionManageCatalog)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req VisaRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	next, err := req.visa()
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		cur, err := GetVisaForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindVisa, id)
		}
		next.ID = cur.ID
		if err := UpdateVisa(r.Context(), tx, next); err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindVisa,
			RecordID:   cur.ID,
			Action:     adminaction.ActionUpdatePackage,
			EventType:  events.TypeUpdated,
			Summary:    "Visa package updated",
			Data: map[string]any{
				"fromPrice":  cur.Price.String(),
				"toPrice":    next.Price.String(),
				"fromActive": cur.IsActive,
				"toActive":   next.IsActive,
			},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	h.Cache.Invalidate(r.Context(), events.KindVisa, id)

	v, err := h.Catalog.GetVisa(r.Context(), id)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"visa": v})
}
