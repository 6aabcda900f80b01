package user

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelagency/internal/adminaction"
	"travelagency/internal/api"
	"travelagency/internal/audit"
	"travelagency/internal/authz"
	"travelagency/internal/events"
	"travelagency/internal/listing"
	"travelagency/pkg/apperr"
	"travelagency/pkg/cache"
	"travelagency/pkg/db"
	"travelagency/pkg/logger"
	"travelagency/pkg/metrics"
)

type Handlers struct {
	DB         *pgxpool.Pool
	Users      *Repository
	BcryptCost int
	Cache      cache.Records
	Metrics    *metrics.Metrics
	Log        logger.Logger
	Publisher  events.Publisher
}

func (h Handlers) list(w http.ResponseWriter, r *http.Request, roles ...authz.Role) {
	c, s, p, err := listing.ParseQuery(r.URL.Query())
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	all, err := h.Users.ListByRoles(r.Context(), roles...)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	items, err := listing.Sort(listing.Filter(all, c, Fields), s, SortKeys)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	out, total := listing.Paginate(items, p)
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (h Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionViewCustomers); !ok {
		return
	}
	h.list(w, r, authz.RoleCustomer)
}

func (h Handlers) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.Authorize(w, r, authz.ActionViewEmployees); !ok {
		return
	}
	h.list(w, r, authz.RoleAdmin, authz.RoleSuperAdmin)
}

type CreateEmployeeRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"max=50"`
	Role     string `json:"role" validate:"required"`
}

func (h Handlers) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionCreateEmployee)
	if !ok {
		return
	}
	var req CreateEmployeeRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	if !role.IsStaff() {
		api.WriteAppError(w, apperr.Invalid("role", req.Role, "employees must be ADMIN or SUPER_ADMIN"))
		return
	}
	hash, err := HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var u *User
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		u, err = Create(r.Context(), tx, CreateParams{Email: req.Email, PasswordHash: hash, Name: req.Name, Phone: req.Phone, Role: role})
		if err != nil {
			return err
		}
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindUser,
			RecordID:   u.ID,
			Action:     adminaction.ActionCreateEmployee,
			EventType:  events.TypeCreated,
			Summary:    "Employee account created",
			Data:       map[string]any{"email": u.Email, "role": u.Role},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"user": u})
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ChangeRole is restricted to SUPER_ADMIN, who may not change their own role.
func (h Handlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionChangeRole)
	if !ok {
		return
	}
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	var req ChangeRoleRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	if err := authz.CanAssign(caller.Role, role); err != nil {
		api.WriteAppError(w, err)
		return
	}
	if id == caller.UserID {
		api.WriteError(w, http.StatusConflict, "SELF_ROLE_CHANGE", "you cannot change your own role")
		return
	}

	var u *User
	var from authz.Role
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		u, err = GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return db.NotFound(err, events.KindUser, id)
		}
		if from = u.Role; from == role {
			return nil
		}
		if err := UpdateRole(r.Context(), tx, u.ID, role); err != nil {
			return err
		}
		u.Role = role
		return audit.Record(r.Context(), tx, audit.Mutation{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			RecordKind: events.KindUser,
			RecordID:   u.ID,
			Action:     adminaction.ActionChangeRole,
			EventType:  events.TypeStatusChanged,
			Summary:    "Role changed from " + string(from) + " to " + string(role),
			Data:       map[string]any{"field": "role", "from": from, "to": role},
		})
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	changed := from != role
	if changed {
		h.Cache.Invalidate(r.Context(), events.KindUser, u.ID)
		h.Metrics.Transition(events.KindUser, "role", string(role))
		events.Notify(r.Context(), h.Publisher, h.Log, events.StatusChanged{
			RecordKind: events.KindUser,
			RecordID:   u.ID,
			Field:      "role",
			From:       string(from),
			To:         string(role),
			Actor:      caller.UserID,
			ActorRole:  string(caller.Role),
			OccurredAt: time.Now().UTC(),
		})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"user": u, "changed": changed})
}
