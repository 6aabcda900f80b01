package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelagency/internal/adminaction"
	"travelagency/internal/api"
	"travelagency/internal/audit"
	"travelagency/internal/authz"
	"travelagency/internal/events"
	"travelagency/pkg/db"
)

type Handlers struct {
	DB       *pgxpool.Pool
	Settings *Repository
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Settings.List(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type PutRequest struct {
	Value json.RawMessage `json:"value"`
}

func (h Handlers) Put(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Authorize(w, r, authz.ActionManageSettings)
	if !ok {
		return
	}
	var req PutRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	key := chi.URLParam(r, "key")
	value, err := ParseEntry(key, req.Value)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var s *Setting
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		var err error
		if s, err = Upsert(r.Context(), tx, key, value, caller.UserID); err != nil {
			return err
		}
		meta := map[string]any{"key": key, "value": value}
		if err := audit.Insert(r.Context(), tx, audit.Entry{
			ActorID:    caller.UserID,
			ActorRole:  string(caller.Role),
			Action:     string(adminaction.ActionUpdateSetting),
			RecordKind: events.KindSetting,
			Metadata:   meta,
		}); err != nil {
			return err
		}
		return adminaction.Insert(r.Context(), tx, events.KindSetting, "", adminaction.ActionUpdateSetting, caller.UserID, "", meta)
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"setting": s})
}
