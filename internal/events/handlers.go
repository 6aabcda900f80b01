package events

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"travelagency/internal/api"
	"travelagency/internal/authz"
)

type Handlers struct {
	DB *pgxpool.Pool
}

// Timeline serves the event history of one record of kind.
func (h Handlers) Timeline(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := api.Authorize(w, r, authz.ActionViewRecordEvents); !ok {
			return
		}
		id, err := api.PathID(r, "id")
		if err != nil {
			api.WriteAppError(w, err)
			return
		}

		items, err := ListByRecord(r.Context(), h.DB, kind, id)
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}
