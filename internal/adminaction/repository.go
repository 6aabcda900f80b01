package adminaction

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"travelagency/pkg/db"
)

// Insert records an admin action inside tx. An empty recordID is stored as
// NULL for records keyed by something other than a uuid, such as settings.
func Insert(ctx context.Context, tx pgx.Tx, recordKind, recordID string, actionType ActionType, actorID, note string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO admin_actions (record_kind, record_id, action_type, actor_id, note, metadata)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, CAST($6 AS jsonb))
`
	_, err := tx.Exec(ctx, q, recordKind, recordID, string(actionType), actorID, note, s)
	return err
}

// InsertStandalone records an action that has no surrounding transaction,
// such as a read-only export.
func InsertStandalone(ctx context.Context, conn db.Execer, recordKind string, actionType ActionType, actorID string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO admin_actions (record_kind, action_type, actor_id, metadata)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
`
	_, err := conn.Exec(ctx, q, recordKind, string(actionType), actorID, s)
	return err
}
