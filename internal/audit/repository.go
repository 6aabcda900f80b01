package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// Entry is one audit_logs row. RecordID is nil for account-level actions
// such as login.
type Entry struct {
	ActorID    string
	ActorRole  string
	Action     string
	RecordKind string
	RecordID   *string
	Metadata   any
}

func Insert(ctx context.Context, tx pgx.Tx, e Entry) error {
	var s *string
	if e.Metadata != nil {
		b, _ := json.Marshal(e.Metadata)
		str := string(b)
		s = &str
	}
	var actor *string
	if e.ActorID != "" {
		actor = &e.ActorID
	}
	const q = `
INSERT INTO audit_logs (actor_id, actor_role, action, record_kind, record_id, metadata)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`
	_, err := tx.Exec(ctx, q, actor, e.ActorRole, e.Action, e.RecordKind, e.RecordID, s)
	return err
}
