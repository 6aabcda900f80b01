package events

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         string `json:"id"`
	RecordKind string `json:"recordKind"`
	RecordID   string `json:"recordId"`
	EventType  string `json:"eventType"`
	Summary    string `json:"summary"`
	Actor      string `json:"actor"`
	OccurredAt string `json:"occurredAt"`
	Data       any    `json:"data,omitempty"`
}

func ListByRecord(ctx context.Context, db *pgxpool.Pool, kind, recordID string) ([]Event, error) {
	const q = `
SELECT id, record_kind, record_id, event_type, summary, actor, occurred_at::text, COALESCE(data, '{}'::jsonb)
FROM record_events
WHERE record_kind = $1 AND record_id = $2
ORDER BY occurred_at ASC, created_at ASC
`
	rows, err := db.Query(ctx, q, kind, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RecordKind, &e.RecordID, &e.EventType, &e.Summary, &e.Actor, &e.OccurredAt, &e.Data); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
