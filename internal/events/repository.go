package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
)

// Record kinds used across the timeline, cache keys and published events.
const (
	KindBooking     = "booking"
	KindReview      = "review"
	KindApplication = "application"
	KindJobPosting  = "job_posting"
	KindTour        = "tour"
	KindVisa        = "visa_package"
	KindUser        = "user"
	KindSetting     = "setting"
)

const (
	TypeCreated       = "CREATED"
	TypeStatusChanged = "STATUS_CHANGED"
	TypeNotesChanged  = "NOTES_CHANGED"
	TypeDeleted       = "DELETED"
	TypeUpdated       = "UPDATED"
)

func Insert(ctx context.Context, tx pgx.Tx, kind, recordID, eventType, summary, actor string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, _ := json.Marshal(data)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO record_events (record_kind, record_id, event_type, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, $6, CAST($7 AS jsonb))
`
	_, err := tx.Exec(ctx, q, kind, recordID, eventType, summary, actor, occurredAt, s)
	return err
}
