package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"travelagency/internal/adminaction"
	"travelagency/internal/events"
)

// Mutation describes one applied admin change.
type Mutation struct {
	ActorID    string
	ActorRole  string
	RecordKind string
	RecordID   string
	Action     adminaction.ActionType
	EventType  string
	Summary    string
	Note       string
	Data       map[string]any
	At         time.Time
}

// Record writes the audit row, the admin action and the timeline event for
// m inside tx. Nothing is written for a no-op request.
func Record(ctx context.Context, tx pgx.Tx, m Mutation) error {
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}
	id := m.RecordID
	if err := Insert(ctx, tx, Entry{
		ActorID:    m.ActorID,
		ActorRole:  m.ActorRole,
		Action:     string(m.Action),
		RecordKind: m.RecordKind,
		RecordID:   &id,
		Metadata:   m.Data,
	}); err != nil {
		return err
	}
	if err := adminaction.Insert(ctx, tx, m.RecordKind, m.RecordID, m.Action, m.ActorID, m.Note, m.Data); err != nil {
		return err
	}
	return events.Insert(ctx, tx, m.RecordKind, m.RecordID, m.EventType, m.Summary, m.ActorID, m.At, m.Data)
}
