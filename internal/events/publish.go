package events

import (
	"context"
	"time"

	"travelagency/pkg/logger"
)

// StatusChanged is published after a status mutation commits.
type StatusChanged struct {
	RecordKind string    `json:"recordKind"`
	RecordID   string    `json:"recordId"`
	Field      string    `json:"field"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Actor      string    `json:"actor"`
	ActorRole  string    `json:"actorRole"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, v any) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, any) error { return nil }

// Notify publishes best-effort; the mutation has already committed, so a
// broker failure is logged and dropped.
func Notify(ctx context.Context, pub Publisher, log logger.Logger, ev StatusChanged) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn("publish status change failed", "kind", ev.RecordKind, "id", ev.RecordID, "field", ev.Field, "error", err)
	}
}
