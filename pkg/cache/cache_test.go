package cache

import (
	"context"
	"testing"

	"travelagency/pkg/config"
)

func TestKey(t *testing.T) {
	if got := Key("travel", "booking", "b-1"); got != "travel:booking:b-1" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Key("", "booking", "b-1"); got != "booking:b-1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNewRecords_NoRedisIsNop(t *testing.T) {
	c := NewRecords(nil, config.CacheConfig{Enabled: true})
	if _, ok := c.(Nop); !ok {
		t.Fatalf("expected Nop, got %T", c)
	}
}

func TestMemory_InvalidateDropsEntry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type rec struct {
		Status string `json:"status"`
	}
	m.Set(ctx, "booking", "b-1", rec{Status: "PENDING"})

	var got rec
	if !m.Get(ctx, "booking", "b-1", &got) || got.Status != "PENDING" {
		t.Fatalf("expected cached record, got %+v", got)
	}

	m.Invalidate(ctx, "booking", "b-1")
	if m.Get(ctx, "booking", "b-1", &got) {
		t.Fatalf("expected miss after invalidate")
	}
}
