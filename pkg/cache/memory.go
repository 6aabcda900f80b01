package cache

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Records implementation. The API client uses it for
// its per-record cache, and tests use it in place of Redis.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, kind, id string, dest any) bool {
	m.mu.Lock()
	b, ok := m.entries[Key("", kind, id)]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(b, dest) == nil
}

func (m *Memory) Set(_ context.Context, kind, id string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.entries[Key("", kind, id)] = b
	m.mu.Unlock()
}

func (m *Memory) Invalidate(_ context.Context, kind, id string) {
	m.mu.Lock()
	delete(m.entries, Key("", kind, id))
	m.mu.Unlock()
}

func (m *Memory) Has(kind, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[Key("", kind, id)]
	return ok
}
