package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. Snapshots do not survive a restart;
// it exists for tests and deployments where cooldown reset on restart is
// acceptable.
type MemoryStore struct {
	mu    sync.RWMutex
	state map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string]time.Time)}
}

// Save replaces the stored snapshot.
func (m *MemoryStore) Save(_ context.Context, state map[string]time.Time) error {
	copied := make(map[string]time.Time, len(state))
	for k, v := range state {
		copied[k] = v
	}
	m.mu.Lock()
	m.state = copied
	m.mu.Unlock()
	return nil
}

// Load returns a copy of the stored snapshot.
func (m *MemoryStore) Load(_ context.Context) (map[string]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]time.Time, len(m.state))
	for k, v := range m.state {
		out[k] = v
	}
	return out, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
