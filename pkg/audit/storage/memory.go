package storage

import (
	"context"
	"sync"
	"time"

	"arclight-hq/beacon/pkg/audit"
)

// MemoryStorage is an in-memory audit.Storage for tests and ephemeral
// deployments.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*audit.Record
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Insert appends a copy of the record.
func (m *MemoryStorage) Insert(_ context.Context, record *audit.Record) error {
	copied := *record
	m.mu.Lock()
	m.records = append(m.records, &copied)
	m.mu.Unlock()
	return nil
}

// Prune removes records older than the cutoff.
func (m *MemoryStorage) Prune(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var pruned int64
	for _, r := range m.records {
		if r.Timestamp.Before(olderThan) {
			pruned++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return pruned, nil
}

// Records returns a snapshot of stored records, oldest first.
func (m *MemoryStorage) Records() []*audit.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*audit.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Close is a no-op.
func (m *MemoryStorage) Close() error { return nil }
