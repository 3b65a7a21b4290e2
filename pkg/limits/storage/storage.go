// Package storage provides persistence backends for cooldown state, so a
// gateway restart does not reset per-key intervals.
//
// Two backends exist: an in-memory store for tests and deployments that
// accept reset-on-restart, and a SQLite store for single-instance
// deployments that want durability.
package storage

import (
	"context"
	"time"
)

// Store persists per-key cooldown timestamps.
type Store interface {
	// Save replaces the persisted snapshot with the given state.
	Save(ctx context.Context, state map[string]time.Time) error

	// Load returns the persisted snapshot. A missing or empty snapshot
	// yields an empty map, not an error.
	Load(ctx context.Context) (map[string]time.Time, error)

	// Close releases backend resources.
	Close() error
}
