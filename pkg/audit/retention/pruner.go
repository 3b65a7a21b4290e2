// Package retention prunes old audit records on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"arclight-hq/beacon/pkg/audit"
)

// Config contains retention configuration.
type Config struct {
	// RetentionDays is the number of days to keep audit rows. Zero
	// disables pruning entirely.
	RetentionDays int

	// Schedule is a standard cron expression for pruning runs.
	Schedule string
}

// Pruner deletes audit records older than the retention window.
type Pruner struct {
	storage audit.Storage
	config  Config
	logger  *slog.Logger
}

// NewPruner creates a pruner for the given storage backend.
func NewPruner(storage audit.Storage, config Config) *Pruner {
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
	}
}

// Prune runs one pruning cycle and returns the number of deleted rows.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
	deleted, err := p.storage.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit pruning failed: %w", err)
	}
	return deleted, nil
}
