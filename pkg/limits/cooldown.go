package limits

import (
	"context"
	"time"
)

// Gate is the per-key cooldown gate. It is a soft limiter: a request
// arriving less than the cooldown interval after the previous admission for
// the same key is delayed, never rejected, bounding admission to one
// request per key per interval.
//
// Admission limits rate, not concurrency: if the upstream is slow, several
// admitted requests from one key can be in flight at once.
type Gate struct {
	cooldown time.Duration
	state    *shardedKeys[time.Time]

	// now is stubbed in tests.
	now func() time.Time
}

// NewGate creates a cooldown gate with the given minimum inter-request
// interval. A zero interval admits everything immediately.
func NewGate(cooldown time.Duration) *Gate {
	return &Gate{
		cooldown: cooldown,
		state:    newShardedKeys[time.Time](),
		now:      time.Now,
	}
}

// Admit delays the caller until the key's cooldown slot is free, then
// returns. The wait is a cooperative suspension on a timer; no OS thread is
// blocked and unrelated requests proceed normally.
//
// The admission time is reserved under the key's shard lock before waiting,
// so concurrent callers for the same key serialize their slots: successive
// admissions are always at least the cooldown apart. A first-seen key is
// admitted immediately. The reservation is kept even if the context is
// cancelled during the wait.
func (g *Gate) Admit(ctx context.Context, key string) error {
	if g.cooldown <= 0 {
		return nil
	}

	var wait time.Duration
	g.state.update(key, func(last time.Time) time.Time {
		now := g.now()
		next := last.Add(g.cooldown)
		if next.After(now) {
			wait = next.Sub(now)
			return next
		}
		return now
	})

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Export returns a copy of the per-key admission timestamps for
// persistence.
func (g *Gate) Export() map[string]time.Time {
	return g.state.snapshot()
}

// Restore seeds the gate from a saved snapshot, typically at startup so a
// restart does not reset cooldowns.
func (g *Gate) Restore(entries map[string]time.Time) {
	g.state.restore(entries)
}
