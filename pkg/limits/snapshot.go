package limits

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"arclight-hq/beacon/pkg/limits/storage"
)

// Snapshotter periodically flushes the gate's cooldown state to a store and
// restores it at startup.
type Snapshotter struct {
	gate     *Gate
	store    storage.Store
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// NewSnapshotter creates a snapshotter flushing at the given interval.
func NewSnapshotter(gate *Gate, store storage.Store, interval time.Duration) *Snapshotter {
	return &Snapshotter{
		gate:     gate,
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		logger:   slog.Default().With("component", "limits.snapshotter"),
	}
}

// Restore seeds the gate from the persisted snapshot. A load failure is
// logged and ignored; the gate simply starts cold.
func (s *Snapshotter) Restore(ctx context.Context) {
	state, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("cooldown snapshot load failed, starting cold", "error", err)
		return
	}
	if len(state) == 0 {
		return
	}
	s.gate.Restore(state)
	s.logger.Info("cooldown state restored", "keys", len(state))
}

// Start launches the flush loop. Stop it with Stop; the caller must not
// close the store before Stop returns.
func (s *Snapshotter) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop ends the flush loop, performs the final flush, and waits for it to
// complete. Safe to call more than once.
func (s *Snapshotter) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Snapshotter) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush(ctx)
		case <-ctx.Done():
			s.finalFlush()
			return
		case <-s.stop:
			s.finalFlush()
			return
		}
	}
}

// finalFlush uses a fresh context; the run context may already be
// cancelled when shutdown reaches us.
func (s *Snapshotter) finalFlush() {
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(flushCtx)
}

func (s *Snapshotter) flush(ctx context.Context) {
	if err := s.store.Save(ctx, s.gate.Export()); err != nil {
		s.logger.Warn("cooldown snapshot save failed", "error", err)
	}
}
