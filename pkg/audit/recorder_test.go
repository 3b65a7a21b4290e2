package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"testing"
)

// blockingStorage holds every Insert until released, so tests can fill the
// recorder queue deterministically.
type blockingStorage struct {
	mu      sync.Mutex
	release chan struct{}
	inserts []*Record
	err     error
}

func newBlockingStorage() *blockingStorage {
	return &blockingStorage{release: make(chan struct{})}
}

func (s *blockingStorage) Insert(ctx context.Context, record *Record) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.inserts = append(s.inserts, record)
	err := s.err
	s.mu.Unlock()
	return err
}

func (s *blockingStorage) Prune(context.Context, time.Time) (int64, error) { return 0, nil }
func (s *blockingStorage) Close() error                                    { return nil }

func (s *blockingStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserts)
}

func TestRecorder_AssignsIDAndWrites(t *testing.T) {
	storage := newBlockingStorage()
	close(storage.release)

	r := NewRecorder(storage, &Config{Enabled: true, AsyncBuffer: 10, WriteTimeout: time.Second})
	rec := &Record{ClientKey: "203.0.113.7", Route: "chat"}
	r.Record(rec)
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if rec.ID == "" {
		t.Error("record ID was not assigned")
	}
	if rec.Timestamp.IsZero() {
		t.Error("record timestamp was not assigned")
	}
	if storage.count() != 1 {
		t.Fatalf("inserts = %d, want 1", storage.count())
	}
}

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	storage := newBlockingStorage()
	r := NewRecorder(storage, &Config{Enabled: true, AsyncBuffer: 1, WriteTimeout: time.Second})

	// The worker can pull at most one record off the channel before
	// blocking in Insert; with a buffer of one, the rest must be dropped.
	for i := 0; i < 10; i++ {
		r.Record(&Record{ClientKey: "203.0.113.7"})
	}
	if r.Dropped() == 0 {
		t.Error("expected drops with a full queue")
	}

	close(storage.release)
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecorder_DropHookFires(t *testing.T) {
	storage := newBlockingStorage()
	var hookCalls int64
	var hookMu sync.Mutex

	r := NewRecorder(storage, &Config{
		Enabled:     true,
		AsyncBuffer: 1,
		OnDrop: func() {
			hookMu.Lock()
			hookCalls++
			hookMu.Unlock()
		},
	})

	for i := 0; i < 10; i++ {
		r.Record(&Record{ClientKey: "203.0.113.7"})
	}

	hookMu.Lock()
	calls := hookCalls
	hookMu.Unlock()
	if calls != r.Dropped() {
		t.Errorf("hook calls = %d, dropped = %d; every drop must fire the hook", calls, r.Dropped())
	}
	if calls == 0 {
		t.Error("expected drops with a full queue")
	}

	close(storage.release)
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecorder_CloseDrainsQueue(t *testing.T) {
	storage := newBlockingStorage()
	close(storage.release)

	r := NewRecorder(storage, &Config{Enabled: true, AsyncBuffer: 100, WriteTimeout: time.Second})
	for i := 0; i < 20; i++ {
		r.Record(&Record{ClientKey: "203.0.113.7"})
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := storage.count(); got != 20 {
		t.Errorf("inserts after close = %d, want 20", got)
	}
}

func TestRecorder_StorageFailureIsSwallowed(t *testing.T) {
	storage := newBlockingStorage()
	storage.err = errors.New("disk full")
	close(storage.release)

	r := NewRecorder(storage, &Config{Enabled: true, AsyncBuffer: 10, WriteTimeout: time.Second})
	r.Record(&Record{ClientKey: "203.0.113.7"})
	if err := r.Close(); err != nil {
		t.Fatalf("close must not surface storage errors: %v", err)
	}
}

func TestRecorder_DisabledDiscards(t *testing.T) {
	storage := newBlockingStorage()
	close(storage.release)

	r := NewRecorder(storage, &Config{Enabled: false, AsyncBuffer: 10, WriteTimeout: time.Second})
	r.Record(&Record{ClientKey: "203.0.113.7"})
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if storage.count() != 0 {
		t.Error("disabled recorder must not write")
	}
}
