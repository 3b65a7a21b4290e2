package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled enables audit recording. A disabled recorder accepts and
	// discards records.
	Enabled bool

	// AsyncBuffer is the size of the async write channel. When the
	// buffer is full records are dropped rather than blocking the
	// request path.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// OnDrop is invoked once per record dropped from a full queue, so
	// callers can count drops in their metrics. May be nil.
	OnDrop func()
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes audit records asynchronously so the request path never
// waits on storage. Storage failures are logged once and swallowed; they
// must never surface in the client response.
type Recorder struct {
	storage    Storage
	config     *Config
	recordChan chan *Record
	dropped    int64
	droppedMu  sync.Mutex
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewRecorder creates a recorder draining into the given storage backend.
func NewRecorder(storage Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// Record enqueues one audit record. It assigns the record ID, returns
// immediately, and never blocks: when the queue is full the record is
// dropped and counted.
func (r *Recorder) Record(record *Record) {
	if !r.config.Enabled {
		return
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	select {
	case r.recordChan <- record:
	default:
		r.droppedMu.Lock()
		r.dropped++
		dropped := r.dropped
		r.droppedMu.Unlock()
		if r.config.OnDrop != nil {
			r.config.OnDrop()
		}
		r.logger.Warn("audit queue full, record dropped",
			"client_key", record.ClientKey,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns how many records were discarded due to a full queue.
func (r *Recorder) Dropped() int64 {
	r.droppedMu.Lock()
	defer r.droppedMu.Unlock()
	return r.dropped
}

// Close drains the queue and stops the worker. New records enqueued after
// Close may be discarded.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.write(record)
		case <-r.done:
			// Drain whatever is already queued.
			for {
				select {
				case record := <-r.recordChan:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Insert(ctx, record); err != nil {
		// Best effort by contract: log once and move on.
		r.logger.Error("audit write failed",
			"record_id", record.ID,
			"client_key", record.ClientKey,
			"error", err,
		)
	}
}
