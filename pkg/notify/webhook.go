package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// WebhookConfig contains configuration for the webhook notifier.
type WebhookConfig struct {
	// URL is the endpoint events are POSTed to as JSON.
	URL string

	// Timeout bounds one delivery attempt.
	// Default: 10 seconds
	Timeout time.Duration

	// QueueSize is the size of the async delivery queue. When the
	// queue is full events are dropped.
	// Default: 100
	QueueSize int

	// Headers are added to every delivery request.
	Headers map[string]string
}

// WebhookNotifier POSTs abuse events to an HTTP endpoint from a
// background worker. Delivery failures are logged and dropped.
type WebhookNotifier struct {
	config    WebhookConfig
	client    *http.Client
	eventChan chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// NewWebhookNotifier creates a webhook notifier and starts its worker.
func NewWebhookNotifier(config WebhookConfig) *WebhookNotifier {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}

	w := &WebhookNotifier{
		config:    config,
		client:    &http.Client{Timeout: config.Timeout},
		eventChan: make(chan Event, config.QueueSize),
		done:      make(chan struct{}),
		logger:    slog.Default().With("component", "notify.webhook"),
	}

	w.wg.Add(1)
	go w.worker()

	return w
}

// Notify enqueues the event without blocking. Full queue drops the event.
func (w *WebhookNotifier) Notify(_ context.Context, event Event) {
	select {
	case w.eventChan <- event:
	default:
		w.logger.Warn("webhook queue full, event dropped",
			"client_key", event.ClientKey,
		)
	}
}

// Close flushes queued events and stops the worker.
func (w *WebhookNotifier) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
	})
	return nil
}

func (w *WebhookNotifier) worker() {
	defer w.wg.Done()

	for {
		select {
		case event := <-w.eventChan:
			w.deliver(event)
		case <-w.done:
			for {
				select {
				case event := <-w.eventChan:
					w.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (w *WebhookNotifier) deliver(event Event) {
	if err := w.post(event); err != nil {
		w.logger.Error("webhook delivery failed",
			"client_key", event.ClientKey,
			"url", w.config.URL,
			"error", err,
		)
	}
}

func (w *WebhookNotifier) post(event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
