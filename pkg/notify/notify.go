// Package notify delivers abuse notifications to out-of-band sinks.
//
// Notification delivery is fire-and-forget: sinks run off the request
// path and a failing or slow sink never affects the client response.
package notify

import (
	"context"
	"time"
)

// Event describes one abuse notification.
type Event struct {
	// ClientKey identifies the offending client.
	ClientKey string `json:"client_key"`

	// Country is the resolved country of the client, "Unknown" when
	// resolution failed or is disabled.
	Country string `json:"country,omitempty"`

	// Route is the configured route name the client was hitting.
	Route string `json:"route"`

	// Count is the number of requests observed inside the current
	// window when the threshold was crossed.
	Count int `json:"count"`

	// Threshold is the configured per-window request limit.
	Threshold int `json:"threshold"`

	// Window is the observation window.
	Window time.Duration `json:"window_seconds"`

	// Timestamp is when the threshold was crossed.
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers abuse events. Implementations must not block the
// caller for longer than a channel send.
type Notifier interface {
	// Notify enqueues one event for delivery. The context covers the
	// enqueue only, not the eventual delivery.
	Notify(ctx context.Context, event Event)

	// Close flushes pending events and releases resources.
	Close() error
}

// Multi fans one event out to several notifiers.
type Multi []Notifier

// Notify delivers the event to every sink.
func (m Multi) Notify(ctx context.Context, event Event) {
	for _, n := range m {
		n.Notify(ctx, event)
	}
}

// Close closes every sink, returning the first error.
func (m Multi) Close() error {
	var first error
	for _, n := range m {
		if err := n.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
