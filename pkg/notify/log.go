package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes abuse events to the structured log. It is the
// default sink and is always safe to use.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{
		logger: slog.Default().With("component", "notify.log"),
	}
}

// Notify logs the event at warn level.
func (l *LogNotifier) Notify(_ context.Context, event Event) {
	l.logger.Warn("abuse threshold exceeded",
		"client_key", event.ClientKey,
		"country", event.Country,
		"route", event.Route,
		"count", event.Count,
		"threshold", event.Threshold,
		"window", event.Window,
	)
}

// Close is a no-op.
func (l *LogNotifier) Close() error { return nil }
