package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health reports liveness. It carries the build version and uptime.
type Health struct {
	version string
	started time.Time
}

// NewHealth creates the health handler.
func NewHealth(version string) *Health {
	return &Health{version: version, started: time.Now()}
}

// ServeHTTP implements http.Handler.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
