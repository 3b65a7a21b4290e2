package audit

import (
	"context"
	"time"
)

// Record is the structured description of one request/response cycle.
// Every decision point produces one: admissions, denials, and errors alike.
type Record struct {
	// ID is a unique record identifier (UUID).
	ID string

	// Timestamp is when the request entered the pipeline.
	Timestamp time.Time

	// ClientKey is the caller identity (client IP).
	ClientKey string

	// Country is the resolved client country, or "Unknown".
	Country string

	// Route is the gateway route name the request hit.
	Route string

	// Method is the HTTP method.
	Method string

	// RequestURL is the gateway-side URL as received.
	RequestURL string

	// TargetURL is the resolved upstream URL. Empty when the request was
	// denied before dispatch.
	TargetURL string

	// RequestHeaders holds the inbound headers, one value per name.
	RequestHeaders map[string]string

	// RequestBody is the captured request body, possibly truncated.
	RequestBody string

	// Decision records the pipeline outcome ("allowed", "denied_banned",
	// "denied_origin", "denied_missing_secret", "upstream_error",
	// "cancelled").
	Decision string

	// ResponseStatus is the HTTP status sent to the caller.
	ResponseStatus int

	// ResponseHeaders holds the relayed response headers.
	ResponseHeaders map[string]string

	// ResponseBody is the captured response body, the stream marker for
	// streaming responses, or empty when capture is disabled.
	ResponseBody string

	// Streamed reports whether the streaming relay path was taken.
	Streamed bool

	// Error holds the underlying failure for error paths.
	Error string

	// DurationMs is the wall-clock pipeline duration in milliseconds.
	DurationMs int64
}

// Storage is the audit row sink. Implementations must tolerate concurrent,
// unordered writes.
type Storage interface {
	// Insert persists one record.
	Insert(ctx context.Context, record *Record) error

	// Prune deletes records older than the cutoff, returning how many
	// were removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}
