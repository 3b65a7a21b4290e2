package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Denial reasons returned by access control and secret resolution.
const (
	// BannedBody is the response body for requests from banned IPs.
	BannedBody = "Your IP is banned from accessing this service."

	// OriginBody is the response body for requests failing the origin
	// allow-list.
	OriginBody = "Unauthorized Origin"
)

// AccessDeniedError is a terminal admission failure. It carries the HTTP
// status and plain-text body sent to the caller.
type AccessDeniedError struct {
	// Reason is a short machine-readable denial reason ("banned",
	// "origin") used in audit records.
	Reason string

	// Status is the HTTP status returned to the caller.
	Status int

	// Body is the plain-text response body.
	Body string
}

// Error implements the error interface.
func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied (%s)", e.Reason)
}

// NewBannedError returns the denial for a banned client IP.
func NewBannedError() *AccessDeniedError {
	return &AccessDeniedError{Reason: "banned", Status: http.StatusForbidden, Body: BannedBody}
}

// NewOriginError returns the denial for a request failing the origin
// allow-list.
func NewOriginError() *AccessDeniedError {
	return &AccessDeniedError{Reason: "origin", Status: http.StatusForbidden, Body: OriginBody}
}

// MissingSecretError indicates that no API key could be resolved for the
// route: the client supplied none and no default secret is configured.
type MissingSecretError struct{}

// Error implements the error interface.
func (e *MissingSecretError) Error() string {
	return "no API key resolvable for route"
}

// UpstreamError wraps a transport-level failure (connect, timeout, broken
// stream) talking to the upstream. Non-2xx upstream responses are not
// upstream errors; they are relayed verbatim.
type UpstreamError struct {
	Route string
	Cause error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Route, e.Cause)
}

// Unwrap returns the underlying transport error.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// WriteJSONError writes a JSON error body of the form {"error": "..."}
// with the given status. CORS headers must already be set by the caller so
// that browser clients can read the body.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WriteTextError writes a plain-text error body with the given status.
func WriteTextError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
