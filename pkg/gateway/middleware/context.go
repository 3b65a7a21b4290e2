// Package middleware contains the HTTP middleware chain wrapped around
// every gateway route: panic recovery, request IDs, and access logging.
package middleware

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RequestIDKey stores the unique request ID.
const RequestIDKey contextKey = "request_id"

// GetRequestID extracts the request ID from the context. Returns an
// empty string if not set.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
