// Package geo resolves client addresses to countries for audit records
// and abuse notifications. Resolution is best effort: any failure
// degrades to "Unknown" and never affects request handling.
package geo

import "context"

// UnknownCountry is returned when resolution fails or is disabled.
const UnknownCountry = "Unknown"

// Resolver maps a client address to a country name.
type Resolver interface {
	// Country resolves the country for the given IP address. It
	// returns UnknownCountry, never an error, on failure.
	Country(ctx context.Context, ip string) string
}

// NoopResolver always returns UnknownCountry. Used when geo lookup is
// disabled.
type NoopResolver struct{}

// Country implements Resolver.
func (NoopResolver) Country(context.Context, string) string { return UnknownCountry }
