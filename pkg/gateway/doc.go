// Package gateway implements the request forwarding primitives of Beacon:
// client identity extraction, header transformation, upstream dispatch, and
// response relay.
//
// # Pipeline
//
// A request travels through the admission pipeline in a fixed order:
//
//	ClientKey -> access control -> rate limiting -> header transform
//	          -> upstream dispatch -> response relay
//
// with the audit and notification sinks invoked at every decision point
// without gating the response. The pipeline itself is orchestrated by
// pkg/gateway/handlers; this package provides the building blocks.
//
// # Streaming
//
// Upstream responses whose Content-Type contains the token "stream" are
// relayed chunk-by-chunk with a flush per chunk, so callers begin receiving
// bytes before the upstream finishes. Client disconnects cancel the
// upstream read through the request context. All other responses are
// buffered, optionally captured for auditing, and written once.
//
// # Headers
//
// Hop-by-hop headers (Connection, Transfer-Encoding, ...) are stripped in
// both directions. Authorization is overwritten with the resolved route
// secret, and CORS headers are applied identically to success, denial, and
// error responses.
package gateway
