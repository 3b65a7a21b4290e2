// Package server ties the gateway together: it mounts one proxy handler
// per configured route, wraps them in the middleware chain, exposes the
// health and metrics endpoints, and manages server lifecycle including
// graceful shutdown on SIGTERM/SIGINT.
//
// # Routes
//
// Each configured route is mounted as a subtree under the route prefix,
// e.g. a route named "openai" with prefix "/api" serves every method and
// path below /api/openai/. In addition the server exposes:
//
//   - GET /health - liveness probe
//   - GET /metrics - Prometheus exposition (when enabled)
//
// # Middleware Chain
//
// Requests pass through recovery, logging, and request-ID middleware
// before reaching a route handler. CORS is handled inside the proxy
// pipeline, not as middleware, because denial and error responses must
// carry CORS headers too.
package server
