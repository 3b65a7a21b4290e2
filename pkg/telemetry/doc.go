// Package telemetry provides observability for the gateway.
//
// It contains structured logging setup (logging) and Prometheus metrics
// collection (metrics). Both are wired once at startup and consumed
// through slog.Default and the metrics.Collector respectively.
package telemetry
