// Package metrics collects Prometheus metrics for the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every gateway metric and its Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	denialsTotal       *prometheus.CounterVec
	upstreamDuration   *prometheus.HistogramVec
	upstreamErrors     *prometheus.CounterVec
	cooldownWait       prometheus.Histogram
	activeStreams      prometheus.Gauge
	abuseNotifications prometheus.Counter
	auditDropped       prometheus.Counter
}

// NewCollector creates a collector registered against its own registry.
// Pass nil to use a fresh registry.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arclight",
				Subsystem: "beacon",
				Name:      "requests_total",
				Help:      "Total number of proxied requests by route and status class",
			},
			[]string{"route", "status"},
		),

		denialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arclight",
				Subsystem: "beacon",
				Name:      "denials_total",
				Help:      "Requests denied before reaching the upstream, by reason",
			},
			[]string{"reason"},
		),

		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "arclight",
				Subsystem: "beacon",
				Name:      "upstream_duration_seconds",
				Help:      "Wall time of upstream round trips",
				// Chat completions routinely run tens of seconds.
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"route"},
		),

		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arclight",
				Subsystem: "beacon",
				Name:      "upstream_errors_total",
				Help:      "Upstream dispatch failures by route",
			},
			[]string{"route"},
		),

		cooldownWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "arclight",
				Subsystem: "beacon",
				Name:      "cooldown_wait_seconds",
				Help:      "Time requests spent waiting in the cooldown gate",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		activeStreams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "arclight",
				Subsystem: "beacon",
				Name:      "active_streams",
				Help:      "Streaming responses currently being relayed",
			},
		),

		abuseNotifications: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "arclight",
				Subsystem: "beacon",
				Name:      "abuse_notifications_total",
				Help:      "Abuse threshold notifications emitted",
			},
		),

		auditDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "arclight",
				Subsystem: "beacon",
				Name:      "audit_records_dropped_total",
				Help:      "Audit records dropped due to a full queue",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.denialsTotal,
		c.upstreamDuration,
		c.upstreamErrors,
		c.cooldownWait,
		c.activeStreams,
		c.abuseNotifications,
		c.auditDropped,
	)

	return c
}

// Registry exposes the underlying registry for the metrics endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRequest records one completed request. Status is collapsed to
// its class ("2xx", "4xx", ...).
func (c *Collector) RecordRequest(route string, status int) {
	c.requestsTotal.WithLabelValues(route, statusClass(status)).Inc()
}

// RecordDenial records a request denied before dispatch.
func (c *Collector) RecordDenial(reason string) {
	c.denialsTotal.WithLabelValues(reason).Inc()
}

// RecordUpstream records the duration of one upstream round trip.
func (c *Collector) RecordUpstream(route string, duration time.Duration) {
	c.upstreamDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordUpstreamError records one failed upstream dispatch.
func (c *Collector) RecordUpstreamError(route string) {
	c.upstreamErrors.WithLabelValues(route).Inc()
}

// RecordCooldownWait records time spent waiting for a cooldown slot.
func (c *Collector) RecordCooldownWait(wait time.Duration) {
	c.cooldownWait.Observe(wait.Seconds())
}

// StreamStarted marks a streaming relay as active.
func (c *Collector) StreamStarted() { c.activeStreams.Inc() }

// StreamEnded marks a streaming relay as finished.
func (c *Collector) StreamEnded() { c.activeStreams.Dec() }

// RecordAbuseNotification counts one emitted abuse notification.
func (c *Collector) RecordAbuseNotification() { c.abuseNotifications.Inc() }

// RecordAuditDrop counts one dropped audit record.
func (c *Collector) RecordAuditDrop() { c.auditDropped.Inc() }

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
