// Package handlers contains the HTTP handlers mounted by the gateway
// server: one proxy handler per configured route, plus health.
package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"arclight-hq/beacon/pkg/access"
	"arclight-hq/beacon/pkg/audit"
	"arclight-hq/beacon/pkg/gateway"
	"arclight-hq/beacon/pkg/geo"
	"arclight-hq/beacon/pkg/limits"
	"arclight-hq/beacon/pkg/notify"
	"arclight-hq/beacon/pkg/telemetry/metrics"
)

// Audit decision values recorded per request.
const (
	DecisionAllowed       = "allowed"
	DecisionBanned        = "denied_banned"
	DecisionOrigin        = "denied_origin"
	DecisionMissingSecret = "denied_missing_secret"
	DecisionUpstreamError = "upstream_error"
	DecisionCancelled     = "cancelled"
)

// AuditSink accepts completed audit records. Implementations must not
// block.
type AuditSink interface {
	Record(record *audit.Record)
}

// Notifier receives abuse events.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event)
}

// ProxyConfig is the resolved per-route configuration for a proxy
// handler.
type ProxyConfig struct {
	// Route is the configured route name, used in logs, metrics, and
	// audit records.
	Route string

	// Mount is the gateway-side path prefix, e.g. "/api/openai".
	Mount string

	// UpstreamBaseURL is where requests are forwarded.
	UpstreamBaseURL string

	// DefaultSecret is injected as the bearer token when the client
	// supplies none or client keys are not allowed.
	DefaultSecret string

	// AllowClientKeys lets a client-supplied bearer token take
	// precedence over DefaultSecret.
	AllowClientKeys bool

	// ForceJSONContentType overwrites the forwarded Content-Type.
	ForceJSONContentType bool

	// UpstreamTimeout bounds the whole upstream round trip including
	// streaming reads. Zero means no timeout.
	UpstreamTimeout time.Duration

	// CaptureBodies stores request and buffered response bodies in
	// audit records.
	CaptureBodies bool

	// MaxBodyBytes truncates captured bodies.
	MaxBodyBytes int

	// AbuseThreshold and AbuseWindow describe the monitor feeding
	// abuse events, echoed into notifications.
	AbuseThreshold int
	AbuseWindow    time.Duration
}

// Proxy is the per-route request pipeline: admission, rate limiting,
// header transformation, upstream dispatch, and response relay. Audit
// and notification emission happen off the request path.
//
// The CORS policy's ReflectOrigin field is ignored; reflection is derived
// per request from the access controller's current origin enforcement.
type Proxy struct {
	config       ProxyConfig
	access       *access.Controller
	gate         *limits.Gate
	monitor      *limits.Monitor
	cors         gateway.CORSPolicy
	dispatcher   *gateway.Dispatcher
	auditSink    AuditSink
	notifier     Notifier
	geo          geo.Resolver
	metrics      *metrics.Collector
	upstreamHost string
	logger       *slog.Logger
}

// NewProxy assembles a proxy handler. auditSink and notifier may be nil;
// a nil geo resolver degrades to NoopResolver and a nil collector gets a
// private registry.
func NewProxy(
	config ProxyConfig,
	accessCtl *access.Controller,
	gate *limits.Gate,
	monitor *limits.Monitor,
	cors gateway.CORSPolicy,
	auditSink AuditSink,
	notifier Notifier,
	geoResolver geo.Resolver,
	collector *metrics.Collector,
) (*Proxy, error) {
	parsed, err := url.Parse(config.UpstreamBaseURL)
	if err != nil {
		return nil, err
	}
	if geoResolver == nil {
		geoResolver = geo.NoopResolver{}
	}
	if collector == nil {
		collector = metrics.NewCollector(nil)
	}
	return &Proxy{
		config:       config,
		access:       accessCtl,
		gate:         gate,
		monitor:      monitor,
		cors:         cors,
		dispatcher:   gateway.NewDispatcher(config.Route),
		auditSink:    auditSink,
		notifier:     notifier,
		geo:          geoResolver,
		metrics:      collector,
		upstreamHost: parsed.Host,
		logger:       slog.Default().With("component", "proxy", "route", config.Route),
	}, nil
}

// ServeHTTP runs the request pipeline. CORS headers are set before any
// outcome is decided so denials and errors stay readable from browsers.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	clientKey := gateway.ClientKey(r)
	origin := r.Header.Get("Origin")

	// Reflection mode follows the current rule set, which can change
	// under a rules-file hot reload.
	policy := p.cors
	policy.ReflectOrigin = policy.AllowCredentials || p.access.OriginEnforced()
	policy.Apply(w.Header(), origin)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	rec := &audit.Record{
		ClientKey:  clientKey,
		Route:      p.config.Route,
		Method:     r.Method,
		RequestURL: r.URL.String(),
	}

	switch p.access.Evaluate(clientKey, origin, r.Header.Get("Referer")) {
	case access.DeniedBanned:
		p.deny(w, rec, started, DecisionBanned, gateway.NewBannedError())
		return
	case access.DeniedOrigin:
		p.deny(w, rec, started, DecisionOrigin, gateway.NewOriginError())
		return
	}

	if obs := p.monitor.Observe(clientKey); obs.Notify {
		p.emitAbuse(clientKey, obs.Count)
	}

	gateStart := time.Now()
	if err := p.gate.Admit(r.Context(), clientKey); err != nil {
		// Client went away while waiting for a slot.
		rec.Decision = DecisionCancelled
		rec.Error = err.Error()
		p.finish(rec, started)
		return
	}
	p.metrics.RecordCooldownWait(time.Since(gateStart))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		rec.Decision = DecisionCancelled
		rec.Error = err.Error()
		p.finish(rec, started)
		return
	}
	rec.RequestHeaders = flattenHeaders(r.Header)
	if p.config.CaptureBodies {
		rec.RequestBody = truncate(body, p.config.MaxBodyBytes)
	}

	secret, err := gateway.ResolveSecret(r, p.config.AllowClientKeys, p.config.DefaultSecret)
	if err != nil {
		rec.Decision = DecisionMissingSecret
		rec.ResponseStatus = http.StatusUnauthorized
		p.metrics.RecordDenial("missing_secret")
		gateway.WriteJSONError(w, http.StatusUnauthorized, "API key is required")
		p.finish(rec, started)
		return
	}

	targetURL, err := gateway.BuildTargetURL(p.config.UpstreamBaseURL, p.config.Mount, r.URL)
	if err != nil {
		rec.Decision = DecisionUpstreamError
		rec.Error = err.Error()
		rec.ResponseStatus = http.StatusNotFound
		gateway.WriteJSONError(w, http.StatusNotFound, "Not Found")
		p.finish(rec, started)
		return
	}
	rec.TargetURL = targetURL

	spec := &gateway.ForwardSpec{
		Method:    r.Method,
		TargetURL: targetURL,
		Header:    gateway.UpstreamHeaders(r.Header, secret, p.upstreamHost, p.config.ForceJSONContentType),
		Body:      bytes.NewReader(body),
	}

	ctx := r.Context()
	if p.config.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.UpstreamTimeout)
		defer cancel()
	}

	dispatchStart := time.Now()
	resp, err := p.dispatcher.Dispatch(ctx, spec)
	if err != nil {
		p.metrics.RecordUpstreamError(p.config.Route)
		p.metrics.RecordRequest(p.config.Route, http.StatusInternalServerError)
		p.logger.Error("upstream dispatch failed", "target", targetURL, "error", err)
		rec.Decision = DecisionUpstreamError
		rec.Error = err.Error()
		rec.ResponseStatus = http.StatusInternalServerError
		gateway.WriteJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		p.finish(rec, started)
		return
	}
	p.metrics.RecordUpstream(p.config.Route, time.Since(dispatchStart))

	streaming := gateway.IsStreaming(resp.Header.Get("Content-Type"))
	if streaming {
		p.metrics.StreamStarted()
		defer p.metrics.StreamEnded()
	}

	result, relayErr := gateway.Relay(w, resp, p.config.CaptureBodies, p.config.MaxBodyBytes)
	if relayErr != nil {
		p.logger.Warn("relay interrupted", "error", relayErr)
		rec.Error = relayErr.Error()
	}

	rec.Decision = DecisionAllowed
	rec.ResponseStatus = result.Status
	rec.ResponseHeaders = flattenHeaders(result.Header)
	rec.ResponseBody = result.Body
	rec.Streamed = result.Streamed
	p.metrics.RecordRequest(p.config.Route, result.Status)
	p.finish(rec, started)
}

// Close releases the handler's upstream connections.
func (p *Proxy) Close() {
	p.dispatcher.CloseIdleConnections()
}

func (p *Proxy) deny(w http.ResponseWriter, rec *audit.Record, started time.Time, decision string, denial *gateway.AccessDeniedError) {
	p.metrics.RecordDenial(denial.Reason)
	gateway.WriteTextError(w, denial.Status, denial.Body)
	rec.Decision = decision
	rec.ResponseStatus = denial.Status
	p.finish(rec, started)
}

// finish stamps the record and hands it off. Country resolution can hit
// the network, so the whole emission runs off the request path.
func (p *Proxy) finish(rec *audit.Record, started time.Time) {
	rec.DurationMs = time.Since(started).Milliseconds()
	if p.auditSink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rec.Country = p.geo.Country(ctx, rec.ClientKey)
		p.auditSink.Record(rec)
	}()
}

func (p *Proxy) emitAbuse(clientKey string, count int) {
	p.metrics.RecordAbuseNotification()
	if p.notifier == nil {
		return
	}
	event := notify.Event{
		ClientKey: clientKey,
		Route:     p.config.Route,
		Count:     count,
		Threshold: p.config.AbuseThreshold,
		Window:    p.config.AbuseWindow,
		Timestamp: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		event.Country = p.geo.Country(ctx, clientKey)
		p.notifier.Notify(ctx, event)
	}()
}

// flattenHeaders joins multi-valued headers and redacts credentials so
// audit rows never store API keys.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if strings.EqualFold(name, gateway.AuthorizationHeader) {
			out[name] = "[redacted]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func truncate(b []byte, max int) string {
	if max > 0 && len(b) > max {
		b = b[:max]
	}
	return string(b)
}
