package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"arclight-hq/beacon/pkg/access"
	"arclight-hq/beacon/pkg/config"
	"arclight-hq/beacon/pkg/limits"
	"arclight-hq/beacon/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func testConfig(upstream string) *config.Config {
	cfg := &config.Config{
		Routes: map[string]config.RouteConfig{
			"chat": {
				UpstreamBaseURL: upstream,
				DefaultSecret:   "sk-test",
			},
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func testDeps() Deps {
	return Deps{
		Access:  access.NewController(access.Rules{}),
		Gate:    limits.NewGate(0),
		Monitor: limits.NewMonitor(100, 0),
		Metrics: metrics.NewCollector(prometheus.NewRegistry()),
		Version: "test",
	}
}

func TestServer_MountsRoutesAndEndpoints(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("upstream: " + r.URL.Path))
	}))
	defer upstream.Close()

	srv := New(testConfig(upstream.URL), testDeps())
	handler, err := srv.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	ts := httptest.NewServer(handler)
	defer ts.Close()

	// Proxied route.
	resp, err := http.Post(ts.URL+"/api/chat/v1/completions", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("proxied request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "upstream: /v1/completions" {
		t.Errorf("proxied response = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing request ID header")
	}

	// Health endpoint.
	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	// Metrics endpoint.
	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "arclight_beacon") {
		t.Errorf("metrics response = %d", resp.StatusCode)
	}

	// Unknown path falls through to 404.
	resp, err = http.Get(ts.URL + "/api/unknown/x")
	if err != nil {
		t.Fatalf("unknown route: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d", resp.StatusCode)
	}
}

func TestServer_RouteMountIsPrefixExact(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	srv := New(testConfig(upstream.URL), testDeps())
	handler, err := srv.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	// "/api/chatextra/..." must not match the "/api/chat/" mount.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chatextra/v1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for sibling prefix", rec.Code)
	}
}

func TestServer_InvalidUpstreamURL(t *testing.T) {
	cfg := testConfig("://not-a-url")
	srv := New(cfg, testDeps())
	if _, err := srv.Handler(); err == nil {
		t.Fatal("expected error for invalid upstream URL")
	}
}
