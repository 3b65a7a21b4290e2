package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestHTTPResolver_ResolvesAndCaches(t *testing.T) {
	var lookups atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		w.Write([]byte("Germany\n"))
	}))
	defer srv.Close()

	r := NewHTTPResolver(HTTPConfig{Endpoint: srv.URL + "/line/%s?fields=country"})
	ctx := context.Background()

	if got := r.Country(ctx, "203.0.113.7"); got != "Germany" {
		t.Errorf("country = %q, want Germany", got)
	}
	if got := r.Country(ctx, "203.0.113.7"); got != "Germany" {
		t.Errorf("cached country = %q, want Germany", got)
	}
	if n := lookups.Load(); n != 1 {
		t.Errorf("lookups = %d, want 1 (second hit must come from cache)", n)
	}
}

func TestHTTPResolver_DegradesToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewHTTPResolver(HTTPConfig{Endpoint: srv.URL + "/line/%s"})
	if got := r.Country(context.Background(), "203.0.113.7"); got != UnknownCountry {
		t.Errorf("country = %q, want %q", got, UnknownCountry)
	}
}

func TestHTTPResolver_UnreachableEndpoint(t *testing.T) {
	r := NewHTTPResolver(HTTPConfig{Endpoint: "http://127.0.0.1:1/line/%s"})
	if got := r.Country(context.Background(), "203.0.113.7"); got != UnknownCountry {
		t.Errorf("country = %q, want %q", got, UnknownCountry)
	}
}

func TestHTTPResolver_EmptyIP(t *testing.T) {
	r := NewHTTPResolver(HTTPConfig{Endpoint: "http://example.invalid/%s"})
	if got := r.Country(context.Background(), ""); got != UnknownCountry {
		t.Errorf("country = %q, want %q", got, UnknownCountry)
	}
}

func TestNoopResolver(t *testing.T) {
	if got := (NoopResolver{}).Country(context.Background(), "203.0.113.7"); got != UnknownCountry {
		t.Errorf("country = %q, want %q", got, UnknownCountry)
	}
}
