package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestBuildTargetURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		mount   string
		reqURL  string
		want    string
		wantErr bool
	}{
		{
			name:   "path remainder with query",
			base:   "https://api.openai.com",
			mount:  "/api/openai",
			reqURL: "/api/openai/v1/chat/completions?stream=true",
			want:   "https://api.openai.com/v1/chat/completions?stream=true",
		},
		{
			name:   "bare mount",
			base:   "https://api.openai.com",
			mount:  "/api/openai",
			reqURL: "/api/openai",
			want:   "https://api.openai.com",
		},
		{
			name:   "trailing slash on base",
			base:   "https://api.example.com/",
			mount:  "/api/p",
			reqURL: "/api/p/chat",
			want:   "https://api.example.com/chat",
		},
		{
			name:    "path outside mount",
			base:    "https://api.example.com",
			mount:   "/api/p",
			reqURL:  "/other/chat",
			wantErr: true,
		},
		{
			name:    "mount prefix of another route",
			base:    "https://api.example.com",
			mount:   "/api/p",
			reqURL:  "/api/p-extra/chat",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.reqURL)
			if err != nil {
				t.Fatalf("bad test URL: %v", err)
			}
			got, err := BuildTargetURL(tt.base, tt.mount, u)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildTargetURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatcher_ForwardsBodyAndQuery(t *testing.T) {
	var gotBody string
	var gotQuery string
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	d := NewDispatcher("test")
	defer d.CloseIdleConnections()

	spec := &ForwardSpec{
		Method:    "POST",
		TargetURL: upstream.URL + "/v1/chat?stream=true",
		Header:    http.Header{"Authorization": {"Bearer sk-test"}},
		Body:      strings.NewReader(`{"model":"gpt-4"}`),
	}

	resp, err := d.Dispatch(context.Background(), spec)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	resp.Body.Close()

	if gotBody != `{"model":"gpt-4"}` {
		t.Errorf("upstream body = %q, want byte-for-byte forward", gotBody)
	}
	if gotQuery != "stream=true" {
		t.Errorf("upstream query = %q, want preserved", gotQuery)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("upstream auth = %q", gotAuth)
	}
}

func TestDispatcher_NonSuccessStatusIsNotAnError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer upstream.Close()

	d := NewDispatcher("test")
	resp, err := d.Dispatch(context.Background(), &ForwardSpec{
		Method:    "GET",
		TargetURL: upstream.URL,
		Header:    http.Header{},
	})
	if err != nil {
		t.Fatalf("non-2xx status must not be an error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 relayed", resp.StatusCode)
	}
}

func TestDispatcher_TransportFailure(t *testing.T) {
	d := NewDispatcher("test")
	_, err := d.Dispatch(context.Background(), &ForwardSpec{
		Method:    "GET",
		TargetURL: "http://127.0.0.1:1", // nothing listens here
		Header:    http.Header{},
	})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.Route != "test" {
		t.Errorf("route = %q", upErr.Route)
	}
}

func TestDispatcher_ContextTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer upstream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	d := NewDispatcher("test")
	_, err := d.Dispatch(ctx, &ForwardSpec{
		Method:    "GET",
		TargetURL: upstream.URL,
		Header:    http.Header{},
	})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline cause, got %v", upErr.Cause)
	}
}
