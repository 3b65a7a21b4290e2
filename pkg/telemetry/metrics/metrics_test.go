package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_RecordsAndExposes(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordRequest("chat", 200)
	c.RecordRequest("chat", 502)
	c.RecordDenial("banned")
	c.RecordUpstream("chat", 1500*time.Millisecond)
	c.RecordUpstreamError("chat")
	c.RecordCooldownWait(30 * time.Millisecond)
	c.StreamStarted()
	c.RecordAbuseNotification()
	c.RecordAuditDrop()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint status = %d", rec.Code)
	}
	body := rec.Body.String()

	for _, want := range []string{
		`arclight_beacon_requests_total{route="chat",status="2xx"} 1`,
		`arclight_beacon_requests_total{route="chat",status="5xx"} 1`,
		`arclight_beacon_denials_total{reason="banned"} 1`,
		`arclight_beacon_upstream_errors_total{route="chat"} 1`,
		`arclight_beacon_active_streams 1`,
		`arclight_beacon_abuse_notifications_total 1`,
		`arclight_beacon_audit_records_dropped_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	c.StreamEnded()
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{403, "4xx"},
		{500, "5xx"},
		{100, "1xx"},
	}
	for _, tt := range tests {
		if got := statusClass(tt.status); got != tt.want {
			t.Errorf("statusClass(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
