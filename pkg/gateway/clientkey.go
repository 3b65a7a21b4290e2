package gateway

import (
	"net"
	"net/http"
	"strings"
)

const (
	// ForwardedForHeader carries the client IP chain added by upstream
	// proxies and load balancers.
	ForwardedForHeader = "X-Forwarded-For"

	// RealIPHeader carries a single client IP set by some reverse proxies.
	RealIPHeader = "X-Real-IP"
)

// ClientKey derives the stable caller identity used for ban checks and rate
// limiting. It takes the first hop of the X-Forwarded-For chain, falling
// back to X-Real-IP and finally to the connection's remote address.
//
// The first forwarded hop is the original client as reported by the edge;
// later hops are intermediate proxies.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get(ForwardedForHeader); xff != "" {
		first := xff
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get(RealIPHeader)); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port (common in tests)
		return r.RemoteAddr
	}
	return host
}
