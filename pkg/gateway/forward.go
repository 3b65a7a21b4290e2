package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ForwardSpec is a fully resolved upstream request, constructed once per
// request and immutable afterward.
type ForwardSpec struct {
	Method    string
	TargetURL string
	Header    http.Header
	Body      io.Reader
}

// BuildTargetURL resolves the upstream URL for an inbound request. The path
// remainder after the route mount point is appended to the upstream base,
// and the original query string is preserved. Dropping the query string is
// a classic proxy defect; it is carried through verbatim here.
//
// mount is the gateway-side prefix for the route, e.g. "/api/openai".
func BuildTargetURL(upstreamBase, mount string, reqURL *url.URL) (string, error) {
	remainder, ok := strings.CutPrefix(reqURL.EscapedPath(), mount)
	if !ok {
		return "", fmt.Errorf("path %q not under route mount %q", reqURL.EscapedPath(), mount)
	}
	if remainder != "" && !strings.HasPrefix(remainder, "/") {
		// "/api/openai-extra" must not match the "/api/openai" mount
		return "", fmt.Errorf("path %q not under route mount %q", reqURL.EscapedPath(), mount)
	}

	target := strings.TrimSuffix(upstreamBase, "/") + remainder
	if reqURL.RawQuery != "" {
		target += "?" + reqURL.RawQuery
	}
	return target, nil
}

// Dispatcher issues forwarded requests to one route's upstream. Each route
// holds its own dispatcher with a private connection pool.
//
// The dispatcher never retries: transport failures surface as an
// UpstreamError, and non-2xx upstream responses are returned as ordinary
// responses to be relayed verbatim.
type Dispatcher struct {
	client *http.Client
	route  string
}

// NewDispatcher creates a dispatcher for the named route with connection
// pooling. No overall client timeout is set; callers bound the round trip
// through the request context so streaming responses are not cut off by a
// fixed body-read deadline.
func NewDispatcher(route string) *Dispatcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &Dispatcher{
		client: &http.Client{Transport: transport},
		route:  route,
	}
}

// Dispatch sends the forwarded request and returns the upstream response.
// The caller owns the response body and must close it.
func (d *Dispatcher) Dispatch(ctx context.Context, spec *ForwardSpec) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.TargetURL, spec.Body)
	if err != nil {
		return nil, &UpstreamError{Route: d.route, Cause: err}
	}

	for name, values := range spec.Header {
		req.Header[name] = values
	}
	// Host is a request field, not a plain header, in net/http.
	if host := spec.Header.Get("Host"); host != "" {
		req.Host = host
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Route: d.route, Cause: err}
	}
	return resp, nil
}

// CloseIdleConnections releases pooled upstream connections.
func (d *Dispatcher) CloseIdleConnections() {
	d.client.CloseIdleConnections()
}
