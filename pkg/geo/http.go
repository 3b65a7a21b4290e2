package geo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPConfig contains configuration for the HTTP geo resolver.
type HTTPConfig struct {
	// Endpoint is a printf template producing the lookup URL for an
	// IP, e.g. "http://ip-api.com/line/%s?fields=country". The
	// response body is read as a single plain-text country name.
	Endpoint string

	// Timeout bounds one lookup.
	// Default: 3 seconds
	Timeout time.Duration

	// CacheSize caps the in-memory result cache. Zero disables the
	// cap.
	CacheSize int
}

// HTTPResolver resolves countries through a plain-text HTTP lookup
// service and caches results per IP.
type HTTPResolver struct {
	config HTTPConfig
	client *http.Client
	mu     sync.RWMutex
	cache  map[string]string
	logger *slog.Logger
}

// NewHTTPResolver creates a resolver against the configured endpoint.
func NewHTTPResolver(config HTTPConfig) *HTTPResolver {
	if config.Timeout <= 0 {
		config.Timeout = 3 * time.Second
	}
	return &HTTPResolver{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		cache:  make(map[string]string),
		logger: slog.Default().With("component", "geo"),
	}
}

// Country resolves the country for ip, consulting the cache first.
func (r *HTTPResolver) Country(ctx context.Context, ip string) string {
	if ip == "" {
		return UnknownCountry
	}

	r.mu.RLock()
	country, ok := r.cache[ip]
	r.mu.RUnlock()
	if ok {
		return country
	}

	country = r.lookup(ctx, ip)

	r.mu.Lock()
	// Unbounded caches get reset rather than evicted; lookups are
	// cheap enough to repopulate.
	if r.config.CacheSize > 0 && len(r.cache) >= r.config.CacheSize {
		r.cache = make(map[string]string)
	}
	r.cache[ip] = country
	r.mu.Unlock()

	return country
}

func (r *HTTPResolver) lookup(ctx context.Context, ip string) string {
	url := fmt.Sprintf(r.config.Endpoint, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.logger.Debug("geo lookup request failed", "ip", ip, "error", err)
		return UnknownCountry
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("geo lookup failed", "ip", ip, "error", err)
		return UnknownCountry
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Debug("geo lookup returned non-200", "ip", ip, "status", resp.StatusCode)
		return UnknownCountry
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		r.logger.Debug("geo lookup read failed", "ip", ip, "error", err)
		return UnknownCountry
	}

	country := strings.TrimSpace(string(body))
	if country == "" {
		return UnknownCountry
	}
	return country
}
