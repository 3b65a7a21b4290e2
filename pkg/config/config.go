package config

import "time"

// Config is the root configuration structure for Beacon.
// It contains all configuration sections for the HTTP server, forwarding
// routes, access control, rate limiting, audit storage, notifications,
// and telemetry settings.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Routes contains configuration for all forwarded upstream routes.
	// Keys are route names (e.g., "openai", "anthropic"); each route is
	// mounted at /<prefix>/<name>/ and forwards to its upstream base URL.
	Routes map[string]RouteConfig `yaml:"routes"`

	// CORS contains Cross-Origin Resource Sharing configuration applied
	// to every route, including denial and error responses.
	CORS CORSConfig `yaml:"cors"`

	// Access contains admission policy: banned client IPs and the origin
	// allow-list.
	Access AccessConfig `yaml:"access"`

	// Limits contains cooldown and abuse-monitoring configuration.
	Limits LimitsConfig `yaml:"limits"`

	// Audit contains configuration for the audit trail storage.
	Audit AuditConfig `yaml:"audit"`

	// Notify contains configuration for operator notifications.
	Notify NotifyConfig `yaml:"notify"`

	// Geo contains configuration for IP-to-country resolution.
	Geo GeoConfig `yaml:"geo"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// RoutePrefix is the path prefix under which routes are mounted.
	// A route named "openai" is served at "<RoutePrefix>/openai/".
	// Default: "/api"
	RoutePrefix string `yaml:"route_prefix"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Zero means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// RouteConfig contains configuration for a single forwarded route.
type RouteConfig struct {
	// UpstreamBaseURL is the base URL requests are forwarded to.
	// The path remainder after the route mount point and the original
	// query string are appended to it.
	// Example: "https://api.openai.com"
	UpstreamBaseURL string `yaml:"upstream_base_url"`

	// DefaultSecret is the API key injected as "Bearer <secret>" when the
	// client does not supply one (or client keys are not allowed).
	DefaultSecret string `yaml:"default_secret"`

	// AllowClientKeys controls whether a bearer token supplied by the
	// client takes precedence over DefaultSecret. When false the client
	// token is always replaced.
	// Default: true
	AllowClientKeys *bool `yaml:"allow_client_keys"`

	// ForceJSONContentType overwrites the forwarded Content-Type with
	// "application/json". Some upstreams reject requests without it.
	// Default: false
	ForceJSONContentType bool `yaml:"force_json_content_type"`

	// UpstreamTimeout bounds the whole upstream round-trip, including
	// streaming reads. Zero means no timeout.
	// Default: 5m
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
//
// The Allow-Origin header is derived from the access policy: when an origin
// allow-list is enforced the literal request Origin is reflected, otherwise
// "*" is sent. Only the fixed headers are configured here.
type CORSConfig struct {
	// AllowedMethods is the value of Access-Control-Allow-Methods.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is the value of Access-Control-Allow-Headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// AllowCredentials controls whether credentials are allowed in CORS
	// requests. When true the Allow-Origin header is never "*".
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`

	// MaxAge is the maximum age (in seconds) for preflight caching.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// AccessConfig contains admission policy configuration.
type AccessConfig struct {
	// BannedIPs is a list of client IPs rejected with 403 regardless of
	// any other request property.
	BannedIPs []string `yaml:"banned_ips"`

	// AllowedOrigins is a list of substrings matched against the Origin
	// header (falling back to Referer). A request matching none of them
	// is rejected with 403. An empty list disables the origin check.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RulesFile is an optional YAML file holding banned_ips and
	// allowed_origins. When set, the file is watched and reloaded on
	// change; its contents replace the inline lists above.
	RulesFile string `yaml:"rules_file"`
}

// LimitsConfig contains cooldown and abuse-monitoring configuration.
type LimitsConfig struct {
	// Cooldown is the minimum interval between admitted requests from the
	// same client key. Requests arriving early are delayed, not rejected.
	// Observed deployments use 200ms-10s.
	// Default: 1s
	Cooldown time.Duration `yaml:"cooldown"`

	// AbuseThreshold is the per-key request count within AbuseWindow
	// above which an operator notification fires.
	// Default: 5
	AbuseThreshold int `yaml:"abuse_threshold"`

	// AbuseWindow is the monitoring window for the abuse counter and the
	// debounce interval for its notifications.
	// Default: 5m
	AbuseWindow time.Duration `yaml:"abuse_window"`

	// Snapshot configures optional persistence of cooldown state so that
	// restarts do not reset per-key intervals.
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// SnapshotConfig configures cooldown-state persistence.
type SnapshotConfig struct {
	// Backend selects the snapshot store: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path (sqlite backend only).
	// Default: "data/limits.db"
	Path string `yaml:"path"`

	// Interval is how often cooldown state is flushed to the store.
	// Default: 1m
	Interval time.Duration `yaml:"interval"`
}

// AuditConfig contains audit trail configuration.
type AuditConfig struct {
	// Enabled enables audit recording.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Backend selects the audit store: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path (sqlite backend only).
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// AsyncBuffer is the size of the async write queue. When the queue is
	// full records are dropped, never blocking the request path.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// CaptureBodies controls whether request and buffered response bodies
	// are stored verbatim. Streaming response bodies are always recorded
	// as a marker.
	// Default: true
	CaptureBodies *bool `yaml:"capture_bodies"`

	// MaxBodyBytes truncates captured bodies to this size.
	// Default: 65536
	MaxBodyBytes int `yaml:"max_body_bytes"`

	// Retention configures scheduled pruning of old audit rows.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig configures audit row pruning.
type RetentionConfig struct {
	// Days is the number of days to keep audit rows. Zero disables
	// pruning.
	// Default: 30
	Days int `yaml:"days"`

	// Schedule is a standard cron expression for when pruning runs.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// NotifyConfig contains operator notification configuration.
type NotifyConfig struct {
	// Backend selects the notification sink: "log" or "webhook".
	// Default: "log"
	Backend string `yaml:"backend"`

	// WebhookURL is the endpoint notifications are POSTed to as JSON
	// (webhook backend only).
	WebhookURL string `yaml:"webhook_url"`

	// Timeout bounds a single webhook delivery attempt.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	// QueueSize is the size of the async delivery queue. When full,
	// notifications are dropped.
	// Default: 100
	QueueSize int `yaml:"queue_size"`
}

// GeoConfig contains IP-to-country resolution configuration.
type GeoConfig struct {
	// Enabled enables country lookups for audit records and abuse
	// notifications. Failures always degrade to "Unknown".
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the lookup URL template; the client IP replaces "%s".
	// Default: "http://ip-api.com/line/%s?fields=country"
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single lookup.
	// Default: 3s
	Timeout time.Duration `yaml:"timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled enables the Prometheus /metrics endpoint.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
