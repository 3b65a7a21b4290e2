package config

import "time"

func boolPtr(b bool) *bool { return &b }

// ApplyDefaults fills in default values for any unset configuration fields.
// It is called by LoadConfig after parsing and before validation.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8080"
	}
	if cfg.Server.RoutePrefix == "" {
		cfg.Server.RoutePrefix = "/api"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = 1 << 20
	}

	// Route defaults
	for name, route := range cfg.Routes {
		if route.AllowClientKeys == nil {
			route.AllowClientKeys = boolPtr(true)
		}
		if route.UpstreamTimeout == 0 {
			route.UpstreamTimeout = 5 * time.Minute
		}
		cfg.Routes[name] = route
	}

	// CORS defaults
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = 3600
	}

	// Limits defaults
	if cfg.Limits.Cooldown == 0 {
		cfg.Limits.Cooldown = time.Second
	}
	if cfg.Limits.AbuseThreshold == 0 {
		cfg.Limits.AbuseThreshold = 5
	}
	if cfg.Limits.AbuseWindow == 0 {
		cfg.Limits.AbuseWindow = 5 * time.Minute
	}
	if cfg.Limits.Snapshot.Backend == "" {
		cfg.Limits.Snapshot.Backend = "memory"
	}
	if cfg.Limits.Snapshot.Path == "" {
		cfg.Limits.Snapshot.Path = "data/limits.db"
	}
	if cfg.Limits.Snapshot.Interval == 0 {
		cfg.Limits.Snapshot.Interval = time.Minute
	}

	// Audit defaults
	if cfg.Audit.Enabled == nil {
		cfg.Audit.Enabled = boolPtr(true)
	}
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = "sqlite"
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "data/audit.db"
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = 1000
	}
	if cfg.Audit.CaptureBodies == nil {
		cfg.Audit.CaptureBodies = boolPtr(true)
	}
	if cfg.Audit.MaxBodyBytes == 0 {
		cfg.Audit.MaxBodyBytes = 64 * 1024
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = 30
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = "0 3 * * *"
	}

	// Notify defaults
	if cfg.Notify.Backend == "" {
		cfg.Notify.Backend = "log"
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = 5 * time.Second
	}
	if cfg.Notify.QueueSize == 0 {
		cfg.Notify.QueueSize = 100
	}

	// Geo defaults
	if cfg.Geo.Endpoint == "" {
		cfg.Geo.Endpoint = "http://ip-api.com/line/%s?fields=country"
	}
	if cfg.Geo.Timeout == 0 {
		cfg.Geo.Timeout = 3 * time.Second
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		cfg.Telemetry.Metrics.Enabled = boolPtr(true)
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}
