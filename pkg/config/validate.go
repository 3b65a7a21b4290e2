package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for errors and returns a descriptive
// error for the first problem found.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}

	if len(cfg.Routes) == 0 {
		return fmt.Errorf("at least one route must be configured")
	}
	for name, route := range cfg.Routes {
		if err := validateRoute(name, &route); err != nil {
			return err
		}
	}

	for _, ip := range cfg.Access.BannedIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("access.banned_ips: %q is not a valid IP address", ip)
		}
	}

	if cfg.Limits.Cooldown < 0 {
		return fmt.Errorf("limits.cooldown must not be negative")
	}
	if cfg.Limits.AbuseThreshold < 0 {
		return fmt.Errorf("limits.abuse_threshold must not be negative")
	}
	if b := cfg.Limits.Snapshot.Backend; b != "memory" && b != "sqlite" {
		return fmt.Errorf("limits.snapshot.backend must be \"memory\" or \"sqlite\", got %q", b)
	}

	if b := cfg.Audit.Backend; b != "memory" && b != "sqlite" {
		return fmt.Errorf("audit.backend must be \"memory\" or \"sqlite\", got %q", b)
	}
	if cfg.Audit.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Audit.Retention.Schedule); err != nil {
			return fmt.Errorf("audit.retention.schedule: invalid cron expression %q: %w",
				cfg.Audit.Retention.Schedule, err)
		}
	}

	switch cfg.Notify.Backend {
	case "log":
	case "webhook":
		if cfg.Notify.WebhookURL == "" {
			return fmt.Errorf("notify.webhook_url is required for the webhook backend")
		}
		if _, err := url.Parse(cfg.Notify.WebhookURL); err != nil {
			return fmt.Errorf("notify.webhook_url: %w", err)
		}
	default:
		return fmt.Errorf("notify.backend must be \"log\" or \"webhook\", got %q", cfg.Notify.Backend)
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error; got %q",
			cfg.Telemetry.Logging.Level)
	}

	return nil
}

func validateServer(s *ServerConfig) error {
	if s.ListenAddress == "" {
		return fmt.Errorf("server.listen_address is required")
	}
	if _, _, err := net.SplitHostPort(s.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not host:port: %w", s.ListenAddress, err)
	}
	if !strings.HasPrefix(s.RoutePrefix, "/") {
		return fmt.Errorf("server.route_prefix must start with \"/\", got %q", s.RoutePrefix)
	}
	return nil
}

func validateRoute(name string, r *RouteConfig) error {
	if name == "" {
		return fmt.Errorf("route names must not be empty")
	}
	if strings.ContainsAny(name, "/ ") {
		return fmt.Errorf("route name %q must not contain slashes or spaces", name)
	}
	if r.UpstreamBaseURL == "" {
		return fmt.Errorf("route %q: upstream_base_url is required", name)
	}
	u, err := url.Parse(r.UpstreamBaseURL)
	if err != nil {
		return fmt.Errorf("route %q: invalid upstream_base_url: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("route %q: upstream_base_url must be http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("route %q: upstream_base_url has no host", name)
	}
	if r.UpstreamTimeout < 0 {
		return fmt.Errorf("route %q: upstream_timeout must not be negative", name)
	}
	return nil
}
