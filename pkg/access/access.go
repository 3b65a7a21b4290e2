package access

import (
	"strings"
	"sync"
)

// Decision is the outcome of an admission check.
type Decision int

const (
	// Allow admits the request into the pipeline.
	Allow Decision = iota

	// DeniedBanned rejects a banned client IP.
	DeniedBanned

	// DeniedOrigin rejects a request whose Origin/Referer matches no
	// allow-listed entry.
	DeniedOrigin
)

// String returns the decision name for logs and audit records.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DeniedBanned:
		return "denied_banned"
	case DeniedOrigin:
		return "denied_origin"
	default:
		return "unknown"
	}
}

// Controller evaluates ban lists and the origin allow-list. Rules may be
// replaced atomically at runtime (hot reload); evaluation never blocks on a
// reload in progress beyond the swap itself.
type Controller struct {
	mu    sync.RWMutex
	rules compiled
}

type compiled struct {
	banned  map[string]struct{}
	origins []string
}

// NewController creates a controller with the given initial rules.
func NewController(rules Rules) *Controller {
	c := &Controller{}
	c.SetRules(rules)
	return c
}

// SetRules atomically replaces the active rule set.
func (c *Controller) SetRules(rules Rules) {
	banned := make(map[string]struct{}, len(rules.BannedIPs))
	for _, ip := range rules.BannedIPs {
		banned[ip] = struct{}{}
	}
	origins := append([]string(nil), rules.AllowedOrigins...)

	c.mu.Lock()
	c.rules = compiled{banned: banned, origins: origins}
	c.mu.Unlock()
}

// OriginEnforced reports whether an origin allow-list is configured. An
// empty list means the open policy: no request is denied on origin grounds.
func (c *Controller) OriginEnforced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules.origins) > 0
}

// Evaluate returns the admission decision for a request. The ban check runs
// before the origin check: a banned IP is rejected regardless of origin.
// Every denial is terminal; callers must not retry.
//
// The origin check requires that Origin or, failing that, Referer contains
// at least one allow-listed substring. With a non-empty allow-list, absence
// of both headers is a denial.
func (c *Controller) Evaluate(clientKey, origin, referer string) Decision {
	c.mu.RLock()
	rules := c.rules
	c.mu.RUnlock()

	if _, banned := rules.banned[clientKey]; banned {
		return DeniedBanned
	}

	if len(rules.origins) == 0 {
		return Allow
	}

	probe := origin
	if probe == "" {
		probe = referer
	}
	if probe == "" {
		return DeniedOrigin
	}
	for _, allowed := range rules.origins {
		if strings.Contains(probe, allowed) {
			return Allow
		}
	}
	return DeniedOrigin
}
