package access

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules is the admission rule set: banned client IPs and the origin
// allow-list. It can come from inline configuration or a watched rules
// file; file contents replace the inline lists entirely.
type Rules struct {
	// BannedIPs lists exact client IPs rejected with 403.
	BannedIPs []string `yaml:"banned_ips"`

	// AllowedOrigins lists substrings matched against Origin/Referer.
	// Empty disables the origin check.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoadRules reads and validates a YAML rules file.
func LoadRules(path string) (Rules, error) {
	var rules Rules

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}

	for _, ip := range rules.BannedIPs {
		if net.ParseIP(ip) == nil {
			return rules, fmt.Errorf("rules file %q: banned_ips entry %q is not a valid IP", path, ip)
		}
	}
	return rules, nil
}
