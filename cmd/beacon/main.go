// Beacon is a governed reverse proxy for upstream chat-completion APIs.
//
// It admits or denies clients by IP and origin, spaces requests per
// client with a cooldown gate, injects upstream credentials, relays
// streaming and buffered responses, and records an audit trail with
// out-of-band abuse notifications.
//
// Usage:
//
//	# Start the gateway with default configuration
//	beacon run
//
//	# Start with a custom configuration file
//	beacon run --config /etc/beacon/config.yaml
//
//	# Validate configuration without starting
//	beacon validate
//
//	# Show version information
//	beacon version
package main

func main() {
	Execute()
}
