// Package config provides configuration loading and validation for Beacon.
//
// Configuration is loaded from a YAML file, defaults are applied for unset
// fields, and environment variables with the BEACON_ prefix override both.
//
// # Basic Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Overrides
//
// Variables follow BEACON_SECTION_FIELD naming:
//
//	BEACON_SERVER_LISTEN_ADDRESS=0.0.0.0:9000
//	BEACON_LIMITS_COOLDOWN=500ms
//	BEACON_ROUTE_OPENAI_SECRET=sk-...
//
// Route secrets should normally be supplied through the environment rather
// than the config file.
package config
