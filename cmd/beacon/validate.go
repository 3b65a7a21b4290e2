package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arclight-hq/beacon/pkg/access"
	"arclight-hq/beacon/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file, including any referenced
access rules file, without starting the server.

Examples:
  # Validate the default config
  beacon validate

  # Validate a specific config
  beacon validate --config /etc/beacon/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	if cfg.Access.RulesFile != "" {
		if _, err := access.LoadRules(cfg.Access.RulesFile); err != nil {
			return fmt.Errorf("rules file invalid: %w", err)
		}
	}

	fmt.Printf("✓ Configuration valid (%d routes)\n", len(cfg.Routes))
	for name, route := range cfg.Routes {
		fmt.Printf("  %s -> %s\n", name, route.UpstreamBaseURL)
	}
	return nil
}
