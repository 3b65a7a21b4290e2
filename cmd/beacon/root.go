package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "beacon",
	Short: "Beacon - governed reverse proxy for chat-completion APIs",
	Long: `Beacon is a reverse proxy gateway that fronts upstream chat-completion
APIs with admission control, rate limiting, and auditing.

It forwards client requests to configured upstreams while providing:
  - IP ban lists and origin allow-lists
  - Per-client cooldown spacing and abuse notifications
  - Upstream credential injection
  - Streaming and buffered response relay
  - An asynchronous audit trail with scheduled retention`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
