package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"arclight-hq/beacon/pkg/access"
	"arclight-hq/beacon/pkg/audit"
	"arclight-hq/beacon/pkg/audit/retention"
	auditstorage "arclight-hq/beacon/pkg/audit/storage"
	"arclight-hq/beacon/pkg/config"
	"arclight-hq/beacon/pkg/geo"
	"arclight-hq/beacon/pkg/limits"
	limitstorage "arclight-hq/beacon/pkg/limits/storage"
	"arclight-hq/beacon/pkg/notify"
	"arclight-hq/beacon/pkg/server"
	"arclight-hq/beacon/pkg/telemetry/logging"
	"arclight-hq/beacon/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the Beacon gateway with the specified configuration.

The server listens on the configured address and forwards requests under
the route prefix to their upstreams, applying access control, cooldown
spacing, credential injection, and audit recording on the way.

Examples:
  # Start with default config
  beacon run

  # Start with custom config
  beacon run --config /etc/beacon/config.yaml

  # Override listen address
  beacon run --listen 0.0.0.0:8080

  # Validate config without starting
  beacon run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Access control, optionally hot-reloaded from a rules file.
	accessCtl := access.NewController(access.Rules{
		BannedIPs:      cfg.Access.BannedIPs,
		AllowedOrigins: cfg.Access.AllowedOrigins,
	})
	if cfg.Access.RulesFile != "" {
		watcher, err := access.NewWatcher(cfg.Access.RulesFile, accessCtl)
		if err != nil {
			return fmt.Errorf("failed to watch rules file: %w", err)
		}
		defer watcher.Close()
		watcher.Start(ctx)
		logger.Info("access rules file watched", "path", cfg.Access.RulesFile)
	}

	// Cooldown gate with optional snapshot persistence.
	gate := limits.NewGate(cfg.Limits.Cooldown)
	monitor := limits.NewMonitor(cfg.Limits.AbuseThreshold, cfg.Limits.AbuseWindow)

	var snapStore limitstorage.Store
	switch cfg.Limits.Snapshot.Backend {
	case "sqlite":
		snapStore, err = limitstorage.NewSQLiteStore(cfg.Limits.Snapshot.Path)
		if err != nil {
			return fmt.Errorf("failed to open limits store: %w", err)
		}
	default:
		snapStore = limitstorage.NewMemoryStore()
	}
	defer snapStore.Close()

	snapshotter := limits.NewSnapshotter(gate, snapStore, cfg.Limits.Snapshot.Interval)
	snapshotter.Restore(ctx)
	snapshotter.Start(ctx)
	// Deferred after snapStore.Close: Stop must run first so the final
	// flush hits an open store.
	defer snapshotter.Stop()

	collector := metrics.NewCollector(nil)

	// Audit trail.
	var auditSink *audit.Recorder
	if cfg.Audit.Enabled != nil && *cfg.Audit.Enabled {
		var store audit.Storage
		switch cfg.Audit.Backend {
		case "memory":
			store = auditstorage.NewMemoryStorage()
		default:
			sqliteCfg := auditstorage.DefaultSQLiteConfig()
			sqliteCfg.Path = cfg.Audit.Path
			store, err = auditstorage.NewSQLiteStorage(sqliteCfg)
			if err != nil {
				return fmt.Errorf("failed to open audit storage: %w", err)
			}
		}
		defer store.Close()

		auditSink = audit.NewRecorder(store, &audit.Config{
			Enabled:     true,
			AsyncBuffer: cfg.Audit.AsyncBuffer,
			OnDrop:      collector.RecordAuditDrop,
		})
		defer auditSink.Close()

		pruner := retention.NewPruner(store, retention.Config{
			RetentionDays: cfg.Audit.Retention.Days,
			Schedule:      cfg.Audit.Retention.Schedule,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	// Abuse notifications.
	notifiers := notify.Multi{notify.NewLogNotifier()}
	if cfg.Notify.Backend == "webhook" && cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:       cfg.Notify.WebhookURL,
			Timeout:   cfg.Notify.Timeout,
			QueueSize: cfg.Notify.QueueSize,
		}))
	}
	defer notifiers.Close()

	// Geo resolution.
	var geoResolver geo.Resolver = geo.NoopResolver{}
	if cfg.Geo.Enabled {
		geoResolver = geo.NewHTTPResolver(geo.HTTPConfig{
			Endpoint: cfg.Geo.Endpoint,
			Timeout:  cfg.Geo.Timeout,
		})
	}

	deps := server.Deps{
		Access:  accessCtl,
		Gate:    gate,
		Monitor: monitor,
		Geo:     geoResolver,
		Metrics: collector,
		Version: Version,
	}
	if auditSink != nil {
		deps.AuditSink = auditSink
	}
	deps.Notifier = notifiers

	srv := server.New(cfg, deps)

	fmt.Printf("✓ Beacon %s listening on %s\n", Version, cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled != nil && *cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	return srv.Start(ctx)
}
