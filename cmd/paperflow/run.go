package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"paperflow-hq/paperflow/pkg/audit/retention"
	"paperflow-hq/paperflow/pkg/cli"
	"paperflow-hq/paperflow/pkg/policy/importer"
	"paperflow-hq/paperflow/pkg/telemetry/health"
)

var runFlags struct {
	policiesDir string
	logLevel    string
	dryRun      bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Paperflow intake service",
	Long: `Start the Paperflow intake service with the specified configuration.

The service keeps the policy registry warm, imports policy files from the
configured directory (re-importing on change when watching is enabled),
prunes expired audit events on schedule, and serves Prometheus metrics.

Examples:
  # Start with default config
  paperflow run

  # Start with custom config
  paperflow run --config /etc/paperflow/config.yaml

  # Import policies from a directory and watch it for changes
  paperflow run --policies ./policies

  # Validate config without starting the service
  paperflow run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.policiesDir, "policies", "p", "", "override policies directory")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the service")
}

func runService(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()
	cfg := app.cfg

	// Apply flag overrides
	if runFlags.policiesDir != "" {
		cfg.Registry.PoliciesDir = runFlags.policiesDir
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	// Import policies and keep the directory in sync
	errChan := make(chan error, 1)
	if cfg.Registry.PoliciesDir != "" {
		imp := importer.New(app.registry, cfg.Registry.PoliciesDir, cfg.Registry.ImportUserID)
		if cfg.Registry.Watch {
			watcher, err := importer.NewWatcher(imp, 0)
			if err != nil {
				return cli.NewCommandError("run", fmt.Errorf("create policy watcher: %w", err))
			}
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					errChan <- fmt.Errorf("policy watcher: %w", err)
				}
			}()
			fmt.Printf("✓ Watching policies in %s\n", cfg.Registry.PoliciesDir)
		} else {
			n, err := imp.Sync(ctx)
			if err != nil {
				slog.Warn("some policy files failed to import", "error", err)
			}
			fmt.Printf("✓ Imported %d policies from %s\n", n, cfg.Registry.PoliciesDir)
		}
	}

	// Start audit retention pruning if configured
	if app.auditStorage != nil && cfg.Audit.Retention.Enabled && cfg.Audit.Retention.Schedule != "" {
		retCfg := &retention.Config{
			RetentionDays: cfg.Audit.Retention.Days,
			PruneSchedule: cfg.Audit.Retention.Schedule,
		}
		if app.collector != nil {
			retCfg.Metrics = app.collector.Audit()
		}
		pruner := retention.NewPruner(app.auditStorage, retCfg)
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			fmt.Printf("✓ Audit retention scheduled (%s, keep %d days)\n",
				cfg.Audit.Retention.Schedule, cfg.Audit.Retention.Days)
		}
	}

	// Serve health probes, and metrics when enabled, on one mux
	mux := http.NewServeMux()
	checker := health.New(5 * time.Second)
	checker.Register("storage", func(ctx context.Context) error {
		_, err := app.store.ListPolicies(ctx, cfg.Registry.ImportUserID)
		return err
	})
	if app.auditStorage != nil {
		checker.Register("audit", func(ctx context.Context) error {
			_, err := app.auditStorage.Count(ctx)
			return err
		})
	}
	health.Mount(mux, checker, Version, GitCommit, BuildDate)

	if app.collector != nil {
		mux.Handle(cfg.Telemetry.Metrics.Path, app.collector.Handler())
	}

	srv := &http.Server{
		Addr:              cfg.Telemetry.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Telemetry.Metrics.ListenAddress)
	if app.collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n",
			cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()
	}
	return nil
}
