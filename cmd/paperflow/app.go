package main

import (
	"context"
	"fmt"
	"log/slog"

	"paperflow-hq/paperflow/pkg/audit"
	auditstorage "paperflow-hq/paperflow/pkg/audit/storage"
	"paperflow-hq/paperflow/pkg/config"
	"paperflow-hq/paperflow/pkg/fieldschema"
	"paperflow-hq/paperflow/pkg/pipeline"
	"paperflow-hq/paperflow/pkg/pipeline/actions"
	"paperflow-hq/paperflow/pkg/policy/registry"
	"paperflow-hq/paperflow/pkg/remote"
	"paperflow-hq/paperflow/pkg/storage"
	"paperflow-hq/paperflow/pkg/telemetry/logging"
	"paperflow-hq/paperflow/pkg/telemetry/metrics"
)

// app wires the configured components together for one command invocation.
type app struct {
	cfg *config.Config

	store     storage.Store
	registry  *registry.Registry
	schemas   *fieldschema.Registry
	runner    *pipeline.Runner
	uploader  remote.Uploader
	collector *metrics.Collector

	auditStorage audit.Storage
	recorder     *audit.Recorder
	sink         audit.Sink

	closers []func() error
}

// newApp loads configuration, sets up logging, and builds the component
// graph. Callers must Close the returned app.
func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	_, closeLog, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	a.closers = append(a.closers, closeLog)

	if cfg.Telemetry.Metrics.Enabled {
		a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	if err := a.buildStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildAudit(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildUploader(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var regMetrics registry.Metrics
	var runMetrics pipeline.Metrics
	if a.collector != nil {
		regMetrics = a.collector.Registry()
		runMetrics = a.collector.Pipeline()
	}

	a.registry = registry.NewRegistry(a.store, cfg.Registry.CacheTTL, a.sink, regMetrics)
	a.schemas = fieldschema.NewRegistry()
	a.runner = pipeline.NewRunner(
		actions.Default(a.uploader, slog.Default(), cfg.Pipeline.WebhookTimeout),
		a.store,
		a.sink,
		runMetrics,
	)
	return a, nil
}

func (a *app) buildStore(ctx context.Context) error {
	switch a.cfg.Storage.Backend {
	case "memory":
		a.store = storage.NewMemoryStore()
	case "sqlite":
		store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
			Path:        a.cfg.Storage.SQLite.Path,
			WALMode:     true,
			BusyTimeout: a.cfg.Storage.SQLite.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		a.store = store
	case "postgres":
		store, err := storage.NewPostgresStore(ctx, a.cfg.Storage.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("open postgres store: %w", err)
		}
		a.store = store
	default:
		return fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
	a.closers = append(a.closers, a.store.Close)
	return nil
}

func (a *app) buildAudit() error {
	if !a.cfg.Audit.Enabled {
		a.sink = audit.Discard{}
		return nil
	}

	switch a.cfg.Audit.Backend {
	case "memory":
		a.auditStorage = auditstorage.NewMemoryStorage()
	case "sqlite":
		st, err := auditstorage.NewSQLiteStorage(&auditstorage.SQLiteConfig{
			Path:         a.cfg.Audit.SQLitePath,
			MaxOpenConns: 10,
			WALMode:      true,
			BusyTimeout:  a.cfg.Audit.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("open audit store: %w", err)
		}
		a.auditStorage = st
	default:
		return fmt.Errorf("unknown audit backend %q", a.cfg.Audit.Backend)
	}
	a.closers = append(a.closers, a.auditStorage.Close)

	var am audit.Metrics
	if a.collector != nil {
		am = a.collector.Audit()
	}
	a.recorder = audit.NewRecorder(a.auditStorage, &audit.RecorderConfig{
		Enabled:      true,
		Buffer:       a.cfg.Audit.AsyncBuffer,
		WriteTimeout: a.cfg.Audit.WriteTimeout,
		Metrics:      am,
	})
	a.closers = append(a.closers, a.recorder.Close)
	a.sink = a.recorder
	return nil
}

func (a *app) buildUploader(ctx context.Context) error {
	switch a.cfg.Remote.Provider {
	case "none", "":
		return nil
	case "gcs":
		up, err := remote.NewGCSUploader(ctx, a.cfg.Remote.GCS.Bucket)
		if err != nil {
			return fmt.Errorf("create gcs uploader: %w", err)
		}
		a.uploader = up
		a.closers = append(a.closers, up.Close)
	case "local":
		a.uploader = remote.NewLocalUploader(a.cfg.Remote.LocalDir)
	default:
		return fmt.Errorf("unknown remote provider %q", a.cfg.Remote.Provider)
	}
	return nil
}

// Close releases every component in reverse construction order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("shutdown error", "error", err)
		}
	}
}
