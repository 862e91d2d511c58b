// Package telemetry groups the observability subpackages of Paperflow.
//
// # Components
//
//   - logging: structured slog setup and context field helpers
//   - metrics: Prometheus metrics for the pipeline, registry and audit log
//   - health: liveness and readiness probes
//
// # Usage
//
//	logger, closeLog, err := logging.Setup(cfg.Telemetry.Logging)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.Pipeline().RecordAction("rename", true, elapsed)
//
// Each subpackage stands alone; commands wire only the pieces their
// configuration enables.
package telemetry
