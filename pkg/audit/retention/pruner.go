package retention

import (
	"context"
	"log/slog"
	"time"

	"paperflow-hq/paperflow/pkg/audit"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain audit events.
	// 0 means keep events forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// Metrics, when set, counts pruned events. Satisfied by
	// telemetry/metrics.AuditMetrics.
	Metrics interface{ RecordPruned(count int64) }
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces the retention policy on audit events.
type Pruner struct {
	storage audit.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a new retention pruner.
func NewPruner(storage audit.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
	}
}

// Prune deletes events older than the retention window and returns the
// number deleted. With RetentionDays 0 it is a no-op.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}

	if deleted > 0 {
		if p.config.Metrics != nil {
			p.config.Metrics.RecordPruned(deleted)
		}
		p.logger.Info("audit events pruned",
			"deleted_count", deleted,
			"cutoff", cutoff,
		)
	}
	return deleted, nil
}
