package metrics

import (
	"paperflow-hq/paperflow/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks the audit recorder.
//
// Metrics:
//   - paperflow_intake_audit_events_total: recorded events by category
//   - paperflow_intake_audit_dropped_total: events dropped on a full queue
//   - paperflow_intake_audit_pruned_total: events removed by retention
type AuditMetrics struct {
	eventsTotal  *prometheus.CounterVec
	droppedTotal prometheus.Counter
	prunedTotal  prometheus.Counter
}

// NewAuditMetrics creates and registers audit metrics with the provided
// registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_events_total",
				Help:      "Total number of recorded audit events",
			},
			[]string{"category"},
		),

		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "audit_dropped_total",
			Help:      "Audit events dropped because the recorder queue was full",
		}),

		prunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "audit_pruned_total",
			Help:      "Audit events removed by scheduled retention",
		}),
	}

	registry.MustRegister(
		am.eventsTotal,
		am.droppedTotal,
		am.prunedTotal,
	)

	return am
}

// RecordEvent records one accepted audit event.
func (am *AuditMetrics) RecordEvent(category string) {
	am.eventsTotal.WithLabelValues(category).Inc()
}

// RecordDropped records one dropped audit event.
func (am *AuditMetrics) RecordDropped() {
	am.droppedTotal.Inc()
}

// RecordPruned records events removed by a retention run.
func (am *AuditMetrics) RecordPruned(count int64) {
	am.prunedTotal.Add(float64(count))
}
