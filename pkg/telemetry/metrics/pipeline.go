package metrics

import (
	"time"

	"paperflow-hq/paperflow/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks action pipeline execution.
//
// Metrics:
//   - paperflow_intake_actions_total: executed actions by kind and outcome
//   - paperflow_intake_action_duration_seconds: per-action execution duration
//   - paperflow_intake_runs_total: pipeline runs by policy and outcome
//   - paperflow_intake_run_duration_seconds: full-run duration
type PipelineMetrics struct {
	actionsTotal   *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
}

// NewPipelineMetrics creates and registers pipeline metrics with the
// provided registry.
func NewPipelineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PipelineMetrics {
	pm := &PipelineMetrics{
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "actions_total",
				Help:      "Total number of executed pipeline actions",
			},
			[]string{"kind", "outcome"},
		),

		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "action_duration_seconds",
				Help:      "Duration of a single pipeline action in seconds",
				// Filesystem actions finish in milliseconds; webhook and
				// upload actions can take seconds.
				Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1.0, 5.0, 15.0},
			},
			[]string{"kind"},
		),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"policy_id", "outcome"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of a full pipeline run in seconds",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0},
			},
			[]string{"policy_id"},
		),
	}

	registry.MustRegister(
		pm.actionsTotal,
		pm.actionDuration,
		pm.runsTotal,
		pm.runDuration,
	)

	return pm
}

// RecordAction records one executed action.
func (pm *PipelineMetrics) RecordAction(kind string, success bool, duration time.Duration) {
	pm.actionsTotal.WithLabelValues(kind, outcome(success)).Inc()
	pm.actionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordRun records one completed pipeline run.
func (pm *PipelineMetrics) RecordRun(policyID string, success bool, duration time.Duration) {
	pm.runsTotal.WithLabelValues(policyID, outcome(success)).Inc()
	pm.runDuration.WithLabelValues(policyID).Observe(duration.Seconds())
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
