package metrics

import (
	"paperflow-hq/paperflow/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and the per-subsystem metric
// groups: pipeline execution, policy registry, and audit recording.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	pipelineMetrics *PipelineMetrics
	registryMetrics *RegistryMetrics
	auditMetrics    *AuditMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "paperflow",
//		Subsystem: "intake",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "paperflow"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "intake"
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		pipelineMetrics: NewPipelineMetrics(cfg, registry),
		registryMetrics: NewRegistryMetrics(cfg, registry),
		auditMetrics:    NewAuditMetrics(cfg, registry),
	}
}

// Pipeline returns the pipeline metric group.
func (c *Collector) Pipeline() *PipelineMetrics {
	return c.pipelineMetrics
}

// Registry returns the policy registry metric group.
func (c *Collector) Registry() *RegistryMetrics {
	return c.registryMetrics
}

// Audit returns the audit metric group.
func (c *Collector) Audit() *AuditMetrics {
	return c.auditMetrics
}
