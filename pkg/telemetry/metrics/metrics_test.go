package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paperflow-hq/paperflow/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestCollector() *Collector {
	cfg := &config.MetricsConfig{Enabled: true}
	return NewCollector(cfg, prometheus.NewRegistry())
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}

func TestCollectorRegistersAllGroups(t *testing.T) {
	c := newTestCollector()

	c.Pipeline().RecordAction("rename", true, 2*time.Millisecond)
	c.Pipeline().RecordRun("pol-1", false, 50*time.Millisecond)
	c.Registry().CacheHit()
	c.Registry().CacheMiss()
	c.Registry().LoadObserved(time.Millisecond, 3)
	c.Audit().RecordEvent("action")
	c.Audit().RecordDropped()
	c.Audit().RecordPruned(12)

	body := scrape(t, c)
	for _, want := range []string{
		`paperflow_intake_actions_total{kind="rename",outcome="success"} 1`,
		`paperflow_intake_runs_total{outcome="failure",policy_id="pol-1"} 1`,
		`paperflow_intake_registry_cache_hits_total 1`,
		`paperflow_intake_registry_cache_misses_total 1`,
		`paperflow_intake_registry_policies_loaded 3`,
		`paperflow_intake_audit_events_total{category="action"} 1`,
		`paperflow_intake_audit_dropped_total 1`,
		`paperflow_intake_audit_pruned_total 12`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestCollectorAppliesNamespaceDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{}
	NewCollector(cfg, prometheus.NewRegistry())
	if cfg.Namespace != "paperflow" || cfg.Subsystem != "intake" {
		t.Errorf("defaults = %s/%s, want paperflow/intake", cfg.Namespace, cfg.Subsystem)
	}
}
