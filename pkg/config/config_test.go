package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestNewDefaultIsValid(t *testing.T) {
	cfg := NewDefault()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default configuration invalid: %v", err)
	}
	if cfg.Registry.CacheTTL != 30*time.Second {
		t.Errorf("cache TTL = %v, want 30s", cfg.Registry.CacheTTL)
	}
	if !cfg.Audit.Enabled {
		t.Error("audit disabled by default")
	}
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: memory
registry:
  cache_ttl: 10s
telemetry:
  logging:
    level: debug
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.Registry.CacheTTL != 10*time.Second {
		t.Errorf("cache TTL = %v, want 10s", cfg.Registry.CacheTTL)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Audit.Retention.Schedule != DefaultRetentionSchedule {
		t.Errorf("schedule = %q, want default", cfg.Audit.Retention.Schedule)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: cassandra\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig accepted unknown backend")
	}
}

func TestLoadConfigRejectsBadCron(t *testing.T) {
	path := writeConfig(t, "audit:\n  retention:\n    schedule: not-cron\n")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig accepted invalid cron expression")
	}
	if !strings.Contains(err.Error(), "audit.retention.schedule") {
		t.Errorf("err = %v, want schedule field named", err)
	}
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: sqlite\n")
	t.Setenv("PAPERFLOW_STORAGE_BACKEND", "memory")
	t.Setenv("PAPERFLOW_REGISTRY_CACHE_TTL", "45s")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend = %q, want env override memory", cfg.Storage.Backend)
	}
	if cfg.Registry.CacheTTL != 45*time.Second {
		t.Errorf("cache TTL = %v, want 45s", cfg.Registry.CacheTTL)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := NewDefault()
	cfg.Storage.Backend = "bogus"
	cfg.Remote.Provider = "gcs" // bucket missing
	cfg.Telemetry.Logging.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate accepted broken configuration")
	}
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("err type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("collected %d errors, want 3: %v", len(verr.Errors), verr)
	}
}

func TestWatchRequiresPoliciesDir(t *testing.T) {
	cfg := NewDefault()
	cfg.Registry.Watch = true
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate accepted watch without policies_dir")
	}
}
