package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path. It
// starts from the full default configuration, overlays the file, validates,
// and returns any errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PAPERFLOW_SECTION_FIELD (e.g., PAPERFLOW_STORAGE_BACKEND) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Start from defaults
//  2. Overlay YAML from file
//  3. Apply environment variable overrides
//  4. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Unparseable values are ignored in favor of the file value.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Storage.Backend, "PAPERFLOW_STORAGE_BACKEND")
	setString(&cfg.Storage.SQLite.Path, "PAPERFLOW_STORAGE_SQLITE_PATH")
	setString(&cfg.Storage.Postgres.DSN, "PAPERFLOW_STORAGE_POSTGRES_DSN")

	setDuration(&cfg.Registry.CacheTTL, "PAPERFLOW_REGISTRY_CACHE_TTL")
	setString(&cfg.Registry.PoliciesDir, "PAPERFLOW_REGISTRY_POLICIES_DIR")
	setBool(&cfg.Registry.Watch, "PAPERFLOW_REGISTRY_WATCH")
	setString(&cfg.Registry.ImportUserID, "PAPERFLOW_REGISTRY_IMPORT_USER_ID")

	setDuration(&cfg.Pipeline.WebhookTimeout, "PAPERFLOW_PIPELINE_WEBHOOK_TIMEOUT")

	setBool(&cfg.Audit.Enabled, "PAPERFLOW_AUDIT_ENABLED")
	setString(&cfg.Audit.Backend, "PAPERFLOW_AUDIT_BACKEND")
	setString(&cfg.Audit.SQLitePath, "PAPERFLOW_AUDIT_SQLITE_PATH")
	setInt(&cfg.Audit.AsyncBuffer, "PAPERFLOW_AUDIT_ASYNC_BUFFER")
	setBool(&cfg.Audit.Retention.Enabled, "PAPERFLOW_AUDIT_RETENTION_ENABLED")
	setInt(&cfg.Audit.Retention.Days, "PAPERFLOW_AUDIT_RETENTION_DAYS")
	setString(&cfg.Audit.Retention.Schedule, "PAPERFLOW_AUDIT_RETENTION_SCHEDULE")

	setString(&cfg.Remote.Provider, "PAPERFLOW_REMOTE_PROVIDER")
	setString(&cfg.Remote.GCS.Bucket, "PAPERFLOW_REMOTE_GCS_BUCKET")
	setString(&cfg.Remote.LocalDir, "PAPERFLOW_REMOTE_LOCAL_DIR")

	setString(&cfg.Telemetry.Logging.Level, "PAPERFLOW_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "PAPERFLOW_LOGGING_FORMAT")
	setString(&cfg.Telemetry.Logging.Output, "PAPERFLOW_LOGGING_OUTPUT")
	setBool(&cfg.Telemetry.Metrics.Enabled, "PAPERFLOW_METRICS_ENABLED")
	setString(&cfg.Telemetry.Metrics.ListenAddress, "PAPERFLOW_METRICS_LISTEN_ADDRESS")
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setBool(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*target = parsed
		}
	}
}

func setInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*target = parsed
		}
	}
}

func setDuration(target *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*target = parsed
		}
	}
}
