package config

import "time"

// Default values for configuration fields.
const (
	// Storage defaults
	DefaultStorageBackend    = "sqlite"
	DefaultSQLitePath        = "data/paperflow.db"
	DefaultSQLiteBusyTimeout = 5 * time.Second

	// Registry defaults
	DefaultCacheTTL     = 30 * time.Second
	DefaultImportUserID = "system"

	// Pipeline defaults
	DefaultWebhookTimeout = 10 * time.Second

	// Audit defaults
	DefaultAuditEnabled      = true
	DefaultAuditBackend      = "sqlite"
	DefaultAuditSQLitePath   = "data/audit.db"
	DefaultAuditAsyncBuffer  = 1000
	DefaultAuditWriteTimeout = 5 * time.Second
	DefaultRetentionEnabled  = true
	DefaultRetentionDays     = 90
	DefaultRetentionSchedule = "0 3 * * *"

	// Remote defaults
	DefaultRemoteProvider = "none"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultLoggingOutput        = "stdout"
	DefaultMetricsEnabled       = true
	DefaultMetricsNamespace     = "paperflow"
	DefaultMetricsSubsystem     = "intake"
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
)

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values. This function is idempotent and safe
// to call multiple times.
//
// Boolean fields defaulting to true (audit.enabled, retention.enabled,
// metrics.enabled) cannot be distinguished from an explicit false after YAML
// parsing, so ApplyDefaults leaves them alone; NewDefault sets them and
// LoadConfig starts from NewDefault.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	if cfg.Registry.CacheTTL == 0 {
		cfg.Registry.CacheTTL = DefaultCacheTTL
	}
	if cfg.Registry.ImportUserID == "" {
		cfg.Registry.ImportUserID = DefaultImportUserID
	}

	if cfg.Pipeline.WebhookTimeout == 0 {
		cfg.Pipeline.WebhookTimeout = DefaultWebhookTimeout
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultAuditSQLitePath
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = DefaultAuditWriteTimeout
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultRetentionDays
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultRetentionSchedule
	}

	if cfg.Remote.Provider == "" {
		cfg.Remote.Provider = DefaultRemoteProvider
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.Output == "" {
		cfg.Telemetry.Logging.Output = DefaultLoggingOutput
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// NewDefault returns a fully defaulted configuration, including the boolean
// fields that default to true.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Audit.Retention.Enabled = DefaultRetentionEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}
