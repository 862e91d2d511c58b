package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together; nil means the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateRegistry(&cfg.Registry)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateRemote(&cfg.Remote)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite", "postgres":
	default:
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("must be one of memory, sqlite, postgres; got %q", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{Field: "storage.sqlite.path", Message: "required for the sqlite backend"})
	}
	if cfg.Backend == "postgres" && cfg.Postgres.DSN == "" {
		errs = append(errs, FieldError{Field: "storage.postgres.dsn", Message: "required for the postgres backend"})
	}
	return errs
}

func validateRegistry(cfg *RegistryConfig) []FieldError {
	var errs []FieldError

	if cfg.CacheTTL < 0 {
		errs = append(errs, FieldError{Field: "registry.cache_ttl", Message: "must not be negative"})
	}
	if cfg.Watch && cfg.PoliciesDir == "" {
		errs = append(errs, FieldError{Field: "registry.policies_dir", Message: "required when watch is enabled"})
	}
	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}
	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("must be one of memory, sqlite; got %q", cfg.Backend),
		})
	}
	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{Field: "audit.sqlite_path", Message: "required for the sqlite backend"})
	}
	if cfg.AsyncBuffer < 0 {
		errs = append(errs, FieldError{Field: "audit.async_buffer", Message: "must not be negative"})
	}
	if cfg.Retention.Enabled {
		if cfg.Retention.Days <= 0 {
			errs = append(errs, FieldError{Field: "audit.retention.days", Message: "must be positive"})
		}
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.retention.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	return errs
}

func validateRemote(cfg *RemoteConfig) []FieldError {
	var errs []FieldError

	switch cfg.Provider {
	case "none", "gcs", "local":
	default:
		errs = append(errs, FieldError{
			Field:   "remote.provider",
			Message: fmt.Sprintf("must be one of none, gcs, local; got %q", cfg.Provider),
		})
	}
	if cfg.Provider == "gcs" && cfg.GCS.Bucket == "" {
		errs = append(errs, FieldError{Field: "remote.gcs.bucket", Message: "required for the gcs provider"})
	}
	if cfg.Provider == "local" && cfg.LocalDir == "" {
		errs = append(errs, FieldError{Field: "remote.local_dir", Message: "required for the local provider"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of json, text, console; got %q", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Enabled {
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{Field: "telemetry.metrics.listen_address", Message: "required when metrics are enabled"})
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "must start with /"})
		}
	}
	return errs
}
