// Package logging configures the process-wide structured logger.
//
// Paperflow logs through the standard library's log/slog. Setup builds a
// handler from configuration (level, format, output destination) and installs
// it as the slog default; components derive their own loggers with
// slog.Default().With("component", ...). Context helpers carry the acting
// user, document, and policy identifiers across call boundaries so log lines
// from deep inside the pipeline stay attributable.
package logging
