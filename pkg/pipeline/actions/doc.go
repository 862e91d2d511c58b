// Package actions contains the built-in pipeline action handlers: rename,
// auto-rename, local and remote copy, CSV logging, notification, and
// webhook dispatch. Each handler implements pipeline.Handler and is safe for
// concurrent use.
//
// Handlers validate their own configuration and fail fast with a
// policy.ValidationError when a required key (pattern, destination, message,
// url, payload) is missing; filesystem and network failures surface as plain
// errors and stop the run.
package actions
