// Package health provides liveness and readiness probes for the intake
// service. Components register probe functions with a Checker; Mount exposes
// the standard /health, /ready and /version endpoints on an HTTP mux.
package health
