// Package metrics provides Prometheus metrics for Paperflow.
//
// The Collector owns a Prometheus registry and groups metrics by subsystem:
// pipeline execution (actions and runs), the policy registry's read cache,
// and the audit recorder. Metric names follow the
// <namespace>_<subsystem>_<name> convention, paperflow_intake_* by default.
package metrics
