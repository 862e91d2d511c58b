// Package derive contains the pure functions between extraction and action
// execution: deriving the flat variable map from extracted field values, and
// resolving final filenames from a filename-mode directive.
//
// Nothing in this package performs I/O; both entry points are deterministic
// over their inputs, which keeps them trivially testable and safe to call
// from concurrent pipeline runs.
package derive
