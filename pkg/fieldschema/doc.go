// Package fieldschema manages the baseline extraction field schema as an
// append-only sequence of versions per owner.
//
// Versions are immutable once created: Save always appends version N+1 and
// never edits an existing row. At most one version per owner is active at any
// observation point; activating a version deactivates all others in the same
// storage transaction. Default fields can be disabled but never deleted.
//
// When no version is active (or the read fails), callers fall back to the
// compiled-in default field set returned by Defaults.
package fieldschema
