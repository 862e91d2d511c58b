package storage

import (
	"context"
	"fmt"

	"paperflow-hq/paperflow/pkg/fieldschema"
	"paperflow-hq/paperflow/pkg/policy"
)

// Store is one authenticated data-store session. It combines the policy and
// field schema storage surfaces with the single document write the pipeline
// needs after a rename.
type Store interface {
	policy.Store
	fieldschema.Store

	// UpdateDocumentLocation persists a renamed or moved file's new location
	// to the durable ingestion record, so reruns never point at a stale path.
	UpdateDocumentLocation(ctx context.Context, userID, documentID, path, name string) error

	// Close releases the backend's resources.
	Close() error
}

// Error represents a failure inside a storage backend.
type Error struct {
	Backend   string // Backend name ("memory", "sqlite", "postgres")
	Operation string // Operation that failed ("list_policies", "activate_version", ...)
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new storage Error.
func NewError(backend, operation string, cause error) *Error {
	return &Error{Backend: backend, Operation: operation, Cause: cause}
}
