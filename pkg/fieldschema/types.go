package fieldschema

import (
	"context"
	"time"
)

// Field is one entry in a field schema version.
type Field struct {
	// Key is the variable name the extraction stage writes.
	Key string `json:"key" yaml:"key"`

	// Type is the semantic type ("string", "date", "number", "currency").
	Type string `json:"type" yaml:"type"`

	// Description is shown to users and to the extraction stage.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Enabled controls whether the field is requested during extraction.
	// Default fields can be disabled but never removed.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// IsDefault marks fields from the compiled-in baseline set.
	IsDefault bool `json:"is_default,omitempty" yaml:"is_default,omitempty"`
}

// Version is one immutable field schema version for an owner.
type Version struct {
	// ID is the storage row identifier (UUID).
	ID string `json:"id"`

	// UserID is the owning user.
	UserID string `json:"user_id"`

	// Version is the monotonically increasing version number, starting at 1.
	Version int `json:"version"`

	// Context is a free-form label describing why the version was created.
	Context string `json:"context,omitempty"`

	// Fields is the ordered field list of this version.
	Fields []Field `json:"fields"`

	// IsActive marks the single version currently in effect for the owner.
	IsActive bool `json:"is_active"`

	// CreatedAt is when the version row was inserted.
	CreatedAt time.Time `json:"created_at"`
}

// Store is the storage surface this package needs. pkg/storage backends
// implement it; a nil store degrades per the read/write asymmetry documented
// on each registry operation.
type Store interface {
	// ActiveSchemaVersion returns the active version for the owner, or nil
	// when no version is active.
	ActiveSchemaVersion(ctx context.Context, userID string) (*Version, error)

	// ListSchemaVersions returns all versions for the owner, newest first.
	ListSchemaVersions(ctx context.Context, userID string) ([]*Version, error)

	// InsertSchemaVersion appends a new version numbered max+1 for the owner.
	// With activate set, all existing versions are deactivated and the new row
	// inserted active inside a single transaction.
	InsertSchemaVersion(ctx context.Context, userID, context_ string, fields []Field, activate bool) (*Version, error)

	// ActivateSchemaVersion makes exactly versionID active for the owner,
	// deactivating all others in the same transaction. It returns false when
	// the row does not exist or is not owned by userID.
	ActivateSchemaVersion(ctx context.Context, userID, versionID string) (bool, error)
}
