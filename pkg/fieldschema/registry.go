package fieldschema

import (
	"context"
	"log/slog"

	"paperflow-hq/paperflow/pkg/policy"
)

// Registry exposes the versioned config operations over an injected store.
// Read operations favor availability; Save and Activate favor correctness and
// raise on any failure.
type Registry struct {
	logger *slog.Logger
}

// NewRegistry creates a field schema registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default().With("component", "fieldschema.registry"),
	}
}

// GetActive returns the owner's active schema version, or nil when none is
// active, the store is nil, or the read fails. Read failures are logged and
// downgraded; callers fall back to Defaults.
func (r *Registry) GetActive(ctx context.Context, store Store, userID string) *Version {
	if store == nil || userID == "" {
		return nil
	}

	version, err := store.ActiveSchemaVersion(ctx, userID)
	if err != nil {
		r.logger.Warn("active schema version read failed, falling back to defaults",
			"user_id", userID,
			"error", err,
		)
		return nil
	}
	return version
}

// ActiveFields returns the field list in effect for the owner: the active
// version's fields, or the compiled-in defaults when no version is active.
func (r *Registry) ActiveFields(ctx context.Context, store Store, userID string) []Field {
	if v := r.GetActive(ctx, store, userID); v != nil {
		return v.Fields
	}
	return Defaults()
}

// List returns all schema versions for the owner, newest first. Unlike the
// background reads, List is a deliberate user action and raises on failure.
func (r *Registry) List(ctx context.Context, store Store, userID string) ([]*Version, error) {
	if store == nil || userID == "" {
		return nil, policy.NewAuthRequiredError("list schema versions")
	}
	return store.ListSchemaVersions(ctx, userID)
}

// Save appends a new schema version for the owner, numbered max+1 (starting
// at 1). With activate set, the new version becomes the single active version
// in the same storage transaction.
func (r *Registry) Save(ctx context.Context, store Store, userID, versionContext string, fields []Field, activate bool) (*Version, error) {
	if store == nil || userID == "" {
		return nil, policy.NewAuthRequiredError("save schema version")
	}
	if len(fields) == 0 {
		return nil, policy.NewValidationError("fields", "schema version requires at least one field")
	}
	for _, f := range fields {
		if f.Key == "" {
			return nil, policy.NewValidationError("fields", "field key cannot be empty")
		}
	}

	version, err := store.InsertSchemaVersion(ctx, userID, versionContext, fields, activate)
	if err != nil {
		return nil, err
	}

	r.logger.Info("schema version saved",
		"user_id", userID,
		"version", version.Version,
		"fields", len(version.Fields),
		"activated", activate,
	)
	return version, nil
}

// Activate makes versionID the single active version for the owner. It
// returns false (not an error) when the row does not exist or belongs to a
// different owner.
func (r *Registry) Activate(ctx context.Context, store Store, userID, versionID string) (bool, error) {
	if store == nil || userID == "" {
		return false, policy.NewAuthRequiredError("activate schema version")
	}

	ok, err := store.ActivateSchemaVersion(ctx, userID, versionID)
	if err != nil {
		return false, err
	}
	if !ok {
		r.logger.Warn("schema version activation matched no rows",
			"user_id", userID,
			"version_id", versionID,
		)
		return false, nil
	}

	r.logger.Info("schema version activated",
		"user_id", userID,
		"version_id", versionID,
	)
	return true, nil
}
