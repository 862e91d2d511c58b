package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"paperflow-hq/paperflow/pkg/policy/registry"
)

// Importer syncs a directory of YAML policy files into the registry under
// one owning user (typically a service account for file-managed policies).
type Importer struct {
	registry *registry.Registry
	dir      string
	userID   string
	logger   *slog.Logger
}

// New creates an importer syncing dir into reg for userID.
func New(reg *registry.Registry, dir, userID string) *Importer {
	return &Importer{
		registry: reg,
		dir:      dir,
		userID:   userID,
		logger:   slog.Default().With("component", "policy-importer"),
	}
}

// Sync loads every policy file under the directory and saves each document.
// Individual save failures are collected, not fatal: one broken document
// must not block the rest. Returns the number of policies saved.
func (i *Importer) Sync(ctx context.Context) (int, error) {
	policies, err := LoadDir(i.dir)
	if err != nil {
		return 0, fmt.Errorf("load policy directory %q: %w", i.dir, err)
	}

	var errs []error
	saved := 0
	for _, p := range policies {
		if _, err := i.registry.Save(ctx, i.userID, p); err != nil {
			i.logger.Warn("policy import failed",
				"policy_id", p.PolicyID,
				"error", err)
			errs = append(errs, fmt.Errorf("policy %q: %w", p.PolicyID, err))
			continue
		}
		saved++
	}

	i.logger.Info("policy sync complete",
		"dir", i.dir,
		"saved", saved,
		"failed", len(errs))
	return saved, errors.Join(errs...)
}
