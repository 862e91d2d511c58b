package policy

import "context"

// Store is the persistence surface the registry needs. It represents the
// acting user's authenticated data-store session; operations accepting a nil
// Store degrade rather than failing with an unrelated error.
//
// Backends live in pkg/storage (memory, sqlite, postgres).
type Store interface {
	// ListPolicies returns every policy row owned by userID, in no particular
	// order. The registry sorts and filters.
	ListPolicies(ctx context.Context, userID string) ([]*Policy, error)

	// UpsertPolicy inserts or atomically replaces the row keyed by
	// (userID, p.PolicyID) and returns a location token for the row.
	UpsertPolicy(ctx context.Context, userID string, p *Policy) (string, error)

	// PatchPolicyMetadata applies a narrow metadata merge to the row keyed by
	// (userID, policyID) and returns the number of rows matched.
	PatchPolicyMetadata(ctx context.Context, userID, policyID string, patch MetadataPatch) (int64, error)

	// DeletePolicy removes the row keyed by (userID, policyID) and returns
	// the number of rows matched.
	DeletePolicy(ctx context.Context, userID, policyID string) (int64, error)
}
