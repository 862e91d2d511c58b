package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"paperflow-hq/paperflow/pkg/audit"
	"paperflow-hq/paperflow/pkg/policy"
)

// DefaultTTL is how long a user's loaded policy list stays fresh.
const DefaultTTL = 30 * time.Second

// Metrics receives registry observations. Satisfied by
// telemetry/metrics.RegistryMetrics; nil disables recording.
type Metrics interface {
	CacheHit()
	CacheMiss()
	LoadObserved(duration time.Duration, policies int)
}

type cacheEntry struct {
	policies []*policy.Policy
	loadedAt time.Time
}

// Registry is the cached read/write surface over policy storage. Safe for
// concurrent use.
type Registry struct {
	store   policy.Store
	ttl     time.Duration
	sink    audit.Sink
	metrics Metrics
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewRegistry creates a registry over store. A nil store degrades every read
// to an empty result and every write to an AuthRequired error. ttl <= 0
// selects DefaultTTL; sink and m may be nil.
func NewRegistry(store policy.Store, ttl time.Duration, sink audit.Sink, m Metrics) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sink == nil {
		sink = audit.Discard{}
	}
	return &Registry{
		store:   store,
		ttl:     ttl,
		sink:    sink,
		metrics: m,
		logger:  slog.Default().With("component", "policy-registry"),
		cache:   make(map[string]cacheEntry),
	}
}

// Load returns the user's enabled policies ordered by priority, highest
// first, serving from cache while the entry is younger than the TTL.
// forceRefresh bypasses the cache. Read failures are logged and downgraded
// to an empty list; Load never returns an error.
func (r *Registry) Load(ctx context.Context, userID string, forceRefresh bool) []*policy.Policy {
	if !forceRefresh {
		r.mu.RLock()
		entry, ok := r.cache[userID]
		r.mu.RUnlock()
		if ok && time.Since(entry.loadedAt) < r.ttl {
			if r.metrics != nil {
				r.metrics.CacheHit()
			}
			return snapshot(entry.policies)
		}
	}
	if r.metrics != nil {
		r.metrics.CacheMiss()
	}

	if r.store == nil {
		return nil
	}

	start := time.Now()
	all, err := r.store.ListPolicies(ctx, userID)
	if err != nil {
		r.logger.Warn("policy load failed, serving empty list",
			"user_id", userID,
			"error", err)
		return nil
	}

	enabled := make([]*policy.Policy, 0, len(all))
	for _, p := range all {
		if p.Metadata.Enabled {
			enabled = append(enabled, p)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Metadata.Priority > enabled[j].Metadata.Priority
	})

	if r.metrics != nil {
		r.metrics.LoadObserved(time.Since(start), len(enabled))
	}

	r.mu.Lock()
	r.cache[userID] = cacheEntry{policies: enabled, loadedAt: time.Now()}
	r.mu.Unlock()

	return snapshot(enabled)
}

// snapshot copies the cached slice so callers cannot mutate the cache entry
// through the returned pointers.
func snapshot(policies []*policy.Policy) []*policy.Policy {
	out := make([]*policy.Policy, len(policies))
	for i, p := range policies {
		cp := *p
		out[i] = &cp
	}
	return out
}

// Save validates, normalizes, and upserts the policy, returning its id. The
// user's cache entry is dropped on success so the next Load observes the
// write.
func (r *Registry) Save(ctx context.Context, userID string, p *policy.Policy) (string, error) {
	if r.store == nil {
		return "", policy.NewAuthRequiredError("save policy")
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return "", err
	}

	id, err := r.store.UpsertPolicy(ctx, userID, p)
	if err != nil {
		return "", fmt.Errorf("save policy %q: %w", p.PolicyID, err)
	}

	r.invalidate(userID)
	r.sink.Record(ctx, &audit.Event{
		UserID:   userID,
		Category: audit.CategoryRegistry,
		Title:    "policy saved",
		Details:  map[string]any{"policy_id": id},
	})
	return id, nil
}

// Patch applies a partial metadata update. An empty patch is a no-op; a
// missing or unowned policy raises NotFound.
func (r *Registry) Patch(ctx context.Context, userID, policyID string, patch *policy.MetadataPatch) error {
	if r.store == nil {
		return policy.NewAuthRequiredError("patch policy")
	}
	if patch == nil || patch.IsZero() {
		return nil
	}

	rows, err := r.store.PatchPolicyMetadata(ctx, userID, policyID, *patch)
	if err != nil {
		return fmt.Errorf("patch policy %q: %w", policyID, err)
	}
	if rows == 0 {
		return policy.NewNotFoundError("policy", policyID)
	}

	r.invalidate(userID)
	r.sink.Record(ctx, &audit.Event{
		UserID:   userID,
		Category: audit.CategoryRegistry,
		Title:    "policy patched",
		Details:  map[string]any{"policy_id": policyID},
	})
	return nil
}

// Delete removes the user's policy, reporting whether a row was removed. A
// missing or unowned policy returns false without an error, so deletes are
// idempotent.
func (r *Registry) Delete(ctx context.Context, userID, policyID string) (bool, error) {
	if r.store == nil {
		return false, policy.NewAuthRequiredError("delete policy")
	}

	rows, err := r.store.DeletePolicy(ctx, userID, policyID)
	if err != nil {
		return false, fmt.Errorf("delete policy %q: %w", policyID, err)
	}
	if rows == 0 {
		return false, nil
	}

	r.invalidate(userID)
	r.sink.Record(ctx, &audit.Event{
		UserID:   userID,
		Category: audit.CategoryRegistry,
		Title:    "policy deleted",
		Details:  map[string]any{"policy_id": policyID},
	})
	return true, nil
}

// Invalidate drops the user's cache entry. Exposed for callers that mutate
// storage out of band, such as the YAML importer's initial sync.
func (r *Registry) Invalidate(userID string) {
	r.invalidate(userID)
}

func (r *Registry) invalidate(userID string) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}
