package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"paperflow-hq/paperflow/pkg/policy"
	"paperflow-hq/paperflow/pkg/storage"
)

func validPolicy(id string, priority int, enabled bool) *policy.Policy {
	p := &policy.Policy{}
	p.Metadata.ID = id
	p.Metadata.Name = id
	p.Metadata.Priority = priority
	p.Metadata.Enabled = enabled
	p.Spec.Match.Strategy = policy.MatchAll
	p.Normalize()
	return p
}

func TestLoadFiltersAndOrdersByPriority(t *testing.T) {
	store := storage.NewMemoryStore()
	reg := NewRegistry(store, 0, nil, nil)
	ctx := context.Background()

	for _, p := range []*policy.Policy{
		validPolicy("low", 1, true),
		validPolicy("high", 10, true),
		validPolicy("off", 99, false),
	} {
		if _, err := reg.Save(ctx, "u1", p); err != nil {
			t.Fatalf("Save(%s): %v", p.PolicyID, err)
		}
	}

	got := reg.Load(ctx, "u1", false)
	if len(got) != 2 {
		t.Fatalf("Load returned %d policies, want 2 enabled", len(got))
	}
	if got[0].PolicyID != "high" || got[1].PolicyID != "low" {
		t.Errorf("order = [%s %s], want [high low]", got[0].PolicyID, got[1].PolicyID)
	}
}

func TestLoadNilStoreReturnsEmpty(t *testing.T) {
	reg := NewRegistry(nil, 0, nil, nil)
	if got := reg.Load(context.Background(), "u1", false); len(got) != 0 {
		t.Errorf("Load with nil store = %d policies, want 0", len(got))
	}
}

// failingStore errors on every read, standing in for a flaky backend.
type failingStore struct {
	policy.Store
}

func (failingStore) ListPolicies(ctx context.Context, userID string) ([]*policy.Policy, error) {
	return nil, errors.New("connection reset")
}

func TestLoadDowngradesReadFailureToEmpty(t *testing.T) {
	reg := NewRegistry(failingStore{}, 0, nil, nil)
	if got := reg.Load(context.Background(), "u1", false); got != nil {
		t.Errorf("Load with failing store = %v, want nil", got)
	}
}

// countingStore counts ListPolicies calls to observe cache behavior.
type countingStore struct {
	*storage.MemoryStore
	lists int
}

func (c *countingStore) ListPolicies(ctx context.Context, userID string) ([]*policy.Policy, error) {
	c.lists++
	return c.MemoryStore.ListPolicies(ctx, userID)
}

func TestLoadServesFromCacheWithinTTL(t *testing.T) {
	store := &countingStore{MemoryStore: storage.NewMemoryStore()}
	reg := NewRegistry(store, time.Minute, nil, nil)
	ctx := context.Background()

	if _, err := reg.Save(ctx, "u1", validPolicy("p1", 1, true)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reg.Load(ctx, "u1", false)
	reg.Load(ctx, "u1", false)
	if store.lists != 1 {
		t.Errorf("store listed %d times, want 1 (second read cached)", store.lists)
	}

	reg.Load(ctx, "u1", true)
	if store.lists != 2 {
		t.Errorf("store listed %d times after forced refresh, want 2", store.lists)
	}
}

func TestWriteInvalidatesCache(t *testing.T) {
	store := &countingStore{MemoryStore: storage.NewMemoryStore()}
	reg := NewRegistry(store, time.Minute, nil, nil)
	ctx := context.Background()

	if _, err := reg.Save(ctx, "u1", validPolicy("p1", 1, true)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reg.Load(ctx, "u1", false)

	if _, err := reg.Save(ctx, "u1", validPolicy("p2", 2, true)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := reg.Load(ctx, "u1", false)
	if len(got) != 2 {
		t.Errorf("Load after save = %d policies, want 2 (cache invalidated)", len(got))
	}
}

func TestSaveNilStoreRaisesAuthRequired(t *testing.T) {
	reg := NewRegistry(nil, 0, nil, nil)
	if _, err := reg.Save(context.Background(), "u1", validPolicy("p1", 1, true)); !policy.IsAuthRequired(err) {
		t.Errorf("err = %v, want AuthRequired", err)
	}
}

func TestSaveRejectsInvalidPolicy(t *testing.T) {
	reg := NewRegistry(storage.NewMemoryStore(), 0, nil, nil)
	bad := validPolicy("p1", 1, true)
	bad.Spec.Actions = []policy.ActionSpec{{Kind: "teleport"}}

	if _, err := reg.Save(context.Background(), "u1", bad); !policy.IsValidation(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestPatchMissingPolicyRaisesNotFound(t *testing.T) {
	reg := NewRegistry(storage.NewMemoryStore(), 0, nil, nil)
	enabled := false
	err := reg.Patch(context.Background(), "u1", "ghost", &policy.MetadataPatch{Enabled: &enabled})
	if !policy.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestPatchUpdatesPriorityAndEnabledOnly(t *testing.T) {
	store := storage.NewMemoryStore()
	reg := NewRegistry(store, 0, nil, nil)
	ctx := context.Background()

	if _, err := reg.Save(ctx, "u1", validPolicy("p1", 1, true)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	priority := 42
	enabled := false
	if err := reg.Patch(ctx, "u1", "p1", &policy.MetadataPatch{Priority: &priority, Enabled: &enabled}); err != nil {
		t.Fatalf("Patch: %v", err)
	}

	all, err := store.ListPolicies(ctx, "u1")
	if err != nil {
		t.Fatalf("ListPolicies: %v", err)
	}
	if all[0].Metadata.Priority != 42 || all[0].Metadata.Enabled {
		t.Errorf("metadata = %+v, want priority 42 disabled", all[0].Metadata)
	}
	if all[0].Spec.Match.Strategy != policy.MatchAll {
		t.Errorf("patch touched the spec: %+v", all[0].Spec)
	}
}

func TestPatchEmptyIsNoOp(t *testing.T) {
	reg := NewRegistry(storage.NewMemoryStore(), 0, nil, nil)
	if err := reg.Patch(context.Background(), "u1", "ghost", &policy.MetadataPatch{}); err != nil {
		t.Errorf("empty patch = %v, want nil", err)
	}
}

func TestDeleteMissingPolicyReturnsFalse(t *testing.T) {
	reg := NewRegistry(storage.NewMemoryStore(), 0, nil, nil)
	deleted, err := reg.Delete(context.Background(), "u1", "ghost")
	if err != nil {
		t.Fatalf("Delete of missing policy = %v, want nil", err)
	}
	if deleted {
		t.Error("deleted = true for a missing policy, want false")
	}
}

func TestDeleteNilStoreRaisesAuthRequired(t *testing.T) {
	reg := NewRegistry(nil, 0, nil, nil)
	if _, err := reg.Delete(context.Background(), "u1", "p1"); !policy.IsAuthRequired(err) {
		t.Errorf("err = %v, want AuthRequired", err)
	}
}

func TestDeleteRemovesAndInvalidates(t *testing.T) {
	reg := NewRegistry(storage.NewMemoryStore(), time.Minute, nil, nil)
	ctx := context.Background()

	if _, err := reg.Save(ctx, "u1", validPolicy("p1", 1, true)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reg.Load(ctx, "u1", false)

	deleted, err := reg.Delete(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("deleted = false, want true")
	}
	if got := reg.Load(ctx, "u1", false); len(got) != 0 {
		t.Errorf("Load after delete = %d policies, want 0", len(got))
	}
}

func TestUserIsolation(t *testing.T) {
	reg := NewRegistry(storage.NewMemoryStore(), 0, nil, nil)
	ctx := context.Background()

	if _, err := reg.Save(ctx, "u1", validPolicy("p1", 1, true)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if got := reg.Load(ctx, "u2", false); len(got) != 0 {
		t.Errorf("u2 sees %d of u1's policies", len(got))
	}
	deleted, err := reg.Delete(ctx, "u2", "p1")
	if err != nil {
		t.Fatalf("cross-user delete = %v, want nil", err)
	}
	if deleted {
		t.Error("cross-user delete reported true, want false")
	}
	if got := reg.Load(ctx, "u1", true); len(got) != 1 {
		t.Errorf("u1 has %d policies after u2's delete attempt, want 1", len(got))
	}
}

func TestLoadReturnsCopies(t *testing.T) {
	reg := NewRegistry(storage.NewMemoryStore(), time.Minute, nil, nil)
	ctx := context.Background()

	if _, err := reg.Save(ctx, "u1", validPolicy("p1", 1, true)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	first := reg.Load(ctx, "u1", false)
	first[0].Metadata.Name = "mutated"

	second := reg.Load(ctx, "u1", false)
	if second[0].Metadata.Name != "p1" {
		t.Errorf("cached name = %q after caller mutation, want %q", second[0].Metadata.Name, "p1")
	}
}
