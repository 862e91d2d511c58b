package fieldschema_test

import (
	"context"
	"errors"
	"testing"

	"paperflow-hq/paperflow/pkg/fieldschema"
	"paperflow-hq/paperflow/pkg/policy"
	"paperflow-hq/paperflow/pkg/storage"
)

var testFields = []fieldschema.Field{
	{Key: "invoice_number", Type: "string", Description: "Invoice number", Enabled: true},
	{Key: "due_date", Type: "date", Enabled: true},
}

func TestActiveFieldsFallsBackToDefaults(t *testing.T) {
	reg := fieldschema.NewRegistry()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	fields := reg.ActiveFields(ctx, store, "alice")
	if len(fields) != len(fieldschema.Defaults()) {
		t.Fatalf("expected defaults, got %d fields", len(fields))
	}
	for _, f := range fields {
		if !f.IsDefault {
			t.Errorf("non-default field in fallback set: %s", f.Key)
		}
	}

	// Nil store degrades the same way instead of failing.
	fields = reg.ActiveFields(ctx, nil, "alice")
	if len(fields) != len(fieldschema.Defaults()) {
		t.Errorf("expected defaults with nil store, got %d fields", len(fields))
	}
}

func TestSaveAndActivate(t *testing.T) {
	reg := fieldschema.NewRegistry()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	v1, err := reg.Save(ctx, store, "alice", "initial", testFields, true)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if v1.Version != 1 {
		t.Errorf("expected version 1, got %d", v1.Version)
	}

	fields := reg.ActiveFields(ctx, store, "alice")
	if len(fields) != 2 || fields[0].Key != "invoice_number" {
		t.Fatalf("active fields not from saved version: %+v", fields)
	}

	// Save without activate leaves v1 in effect.
	extra := append(testFields, fieldschema.Field{Key: "po_number", Type: "string", Enabled: true})
	v2, err := reg.Save(ctx, store, "alice", "added po", extra, false)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if v2.Version != 2 {
		t.Errorf("expected version 2, got %d", v2.Version)
	}
	if got := reg.GetActive(ctx, store, "alice"); got == nil || got.ID != v1.ID {
		t.Errorf("active version changed by inactive save: %+v", got)
	}

	ok, err := reg.Activate(ctx, store, "alice", v2.ID)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if !ok {
		t.Fatal("activate matched no rows")
	}
	if got := reg.ActiveFields(ctx, store, "alice"); len(got) != 3 {
		t.Errorf("expected 3 fields after activation, got %d", len(got))
	}
}

func TestSaveValidation(t *testing.T) {
	reg := fieldschema.NewRegistry()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	if _, err := reg.Save(ctx, store, "alice", "", nil, false); !policy.IsValidation(err) {
		t.Errorf("expected validation error for empty field list, got %v", err)
	}
	bad := []fieldschema.Field{{Key: "", Type: "string"}}
	if _, err := reg.Save(ctx, store, "alice", "", bad, false); !policy.IsValidation(err) {
		t.Errorf("expected validation error for empty key, got %v", err)
	}
}

func TestWritesRequireStore(t *testing.T) {
	reg := fieldschema.NewRegistry()
	ctx := context.Background()

	if _, err := reg.Save(ctx, nil, "alice", "", testFields, false); !policy.IsAuthRequired(err) {
		t.Errorf("expected auth error for nil store, got %v", err)
	}
	if _, err := reg.Activate(ctx, nil, "alice", "some-id"); !policy.IsAuthRequired(err) {
		t.Errorf("expected auth error for nil store, got %v", err)
	}
	if _, err := reg.List(ctx, nil, "alice"); !policy.IsAuthRequired(err) {
		t.Errorf("expected auth error for nil store, got %v", err)
	}
	if _, err := reg.Save(ctx, storage.NewMemoryStore(), "", "", testFields, false); !policy.IsAuthRequired(err) {
		t.Errorf("expected auth error for empty user, got %v", err)
	}
}

func TestActivateUnownedReturnsFalse(t *testing.T) {
	reg := fieldschema.NewRegistry()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	v, err := reg.Save(ctx, store, "alice", "", testFields, true)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ok, err := reg.Activate(ctx, store, "bob", v.ID)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if ok {
		t.Error("bob activated alice's version")
	}
}

// failingStore wraps the memory store and fails every schema read.
type failingStore struct {
	*storage.MemoryStore
}

func (f *failingStore) ActiveSchemaVersion(ctx context.Context, userID string) (*fieldschema.Version, error) {
	return nil, errors.New("backend unavailable")
}

func TestReadFailureFallsBackToDefaults(t *testing.T) {
	reg := fieldschema.NewRegistry()
	store := &failingStore{storage.NewMemoryStore()}

	fields := reg.ActiveFields(context.Background(), store, "alice")
	if len(fields) != len(fieldschema.Defaults()) {
		t.Errorf("expected defaults on read failure, got %d fields", len(fields))
	}
}
