package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"paperflow-hq/paperflow/pkg/policy"
	"paperflow-hq/paperflow/pkg/policy/registry"
	"paperflow-hq/paperflow/pkg/storage"
)

const invoicePolicy = `policy_id: invoices
api_version: paperflow/v1
kind: Policy
metadata:
  id: invoices
  name: File invoices
  priority: 10
  enabled: true
spec:
  match:
    strategy: ALL
    conditions:
      - type: keyword
        value: invoice
  extract:
    - key: issuer
      type: string
  actions:
    - kind: auto_rename
`

const twoDocuments = invoicePolicy + `---
policy_id: receipts
api_version: paperflow/v1
kind: Policy
metadata:
  id: receipts
  name: File receipts
  priority: 5
  enabled: true
spec:
  match:
    strategy: ANY
    conditions:
      - type: keyword
        value: receipt
  actions:
    - kind: notify
      config:
        message: got a receipt
`

func writePolicyFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestLoadFileParsesMultipleDocuments(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "policies.yaml", twoDocuments)

	policies, err := LoadFile(filepath.Join(dir, "policies.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("parsed %d policies, want 2", len(policies))
	}
	if policies[0].PolicyID != "invoices" || policies[1].PolicyID != "receipts" {
		t.Errorf("ids = [%s %s]", policies[0].PolicyID, policies[1].PolicyID)
	}
	if policies[0].Spec.Match.Strategy != policy.MatchAll {
		t.Errorf("strategy = %q, want ALL", policies[0].Spec.Match.Strategy)
	}
}

func TestLoadFileRejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "bad.yaml", "metadata:\n  name: no id\n")

	if _, err := LoadFile(filepath.Join(dir, "bad.yaml")); err == nil {
		t.Fatal("LoadFile accepted a policy without an id")
	}
}

func TestLoadDirSkipsHiddenAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "policies.yaml", invoicePolicy)
	writePolicyFile(t, dir, ".draft.yaml", "not yaml {")
	writePolicyFile(t, dir, "notes.txt", "not a policy")

	policies, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(policies) != 1 {
		t.Errorf("loaded %d policies, want 1", len(policies))
	}
}

func TestSyncSavesIntoRegistry(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "policies.yaml", twoDocuments)

	reg := registry.NewRegistry(storage.NewMemoryStore(), 0, nil, nil)
	imp := New(reg, dir, "svc")

	saved, err := imp.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}

	got := reg.Load(context.Background(), "svc", true)
	if len(got) != 2 {
		t.Fatalf("registry holds %d policies, want 2", len(got))
	}
	if got[0].PolicyID != "invoices" {
		t.Errorf("highest priority = %q, want invoices", got[0].PolicyID)
	}
}

func TestSyncContinuesPastBrokenDocument(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "a_good.yaml", invoicePolicy)

	reg := registry.NewRegistry(nil, 0, nil, nil) // nil store: every save fails
	imp := New(reg, dir, "svc")

	saved, err := imp.Sync(context.Background())
	if err == nil {
		t.Fatal("Sync succeeded against a nil store")
	}
	if saved != 0 {
		t.Errorf("saved = %d, want 0", saved)
	}
}
