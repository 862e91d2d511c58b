package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"paperflow-hq/paperflow/pkg/audit"
)

func backends(t *testing.T) map[string]audit.Storage {
	t.Helper()

	sqliteStorage, err := NewSQLiteStorage(&SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create sqlite storage: %v", err)
	}
	t.Cleanup(func() { sqliteStorage.Close() })

	memStorage := NewMemoryStorage()
	t.Cleanup(func() { memStorage.Close() })

	return map[string]audit.Storage{
		"memory": memStorage,
		"sqlite": sqliteStorage,
	}
}

func testEvent(id, documentID string, createdAt time.Time) *audit.Event {
	return &audit.Event{
		ID:         id,
		DocumentID: documentID,
		UserID:     "alice",
		Category:   audit.CategoryAction,
		Title:      "rename executed",
		Details: map[string]any{
			"kind":    "rename",
			"success": true,
		},
		CreatedAt: createdAt,
	}
}

func TestStoreAndListByDocument(t *testing.T) {
	for name, storage := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)

			for i := 0; i < 3; i++ {
				ev := testEvent(fmt.Sprintf("ev-%d", i), "doc-1", base.Add(time.Duration(i)*time.Minute))
				if err := storage.Store(ctx, ev); err != nil {
					t.Fatalf("store failed: %v", err)
				}
			}
			if err := storage.Store(ctx, testEvent("other", "doc-2", base)); err != nil {
				t.Fatalf("store failed: %v", err)
			}

			events, err := storage.ListByDocument(ctx, "doc-1", 0)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(events) != 3 {
				t.Fatalf("expected 3 events, got %d", len(events))
			}
			// Newest first.
			if events[0].ID != "ev-2" || events[2].ID != "ev-0" {
				t.Errorf("wrong order: %s ... %s", events[0].ID, events[2].ID)
			}
			if events[0].Details["kind"] != "rename" {
				t.Errorf("details not round-tripped: %+v", events[0].Details)
			}

			limited, err := storage.ListByDocument(ctx, "doc-1", 2)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(limited) != 2 {
				t.Errorf("expected 2 events with limit, got %d", len(limited))
			}
		})
	}
}

func TestDeleteBefore(t *testing.T) {
	for name, storage := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()

			old := testEvent("old", "doc-1", now.Add(-48*time.Hour))
			recent := testEvent("recent", "doc-1", now.Add(-time.Hour))
			if err := storage.Store(ctx, old); err != nil {
				t.Fatalf("store failed: %v", err)
			}
			if err := storage.Store(ctx, recent); err != nil {
				t.Fatalf("store failed: %v", err)
			}

			deleted, err := storage.DeleteBefore(ctx, now.Add(-24*time.Hour))
			if err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if deleted != 1 {
				t.Errorf("expected 1 deleted, got %d", deleted)
			}

			count, err := storage.Count(ctx)
			if err != nil {
				t.Fatalf("count failed: %v", err)
			}
			if count != 1 {
				t.Errorf("expected 1 remaining, got %d", count)
			}

			events, err := storage.ListByDocument(ctx, "doc-1", 0)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(events) != 1 || events[0].ID != "recent" {
				t.Errorf("wrong survivor: %+v", events)
			}
		})
	}
}

func TestListByDocumentEmpty(t *testing.T) {
	for name, storage := range backends(t) {
		t.Run(name, func(t *testing.T) {
			events, err := storage.ListByDocument(context.Background(), "no-such-doc", 10)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(events) != 0 {
				t.Errorf("expected no events, got %d", len(events))
			}
		})
	}
}
