package retention

import (
	"context"
	"testing"
	"time"

	"paperflow-hq/paperflow/pkg/audit"
	"paperflow-hq/paperflow/pkg/audit/storage"
)

func seedEvents(t *testing.T, s audit.Storage, ages ...time.Duration) {
	t.Helper()

	now := time.Now().UTC()
	for i, age := range ages {
		ev := &audit.Event{
			ID:         string(rune('a' + i)),
			DocumentID: "doc-1",
			Category:   audit.CategoryAction,
			Title:      "rename executed",
			CreatedAt:  now.Add(-age),
		}
		if err := s.Store(context.Background(), ev); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func TestPrune(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedEvents(t, s,
		100*24*time.Hour, // beyond the window
		95*24*time.Hour,  // beyond the window
		10*24*time.Hour,  // inside
		time.Hour,        // inside
	)

	pruner := NewPruner(s, &Config{RetentionDays: 90})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 remaining, got %d", count)
	}
}

func TestPruneDisabledByZeroRetention(t *testing.T) {
	s := storage.NewMemoryStorage()
	seedEvents(t, s, 1000*24*time.Hour)

	pruner := NewPruner(s, &Config{RetentionDays: 0})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected no-op with retention 0, got %d deleted", deleted)
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	pruner := NewPruner(storage.NewMemoryStorage(), &Config{
		RetentionDays: 90,
		PruneSchedule: "not a cron expression",
	})
	scheduler := NewScheduler(pruner)
	if err := scheduler.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestSchedulerEmptyScheduleIsNoop(t *testing.T) {
	pruner := NewPruner(storage.NewMemoryStorage(), &Config{RetentionDays: 90})
	scheduler := NewScheduler(pruner)
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("empty schedule should disable, got %v", err)
	}
	scheduler.Stop()
}
