package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"paperflow-hq/paperflow/pkg/audit"
)

// MemoryStorage implements audit.Storage using an in-memory slice. It is
// intended for testing only.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []*audit.Event
}

// NewMemoryStorage creates a new in-memory audit storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store persists one event.
func (s *MemoryStorage) Store(ctx context.Context, event *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *event
	s.events = append(s.events, &cp)
	return nil
}

// ListByDocument returns events for a document, newest first.
func (s *MemoryStorage) ListByDocument(ctx context.Context, documentID string, limit int) ([]*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.Event
	for _, e := range s.events {
		if e.DocumentID == documentID {
			cp := *e
			results = append(results, &cp)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteBefore removes events created before cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*audit.Event
	var deleted int64
	for _, e := range s.events {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

// Count returns the number of stored events.
func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events)), nil
}

// Close releases nothing for the memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}
