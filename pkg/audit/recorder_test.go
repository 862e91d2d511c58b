package audit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// gateStorage blocks Store until released, so tests can fill the recorder's
// channel deterministically.
type gateStorage struct {
	mu      sync.Mutex
	gate    chan struct{}
	stored  []*Event
	entered chan struct{}
}

func newGateStorage() *gateStorage {
	return &gateStorage{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 16),
	}
}

func (s *gateStorage) Store(ctx context.Context, event *Event) error {
	s.entered <- struct{}{}
	<-s.gate
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, event)
	return nil
}

func (s *gateStorage) ListByDocument(ctx context.Context, documentID string, limit int) ([]*Event, error) {
	return nil, nil
}

func (s *gateStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *gateStorage) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.stored)), nil
}

func (s *gateStorage) Close() error { return nil }

func (s *gateStorage) events() []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Event(nil), s.stored...)
}

func TestRecorderWritesAsync(t *testing.T) {
	storage := newGateStorage()
	close(storage.gate) // storage never blocks in this test

	recorder := NewRecorder(storage, &RecorderConfig{
		Enabled:      true,
		Buffer:       10,
		WriteTimeout: time.Second,
	})

	recorder.Record(context.Background(), &Event{
		DocumentID: "doc-1",
		UserID:     "alice",
		Category:   CategoryAction,
		Title:      "rename executed",
	})
	recorder.Record(context.Background(), &Event{
		DocumentID: "doc-1",
		Category:   CategoryAction,
		Title:      "copy executed",
	})

	// Close drains pending events before returning.
	if err := recorder.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	events := storage.events()
	if len(events) != 2 {
		t.Fatalf("expected 2 stored events, got %d", len(events))
	}
	for _, e := range events {
		if e.ID == "" {
			t.Error("event ID not assigned")
		}
		if e.CreatedAt.IsZero() {
			t.Error("event timestamp not assigned")
		}
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	storage := newGateStorage()

	recorder := NewRecorder(storage, &RecorderConfig{
		Enabled:      true,
		Buffer:       1,
		WriteTimeout: time.Second,
	})

	// First event occupies the worker (blocked in Store).
	recorder.Record(context.Background(), &Event{Title: "busy"})
	<-storage.entered

	// Second fills the channel, third has nowhere to go.
	recorder.Record(context.Background(), &Event{Title: "queued"})
	recorder.Record(context.Background(), &Event{Title: "dropped"})

	if got := recorder.Dropped(); got != 1 {
		t.Errorf("expected 1 dropped event, got %d", got)
	}

	close(storage.gate)
	if err := recorder.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if got := len(storage.events()); got != 2 {
		t.Errorf("expected 2 stored events after drain, got %d", got)
	}
}

func TestRecorderDisabled(t *testing.T) {
	storage := newGateStorage()
	close(storage.gate)

	recorder := NewRecorder(storage, &RecorderConfig{Enabled: false})
	recorder.Record(context.Background(), &Event{Title: "ignored"})

	if err := recorder.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := len(storage.events()); got != 0 {
		t.Errorf("disabled recorder stored %d events", got)
	}
}

func TestRecorderNilEvent(t *testing.T) {
	storage := newGateStorage()
	close(storage.gate)

	recorder := NewRecorder(storage, nil)
	recorder.Record(context.Background(), nil)

	if err := recorder.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := len(storage.events()); got != 0 {
		t.Errorf("nil event stored: %d", got)
	}
}

func TestDiscardSink(t *testing.T) {
	var sink Sink = Discard{}
	sink.Record(context.Background(), &Event{Title: "gone"})
}
