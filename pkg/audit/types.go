package audit

import (
	"context"
	"time"
)

// Category groups audit events by the subsystem that emitted them.
type Category string

const (
	// CategoryAction marks events emitted by action handlers.
	CategoryAction Category = "action"

	// CategoryRegistry marks events emitted by policy registry writes.
	CategoryRegistry Category = "registry"

	// CategorySchema marks events emitted by field schema writes.
	CategorySchema Category = "schema"
)

// Event is one audit record. Details carries structured, event-specific
// parameters (action kind, destination, outcome, error text).
type Event struct {
	// ID is the record identifier (UUID v4), assigned by the recorder.
	ID string `json:"id"`

	// DocumentID is the document the event concerns, empty for registry events.
	DocumentID string `json:"document_id,omitempty"`

	// UserID is the acting or owning user.
	UserID string `json:"user_id,omitempty"`

	// Category groups the event by emitting subsystem.
	Category Category `json:"category"`

	// Title is a short human-readable label ("rename executed", "webhook failed").
	Title string `json:"title"`

	// Details carries structured event parameters.
	Details map[string]any `json:"details,omitempty"`

	// CreatedAt is when the event was emitted (not when it was persisted).
	CreatedAt time.Time `json:"created_at"`
}

// Sink accepts audit events. Implementations must be safe for concurrent use
// and must never block the caller on storage latency; failures are theirs to
// log and swallow.
type Sink interface {
	Record(ctx context.Context, event *Event)
}

// Storage persists audit events. Implementations live in the storage
// subpackage.
type Storage interface {
	// Store persists one event.
	Store(ctx context.Context, event *Event) error

	// ListByDocument returns events for a document, newest first, up to limit.
	ListByDocument(ctx context.Context, documentID string, limit int) ([]*Event, error)

	// DeleteBefore removes events created before cutoff and returns the
	// number deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the total number of stored events.
	Count(ctx context.Context) (int64, error)

	// Close releases the backend's resources.
	Close() error
}

// Discard is a Sink that drops every event. It is the default when auditing
// is disabled.
type Discard struct{}

// Record implements Sink.
func (Discard) Record(ctx context.Context, event *Event) {}
