package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"paperflow-hq/paperflow/pkg/derive"
	"paperflow-hq/paperflow/pkg/policy"
)

// FileState is a file's current location: full path on disk plus base name.
type FileState struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Stem returns the file name without its extension.
func (f FileState) Stem() string {
	return strings.TrimSuffix(f.Name, f.Ext())
}

// Ext returns the file extension including the leading dot.
func (f FileState) Ext() string {
	return filepath.Ext(f.Name)
}

// Dir returns the directory containing the file.
func (f FileState) Dir() string {
	return filepath.Dir(f.Path)
}

// DocumentStore is the one storage write the pipeline needs: persisting a
// renamed or moved file's location back to the durable ingestion record.
// A nil store is tolerated; the runner's elevated store takes over.
type DocumentStore interface {
	UpdateDocumentLocation(ctx context.Context, userID, documentID, path, name string) error
}

// ExecContext is the execution context for one action invocation. It is
// created by the runner per action and must be treated as read-only by
// handlers; all mutation flows back through the ActionResult.
type ExecContext struct {
	// Action is the action to execute, including its configuration bag.
	Action policy.ActionSpec

	// Data is the raw extracted-data map.
	Data map[string]any

	// File is the document's current location, reflecting any rename or
	// move performed by earlier actions in the same run.
	File FileState

	// Vars is the derived variable map.
	Vars map[string]string

	// Outputs accumulates the named outputs of prior actions in this run.
	Outputs map[string]string

	// UserID is the owning user.
	UserID string

	// DocumentID is the document/ingestion identifier.
	DocumentID string

	// Store is the caller's authenticated store handle; may be nil.
	Store DocumentStore
}

// Lookup resolves a template placeholder name against, in order, the derived
// variables, accumulated action outputs, and the raw extracted data.
func (ec *ExecContext) Lookup(name string) (string, bool) {
	if v, ok := ec.Vars[name]; ok {
		return v, true
	}
	if v, ok := ec.Outputs[name]; ok {
		return v, true
	}
	if ec.Data != nil {
		if raw, ok := ec.Data[name]; ok && raw != nil {
			return derive.Stringify(raw), true
		}
	}
	return "", false
}

// TraceEvent is one step in the ordered per-run trace returned to the
// immediate caller.
type TraceEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Step      string         `json:"step"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewTraceEvent creates a trace event stamped with the current time.
func NewTraceEvent(step string, details map[string]any) TraceEvent {
	return TraceEvent{
		Timestamp: time.Now().UTC(),
		Step:      step,
		Details:   details,
	}
}
