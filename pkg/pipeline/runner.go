package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paperflow-hq/paperflow/pkg/audit"
	"paperflow-hq/paperflow/pkg/derive"
	"paperflow-hq/paperflow/pkg/policy"
)

// Handler executes one action kind. Implementations live in the actions
// subpackage and must be safe for concurrent use.
type Handler interface {
	// Kind returns the action kind this handler dispatches on.
	Kind() policy.ActionKind

	// Execute runs the action against the given context.
	Execute(ctx context.Context, ec *ExecContext) *ActionResult
}

// Metrics receives pipeline observations. Satisfied by
// telemetry/metrics.PipelineMetrics; nil disables recording.
type Metrics interface {
	RecordAction(kind string, success bool, duration time.Duration)
	RecordRun(policyID string, success bool, duration time.Duration)
}

// RunRequest describes one pipeline run: a matched policy applied to one
// document's extracted data and current file location.
type RunRequest struct {
	Policy     *policy.Policy
	Data       map[string]any
	File       FileState
	UserID     string
	DocumentID string

	// Store is the caller's authenticated store handle; may be nil, in
	// which case location updates fall back to the runner's elevated store.
	Store DocumentStore
}

// RunResult is the outcome of a pipeline run. File always reflects the
// document's final on-disk location, including renames performed before a
// later action failed.
type RunResult struct {
	Success bool              `json:"success"`
	File    FileState         `json:"file"`
	Trace   []TraceEvent      `json:"trace,omitempty"`
	Outputs map[string]string `json:"outputs,omitempty"`
	Log     []string          `json:"log,omitempty"`

	// FailedKind and Err identify the first failing action; both are zero
	// on success.
	FailedKind policy.ActionKind `json:"failed_kind,omitempty"`
	Err        error             `json:"-"`
}

// Runner executes a policy's ordered action list against one document. It
// derives the variable map once per run, threads file state and outputs
// through the handlers, and halts on the first failure. Every executed
// action, successful or not, is recorded through the audit sink.
type Runner struct {
	handlers map[policy.ActionKind]Handler
	elevated DocumentStore
	sink     audit.Sink
	metrics  Metrics
	logger   *slog.Logger
}

// NewRunner creates a runner dispatching to the given handlers. elevated is
// the system store used to persist location changes when the request carries
// no store of its own; sink and metrics may be nil.
func NewRunner(handlers []Handler, elevated DocumentStore, sink audit.Sink, m Metrics) *Runner {
	byKind := make(map[policy.ActionKind]Handler, len(handlers))
	for _, h := range handlers {
		byKind[h.Kind()] = h
	}
	if sink == nil {
		sink = audit.Discard{}
	}
	return &Runner{
		handlers: byKind,
		elevated: elevated,
		sink:     sink,
		metrics:  m,
		logger:   slog.Default().With("component", "pipeline"),
	}
}

// Run executes req.Policy's actions in declaration order. The returned
// result is never nil.
func (r *Runner) Run(ctx context.Context, req *RunRequest) *RunResult {
	start := time.Now()
	res := &RunResult{
		Success: true,
		File:    req.File,
		Outputs: make(map[string]string),
	}
	if req.Policy == nil {
		res.Success = false
		res.Err = fmt.Errorf("pipeline: nil policy")
		return res
	}

	vars := derive.Variables(req.Data, req.Policy.Spec.Extract)

	for _, action := range req.Policy.Spec.Actions {
		kind := action.Kind
		if kind == policy.ActionMove {
			// Legacy alias kept for old policy documents.
			kind = policy.ActionRename
		}
		handler, ok := r.handlers[kind]
		if !ok {
			res.Success = false
			res.FailedKind = action.Kind
			res.Err = fmt.Errorf("pipeline: no handler for action kind %q", action.Kind)
			res.Trace = append(res.Trace, NewTraceEvent("action_skipped", map[string]any{
				"kind":  string(action.Kind),
				"error": res.Err.Error(),
			}))
			break
		}

		ec := &ExecContext{
			Action:     action,
			Data:       req.Data,
			File:       res.File,
			Vars:       vars,
			Outputs:    res.Outputs,
			UserID:     req.UserID,
			DocumentID: req.DocumentID,
			Store:      req.Store,
		}

		actionStart := time.Now()
		ar := handler.Execute(ctx, ec)
		if ar == nil {
			ar = Fail(fmt.Errorf("pipeline: handler %q returned nil result", kind), nil)
		}
		if r.metrics != nil {
			r.metrics.RecordAction(string(kind), ar.Success, time.Since(actionStart))
		}

		res.Trace = append(res.Trace, ar.Trace...)
		if ar.Log != "" {
			res.Log = append(res.Log, ar.Log)
		}
		for k, v := range ar.Outputs {
			res.Outputs[k] = v
		}
		if ar.NewFile != nil {
			res.File = *ar.NewFile
			r.persistLocation(ctx, req, res.File)
		}

		r.recordAudit(ctx, req, kind, ar)

		if !ar.Success {
			res.Success = false
			res.FailedKind = action.Kind
			res.Err = ar.Err
			details := map[string]any{"kind": string(action.Kind)}
			if ar.Err != nil {
				details["error"] = ar.Err.Error()
			}
			for k, v := range ar.ErrDetails {
				details[k] = v
			}
			res.Trace = append(res.Trace, NewTraceEvent("action_failed", details))
			r.logger.Warn("action failed",
				"policy_id", req.Policy.PolicyID,
				"document_id", req.DocumentID,
				"kind", string(action.Kind),
				"error", ar.Err)
			break
		}
	}

	if r.metrics != nil {
		r.metrics.RecordRun(req.Policy.PolicyID, res.Success, time.Since(start))
	}
	return res
}

// persistLocation writes the document's new location through the request's
// store, falling back to the runner's elevated store. Persistence failures
// are logged, not fatal: the file move already happened on disk.
func (r *Runner) persistLocation(ctx context.Context, req *RunRequest, file FileState) {
	store := req.Store
	if store == nil {
		store = r.elevated
	}
	if store == nil || req.DocumentID == "" {
		return
	}
	if err := store.UpdateDocumentLocation(ctx, req.UserID, req.DocumentID, file.Path, file.Name); err != nil {
		r.logger.Warn("failed to persist document location",
			"document_id", req.DocumentID,
			"path", file.Path,
			"error", err)
	}
}

func (r *Runner) recordAudit(ctx context.Context, req *RunRequest, kind policy.ActionKind, ar *ActionResult) {
	title := fmt.Sprintf("%s executed", kind)
	details := map[string]any{
		"policy_id": req.Policy.PolicyID,
		"kind":      string(kind),
		"success":   ar.Success,
	}
	if ar.Log != "" {
		details["summary"] = ar.Log
	}
	if !ar.Success {
		title = fmt.Sprintf("%s failed", kind)
		if ar.Err != nil {
			details["error"] = ar.Err.Error()
		}
		for k, v := range ar.ErrDetails {
			details[k] = v
		}
	}
	r.sink.Record(ctx, &audit.Event{
		DocumentID: req.DocumentID,
		UserID:     req.UserID,
		Category:   audit.CategoryAction,
		Title:      title,
		Details:    details,
	})
}
