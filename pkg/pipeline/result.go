package pipeline

// ActionResult is what a single handler execution produced. Handlers return
// it instead of mutating the ExecContext; the runner threads NewFile and
// Outputs into subsequent actions.
type ActionResult struct {
	// Success reports whether the action completed.
	Success bool

	// NewFile, when set, is the document's post-action location. The runner
	// adopts it as the current file state for the rest of the run and
	// persists it through the document store.
	NewFile *FileState

	// Log is a human-readable one-line summary for the run log.
	Log string

	// Trace holds the trace events emitted by the action, in order.
	Trace []TraceEvent

	// Outputs are named values exposed to later actions and to the caller
	// (for example a remote link or an uploaded file id).
	Outputs map[string]string

	// Err is the failure, nil on success.
	Err error

	// ErrDetails carries structured context about the failure for the
	// trace and the audit record.
	ErrDetails map[string]any
}

// Succeed builds a successful result with a log line and optional trace
// events.
func Succeed(log string, trace ...TraceEvent) *ActionResult {
	return &ActionResult{Success: true, Log: log, Trace: trace}
}

// Fail builds a failed result carrying the error and optional structured
// details.
func Fail(err error, details map[string]any) *ActionResult {
	return &ActionResult{Success: false, Err: err, ErrDetails: details}
}

// WithOutputs attaches named outputs and returns the same result.
func (r *ActionResult) WithOutputs(outputs map[string]string) *ActionResult {
	r.Outputs = outputs
	return r
}

// WithNewFile records the post-action file location and returns the same
// result.
func (r *ActionResult) WithNewFile(path, name string) *ActionResult {
	r.NewFile = &FileState{Path: path, Name: name}
	return r
}
