// Package audit provides the cross-cutting audit trail for pipeline runs.
//
// Every action handler emits one audit event per execution, success or
// failure, tagged with the owning document and user. Events are recorded
// through a Sink; the async Recorder implementation never blocks pipeline
// progress and discards events when its buffer is full rather than stalling
// a run.
//
// The audit trail is deliberately separate from the per-run trace returned
// to the immediate caller: the trace answers "what happened to this
// document just now", the audit trail answers "what has this system done"
// across documents and time.
//
// Subpackages:
//   - storage: memory and SQLite event storage backends
//   - retention: cron-scheduled pruning of old events
package audit
