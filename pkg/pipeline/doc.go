// Package pipeline executes a policy's ordered action list against one
// document.
//
// The runner dispatches each action to its handler strictly in declared
// order. Handlers receive a read-only execution context and return an
// explicit result; when a result carries a new file location, the runner
// (not the handler) threads it into the context of the next action, so
// renames and moves stay durable across subsequent steps. Named outputs
// accumulate the same way and are visible to later handlers' template
// interpolation.
//
// The first failing action halts the run. Prior file-state mutations are
// not rolled back; callers receive the partial trace, the failing error,
// and the last known good file location.
package pipeline
