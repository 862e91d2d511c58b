package actions

import (
	"context"
	"log/slog"

	"paperflow-hq/paperflow/pkg/pipeline"
	"paperflow-hq/paperflow/pkg/policy"
)

// Notify interpolates a configured message template and logs it. It exists
// so a policy can surface a human-readable line ("filed invoice from
// {issuer}") in the run log and trace without side effects.
type Notify struct {
	Logger *slog.Logger
}

// Kind implements pipeline.Handler.
func (Notify) Kind() policy.ActionKind { return policy.ActionNotify }

// Execute implements pipeline.Handler.
func (n Notify) Execute(ctx context.Context, ec *pipeline.ExecContext) *pipeline.ActionResult {
	template := ec.Action.ConfigString("message")
	if template == "" {
		return pipeline.Fail(policy.NewValidationError("message", "notify action requires a message"), nil)
	}
	message := interpolate(ec, template)

	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification",
		"document_id", ec.DocumentID,
		"message", message)

	return pipeline.Succeed(message, pipeline.NewTraceEvent("notify", map[string]any{
		"message": message,
	}))
}
