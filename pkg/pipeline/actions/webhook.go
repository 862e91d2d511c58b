package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paperflow-hq/paperflow/pkg/pipeline"
	"paperflow-hq/paperflow/pkg/policy"
)

// DefaultWebhookTimeout bounds a single webhook POST.
const DefaultWebhookTimeout = 10 * time.Second

// Webhook POSTs an interpolated JSON payload to an interpolated URL.
// Fire-and-record: the response status is not inspected and there are no
// retries, but the payload must parse as JSON after interpolation.
type Webhook struct {
	// Client is the HTTP client to use; nil falls back to a client with
	// DefaultWebhookTimeout.
	Client *http.Client
}

// Kind implements pipeline.Handler.
func (Webhook) Kind() policy.ActionKind { return policy.ActionWebhook }

// Execute implements pipeline.Handler.
func (w Webhook) Execute(ctx context.Context, ec *pipeline.ExecContext) *pipeline.ActionResult {
	urlTemplate := ec.Action.ConfigString("url")
	if urlTemplate == "" {
		return pipeline.Fail(policy.NewValidationError("url", "webhook action requires a url"), nil)
	}
	payloadTemplate := ec.Action.ConfigString("payload")
	if payloadTemplate == "" {
		return pipeline.Fail(policy.NewValidationError("payload", "webhook action requires a payload"), nil)
	}

	url := interpolate(ec, urlTemplate)
	payload := interpolate(ec, payloadTemplate)

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return pipeline.Fail(policy.NewValidationError("payload", fmt.Sprintf("invalid JSON payload: %v", err)), map[string]any{
			"payload": payload,
		})
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultWebhookTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(payload)))
	if err != nil {
		return pipeline.Fail(fmt.Errorf("build webhook request: %w", err), map[string]any{"url": url})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return pipeline.Fail(fmt.Errorf("post webhook to %q: %w", url, err), map[string]any{"url": url})
	}
	resp.Body.Close()

	return pipeline.Succeed(
		fmt.Sprintf("webhook posted to %s", url),
		pipeline.NewTraceEvent("webhook", map[string]any{
			"url":    url,
			"status": resp.StatusCode,
		}),
	)
}
