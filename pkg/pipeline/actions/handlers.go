package actions

import (
	"log/slog"
	"net/http"
	"time"

	"paperflow-hq/paperflow/pkg/pipeline"
	"paperflow-hq/paperflow/pkg/remote"
)

// Default returns the full built-in handler set. uploader may be nil, in
// which case remote destinations fail at execution time. webhookTimeout
// bounds each webhook POST; <= 0 selects DefaultWebhookTimeout.
func Default(uploader remote.Uploader, logger *slog.Logger, webhookTimeout time.Duration) []pipeline.Handler {
	if webhookTimeout <= 0 {
		webhookTimeout = DefaultWebhookTimeout
	}
	return []pipeline.Handler{
		Rename{},
		AutoRename{},
		Copy{Uploader: uploader},
		CopyToRemote{Uploader: uploader},
		&LogCSV{},
		Notify{Logger: logger},
		Webhook{Client: &http.Client{Timeout: webhookTimeout}},
	}
}
