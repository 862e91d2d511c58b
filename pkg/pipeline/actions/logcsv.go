package actions

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"paperflow-hq/paperflow/pkg/pipeline"
	"paperflow-hq/paperflow/pkg/policy"
)

// LogCSV appends one row per run to a CSV ledger file. The "path" config is
// required; "columns" optionally names extra variables to record after the
// fixed timestamp, document-id, and filename columns. The header is written
// once when the file is created.
type LogCSV struct {
	mu sync.Mutex
}

// Kind implements pipeline.Handler.
func (*LogCSV) Kind() policy.ActionKind { return policy.ActionLogCSV }

// Execute implements pipeline.Handler.
func (l *LogCSV) Execute(ctx context.Context, ec *pipeline.ExecContext) *pipeline.ActionResult {
	path := ec.Action.ConfigString("path")
	if path == "" {
		return pipeline.Fail(policy.NewValidationError("path", "log_csv action requires a path"), nil)
	}
	path = interpolate(ec, path)

	var extra []string
	if cols := ec.Action.ConfigString("columns"); cols != "" {
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				extra = append(extra, c)
			}
		}
	}

	header := append([]string{"timestamp", "document_id", "name"}, extra...)
	row := []string{time.Now().UTC().Format(time.RFC3339), ec.DocumentID, ec.File.Name}
	for _, col := range extra {
		value, _ := ec.Lookup(col)
		row = append(row, value)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := appendRow(path, header, row); err != nil {
		return pipeline.Fail(fmt.Errorf("append csv row to %q: %w", path, err), map[string]any{
			"path": path,
		})
	}

	return pipeline.Succeed(
		fmt.Sprintf("logged %q to %s", ec.File.Name, path),
		pipeline.NewTraceEvent("log_csv", map[string]any{
			"path": path,
		}),
	)
}

// appendRow opens (or creates) the ledger and writes the row, prefixing the
// header when the file is new or empty.
func appendRow(path string, header, row []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
