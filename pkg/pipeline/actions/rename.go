package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"paperflow-hq/paperflow/pkg/derive"
	"paperflow-hq/paperflow/pkg/pipeline"
	"paperflow-hq/paperflow/pkg/policy"
)

// Rename renames the document in place using a configured {variable}
// pattern. The original extension is always preserved.
type Rename struct{}

// Kind implements pipeline.Handler.
func (Rename) Kind() policy.ActionKind { return policy.ActionRename }

// Execute implements pipeline.Handler.
func (Rename) Execute(ctx context.Context, ec *pipeline.ExecContext) *pipeline.ActionResult {
	pattern := ec.Action.ConfigString("pattern")
	if pattern == "" {
		return pipeline.Fail(policy.NewValidationError("pattern", "rename action requires a pattern"), nil)
	}
	name := derive.EnsureExtension(interpolate(ec, pattern), ec.File.Ext())
	return renameTo(ec, name)
}

// AutoRename renames the document using the automatic
// date_issuer_doctype[_amount] synthesis, ignoring any configured pattern.
type AutoRename struct{}

// Kind implements pipeline.Handler.
func (AutoRename) Kind() policy.ActionKind { return policy.ActionAutoRename }

// Execute implements pipeline.Handler.
func (AutoRename) Execute(ctx context.Context, ec *pipeline.ExecContext) *pipeline.ActionResult {
	name := derive.ResolveFilename(derive.ModeAuto, ec.Vars, ec.File.Stem(), ec.File.Ext(), ec.Data)
	return renameTo(ec, name)
}

// renameTo moves the file to name within its current directory and reports
// the new file state. Renaming to the current name is a no-op success.
func renameTo(ec *pipeline.ExecContext, name string) *pipeline.ActionResult {
	if name == ec.File.Name {
		return pipeline.Succeed(fmt.Sprintf("name already %q, nothing to do", name))
	}
	newPath := filepath.Join(ec.File.Dir(), name)
	if err := os.Rename(ec.File.Path, newPath); err != nil {
		return pipeline.Fail(fmt.Errorf("rename %q to %q: %w", ec.File.Name, name, err), map[string]any{
			"from": ec.File.Path,
			"to":   newPath,
		})
	}
	res := pipeline.Succeed(
		fmt.Sprintf("renamed %q to %q", ec.File.Name, name),
		pipeline.NewTraceEvent("rename", map[string]any{
			"from": ec.File.Name,
			"to":   name,
			"path": newPath,
		}),
	)
	return res.WithNewFile(newPath, name)
}
