package actions

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"paperflow-hq/paperflow/pkg/derive"
	"paperflow-hq/paperflow/pkg/pipeline"
)

// interpolate expands {name} placeholders against the execution context's
// variables, accumulated outputs, and raw data, in that order.
func interpolate(ec *pipeline.ExecContext, template string) string {
	return derive.Interpolate(template, ec.Lookup)
}

// resolveCopyName picks the filename for a copied file. A configured
// "filename" directive goes through the filename resolver; absent that, a
// legacy "pattern" config is treated as an interpolation template; absent
// both, the original name is kept.
func resolveCopyName(ec *pipeline.ExecContext) string {
	if directive := ec.Action.ConfigString("filename"); directive != "" {
		return derive.ResolveFilename(directive, ec.Vars, ec.File.Stem(), ec.File.Ext(), ec.Data)
	}
	if pattern := ec.Action.ConfigString("pattern"); pattern != "" {
		return derive.EnsureExtension(interpolate(ec, pattern), ec.File.Ext())
	}
	return ec.File.Name
}

// copyFile copies src to dst, creating dst's directory when absent. The
// destination is truncated if it already exists.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy contents: %w", err)
	}
	return out.Close()
}
