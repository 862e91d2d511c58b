package actions

import (
	"context"
	"fmt"
	"path/filepath"

	"paperflow-hq/paperflow/pkg/pipeline"
	"paperflow-hq/paperflow/pkg/policy"
	"paperflow-hq/paperflow/pkg/remote"
)

// Copy duplicates the document to a configured destination. A destination
// with the remote:// prefix is routed to the remote uploader (legacy policy
// documents predate the dedicated copy_to_remote kind); anything else is a
// local filesystem copy.
type Copy struct {
	// Uploader serves remote:// destinations; nil disables them.
	Uploader remote.Uploader
}

// Kind implements pipeline.Handler.
func (Copy) Kind() policy.ActionKind { return policy.ActionCopy }

// Execute implements pipeline.Handler.
func (c Copy) Execute(ctx context.Context, ec *pipeline.ExecContext) *pipeline.ActionResult {
	destination := ec.Action.ConfigString("destination")
	if destination == "" {
		return pipeline.Fail(policy.NewValidationError("destination", "copy action requires a destination"), nil)
	}
	if remote.HasScheme(destination) {
		return uploadTo(ctx, c.Uploader, ec, destination)
	}

	name := resolveCopyName(ec)
	dst := filepath.Join(interpolate(ec, destination), name)
	if err := copyFile(ec.File.Path, dst); err != nil {
		return pipeline.Fail(fmt.Errorf("copy to %q: %w", dst, err), map[string]any{
			"destination": dst,
		})
	}
	res := pipeline.Succeed(
		fmt.Sprintf("copied %q to %q", ec.File.Name, dst),
		pipeline.NewTraceEvent("copy", map[string]any{
			"name":        name,
			"destination": dst,
		}),
	)
	return res.WithOutputs(map[string]string{
		"provider": "local",
		"path":     dst,
	})
}

// CopyToRemote uploads the document to remote storage as a first-class
// action. The destination config names the remote folder, with or without
// the remote:// prefix.
type CopyToRemote struct {
	Uploader remote.Uploader
}

// Kind implements pipeline.Handler.
func (CopyToRemote) Kind() policy.ActionKind { return policy.ActionCopyToRemote }

// Execute implements pipeline.Handler.
func (c CopyToRemote) Execute(ctx context.Context, ec *pipeline.ExecContext) *pipeline.ActionResult {
	destination := ec.Action.ConfigString("destination")
	if destination == "" {
		return pipeline.Fail(policy.NewValidationError("destination", "copy_to_remote action requires a destination"), nil)
	}
	return uploadTo(ctx, c.Uploader, ec, destination)
}

// uploadTo performs the shared remote branch of Copy and CopyToRemote.
func uploadTo(ctx context.Context, up remote.Uploader, ec *pipeline.ExecContext, destination string) *pipeline.ActionResult {
	if up == nil {
		return pipeline.Fail(fmt.Errorf("remote destination %q but no uploader configured", destination), nil)
	}
	folder := interpolate(ec, remote.StripScheme(destination))
	name := resolveCopyName(ec)

	result, err := up.Upload(ctx, remote.UploadRequest{
		UserID:      ec.UserID,
		LocalPath:   ec.File.Path,
		Folder:      folder,
		DesiredName: name,
	})
	if err != nil {
		return pipeline.Fail(fmt.Errorf("upload to %q: %w", folder, err), map[string]any{
			"folder": folder,
			"name":   name,
		})
	}
	res := pipeline.Succeed(
		fmt.Sprintf("uploaded %q to %s:%s", name, result.Provider, folder),
		pipeline.NewTraceEvent("remote_upload", map[string]any{
			"provider": result.Provider,
			"folder":   folder,
			"name":     name,
			"link":     result.Link,
		}),
	)
	return res.WithOutputs(map[string]string{
		"provider": result.Provider,
		"file_id":  result.FileID,
		"link":     result.Link,
	})
}
