// Package remote provides the remote storage upload collaborator used by the
// copy_to_remote action (and the copy action's legacy scheme-prefix branch).
package remote

import (
	"context"
	"fmt"
	"strings"
)

// SchemePrefix is the reserved destination prefix that routes a copy action
// to remote storage instead of the local filesystem.
const SchemePrefix = "remote://"

// HasScheme reports whether a destination uses the remote storage scheme.
func HasScheme(destination string) bool {
	return strings.HasPrefix(destination, SchemePrefix)
}

// StripScheme removes the remote storage scheme prefix from a destination.
func StripScheme(destination string) string {
	return strings.TrimPrefix(destination, SchemePrefix)
}

// UploadRequest describes one file upload.
type UploadRequest struct {
	// UserID is the owning user.
	UserID string

	// LocalPath is the file to upload.
	LocalPath string

	// Folder is an optional remote folder reference.
	Folder string

	// DesiredName overrides the uploaded object's name when non-empty.
	DesiredName string
}

// UploadResult describes a completed upload.
type UploadResult struct {
	// Provider is the uploader's provider name ("gcs", "local").
	Provider string

	// FileID identifies the uploaded object within the provider.
	FileID string

	// Link is a shareable reference to the uploaded object.
	Link string
}

// Uploader uploads files to remote storage. The pipeline treats any returned
// error as a pipeline-stopping failure for that action.
type Uploader interface {
	// Upload transfers the file described by req.
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// Provider returns the uploader's provider name.
	Provider() string
}

// UploadError represents a failed upload.
type UploadError struct {
	Provider string
	Path     string
	Cause    error
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed [provider=%s, path=%s]: %v", e.Provider, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *UploadError) Unwrap() error {
	return e.Cause
}

// NewUploadError creates a new UploadError.
func NewUploadError(provider, path string, cause error) *UploadError {
	return &UploadError{Provider: provider, Path: path, Cause: cause}
}
