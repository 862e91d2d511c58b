package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalUploader implements Uploader over a local base directory. It exists
// for development and tests, where a cloud bucket is unavailable.
type LocalUploader struct {
	baseDir string
}

// NewLocalUploader creates an uploader rooted at baseDir.
func NewLocalUploader(baseDir string) *LocalUploader {
	return &LocalUploader{baseDir: baseDir}
}

// Provider returns "local".
func (u *LocalUploader) Provider() string {
	return "local"
}

// Upload copies the file under baseDir/userID/folder/name.
func (u *LocalUploader) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	name := req.DesiredName
	if name == "" {
		name = filepath.Base(req.LocalPath)
	}

	destDir := filepath.Join(u.baseDir, req.UserID, StripScheme(req.Folder))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, NewUploadError("local", req.LocalPath, err)
	}
	destPath := filepath.Join(destDir, name)

	src, err := os.Open(req.LocalPath)
	if err != nil {
		return nil, NewUploadError("local", req.LocalPath, err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return nil, NewUploadError("local", req.LocalPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, NewUploadError("local", req.LocalPath, err)
	}

	return &UploadResult{
		Provider: "local",
		FileID:   destPath,
		Link:     fmt.Sprintf("file://%s", destPath),
	}, nil
}
