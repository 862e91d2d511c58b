package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSUploader implements Uploader over a Google Cloud Storage bucket.
// Objects are written with a DoesNotExist precondition so that reruns of the
// same pipeline never clobber an earlier upload.
type GCSUploader struct {
	client *storage.Client
	bucket string
	logger *slog.Logger
}

// NewGCSUploader creates an uploader over the named bucket.
func NewGCSUploader(ctx context.Context, bucket string) (*GCSUploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket must be provided")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSUploader{
		client: client,
		bucket: bucket,
		logger: slog.Default().With("component", "remote.gcs"),
	}, nil
}

// Provider returns "gcs".
func (u *GCSUploader) Provider() string {
	return "gcs"
}

// Upload writes the file to the bucket under folder/name. An object that
// already exists is treated as success: uploads are idempotent per
// destination, matching rerunnable pipeline semantics.
func (u *GCSUploader) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	name := req.DesiredName
	if name == "" {
		name = filepath.Base(req.LocalPath)
	}
	objectName := path.Join(req.UserID, StripScheme(req.Folder), name)

	f, err := os.Open(req.LocalPath)
	if err != nil {
		return nil, NewUploadError("gcs", req.LocalPath, err)
	}
	defer f.Close()

	writer := u.client.Bucket(u.bucket).
		Object(objectName).
		If(storage.Conditions{DoesNotExist: true}).
		NewWriter(ctx)

	if _, err := io.Copy(writer, f); err != nil {
		_ = writer.Close()
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			u.logger.Info("object already exists, skipping upload",
				"object", objectName,
			)
			return u.result(objectName), nil
		}
		return nil, NewUploadError("gcs", req.LocalPath, err)
	}

	if err := writer.Close(); err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			u.logger.Info("object already exists, skipping upload",
				"object", objectName,
			)
			return u.result(objectName), nil
		}
		return nil, NewUploadError("gcs", req.LocalPath, err)
	}

	u.logger.Info("file uploaded",
		"object", objectName,
		"bucket", u.bucket,
	)
	return u.result(objectName), nil
}

func (u *GCSUploader) result(objectName string) *UploadResult {
	return &UploadResult{
		Provider: "gcs",
		FileID:   objectName,
		Link:     fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, objectName),
	}
}

// Close releases the underlying client.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}
