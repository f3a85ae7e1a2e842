package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the
// invoice archive needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	UploadObject(ctx context.Context, key string, contentType string, size int64, data io.Reader) error
	DownloadObject(ctx context.Context, key string) (io.ReadCloser, error)
	// PresignedGetURL returns a time-limited URL for direct download.
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	RemoveObject(ctx context.Context, key string) error
}
