package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// ObjectMeta describes the object being uploaded.
type ObjectMeta struct {
	ContentType  string
	CacheControl string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, meta ObjectMeta, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
