package storage

import (
	"context"
	"io"
)

// ObjectStorage is a flat key/value blob store that can hand out public URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// GetURL returns the public URL of key. It does not check existence.
	GetURL(key string) string
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
