package storage

import (
	"context"
	"io"
)

// ObjectClient uploads an object and returns its public URL.
type ObjectClient interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
