package blob

import (
	"context"
	"io"
)

// Store holds binary objects addressed by key
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the public location of key
	URL(key string) string
}
