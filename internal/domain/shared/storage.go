package shared

import (
	"context"
	"time"
)

// ObjectStorage stores opaque documents such as scanned delivery notes
type ObjectStorage interface {
	// Put writes data under key, replacing any existing object
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Delete removes the object under key. A missing object is not an error.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited download URL for key
	PresignGet(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
}
