package planning

import (
	"context"
	"time"
)

// Locker grants short-lived exclusive locks by key.
type Locker interface {
	// TryLock returns acquired=false without error when another holder owns
	// the key. The returned release func is nil unless acquired.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// ObjectStorage stores export files.
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}
