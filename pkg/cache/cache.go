// Package cache provides pluggable byte-oriented caching for bulk API
// manifests. Backends share one interface so the metadata source does not
// care whether entries live on disk, in Redis, or nowhere at all.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
