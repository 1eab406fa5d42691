// Package cache provides pluggable caching for registry HTTP responses.
//
// The Cache interface abstracts over storage backends: a file cache for
// CLI usage, an in-memory cache for tests and one-shot runs, a Redis
// cache for server deployments, and a null cache that disables caching.
//
// This cache is distinct from the run-scoped vulnerability cache owned
// by the analysis engine; entries here persist across runs subject to
// their TTL.
package cache

import (
	"context"
	"time"
)

// Cache stores raw response bytes keyed by string.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found
	// and fresh; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
