package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, returning ErrCacheMiss for absent keys
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}

// Cache key namespaces shared by the cached adapters and invalidation
const (
	// CacheKeySnapshotPrefix prefixes cached candidate populations
	CacheKeySnapshotPrefix = "therapists:snapshot:"
	// CacheKeyProfilePrefix prefixes single cached profiles
	CacheKeyProfilePrefix = "therapists:profile:"
	// CacheKeyMatchPrefix prefixes cached match and filter-option results
	CacheKeyMatchPrefix = "match:result:"
)
