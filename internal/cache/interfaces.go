// Package cache holds short-lived copies of encoded snapshots and validation
// results in front of the snapshot store.
package cache

import (
	"context"
	"time"
)

// Cache is implemented by MemoryCache and RedisCache.
type Cache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl. A ttl of zero keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// GetOrSet returns the cached value or stores the result of fn. A failing
	// fn stores nothing.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Clear drops every entry owned by this cache.
	Clear(ctx context.Context) error

	Close() error
}

type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)

// Key namespaces used by the services.
const (
	SnapshotPrefix   = "snapshot:"
	ValidationPrefix = "validation:"
)
