// Package cache stores laid out scenes and rendered artifacts between runs.
//
// Two backends are provided: [FileCache] for the CLI and server, and
// [NullCache] when caching is disabled. Keys are built by a [Keyer] from
// content hashes and the options that affect the output, so a changed input
// file or a changed geometry never hits a stale entry.
//
//	c, err := cache.NewFileCache(dir)
//	k := cache.NewDefaultKeyer()
//	key := k.SceneKey(cache.Hash(input), cache.SceneKeyOpts{LaneWidth: 48, RowHeight: 100})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as hit == false
	// with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Entry lifetimes.
const (
	// TTLScene is how long a laid out scene is kept.
	TTLScene = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered PNG, SVG and DOT output is kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// Lookup is Get with misses reported as [ErrCacheMiss].
func Lookup(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, ErrCacheMiss
	}
	return data, nil
}
