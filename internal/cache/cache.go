// Package cache provides the TTL-bounded snapshot cache used for
// authenticated-identity lookups.
//
// The cache is not authoritative and has no invalidation hook: an entry
// may be stale up to its TTL. Both operations are explicit so the
// storage-skip optimization stays swappable without touching resolver
// logic.
package cache

import "context"

// Cache stores serialized snapshots under string keys with a fixed TTL
// chosen at construction.
type Cache interface {
	// TryGet returns the cached value and whether it was present. A miss
	// is not an error.
	TryGet(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key for the configured TTL. Writes are
	// idempotent for a fixed TTL window.
	Put(ctx context.Context, key string, value []byte) error
}
