// Package storage defines the compare-and-set key/value contract the
// limiter uses to persist per-caller window stats, plus concrete
// backends (memory, Redis, Postgres) implementing it.
package storage

import (
	"context"
	"time"
)

// Backend is the persistence contract the coordinator commits stats
// through. All values travel as strings so every backend can compare
// them without backend-specific encoding knowledge; the caller
// (freecalls.Coordinator) owns serialization of the stats vector.
type Backend interface {
	// Get returns the value stored at key, or "" if absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Set unconditionally stores value at key with the given TTL. A
	// zero TTL means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// CheckAndSet stores newValue at key only if the current value
	// equals oldValue (an empty oldValue means "only if absent or
	// expired"). It returns false, nil — not an error — when the
	// compare fails; callers re-read and retry under their own
	// contention policy.
	CheckAndSet(ctx context.Context, key string, oldValue, newValue string, ttl time.Duration) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
