// Package cache stores generated narratives and coordinates analysis runs across processes.
// Every implementation degrades to a pass-through: a cache failure never fails the caller.
package cache

import (
	"context"
	"time"
)

// DefaultTTL applies when a caller passes a non-positive TTL to SetJSON.
const DefaultTTL = 10 * time.Minute

// DefaultLockTTL applies when a caller passes a non-positive TTL to SetIfNotExists.
const DefaultLockTTL = 30 * time.Second

// Cache is a JSON key/value store with expiring entries.
type Cache interface {
	// GetJSON decodes the value at key into out. It reports false on a miss.
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPattern removes every key matching a glob such as "skillgap:7:*".
	DeleteByPattern(ctx context.Context, pattern string) error
	// SetIfNotExists stores value only when key is absent. A bypassed cache
	// reports true so callers proceed without distributed coordination.
	SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// DeleteIfValue removes key only while it still holds value, as written by
	// SetIfNotExists. It reports whether the key was removed.
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
}

// Nop is a Cache that stores nothing.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }
func (Nop) DeleteByPattern(context.Context, string) error { return nil }
func (Nop) SetIfNotExists(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}
func (Nop) DeleteIfValue(context.Context, string, string) (bool, error) { return true, nil }
