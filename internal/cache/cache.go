// Package cache holds short-lived per-session state and the locks that
// serialize mutations to it.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

type Store interface {
	// Get decodes the value at key into dest, or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// AcquireLock sets key to value only if key is absent.
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// ExtendLock resets the ttl of key only while it still holds value.
	ExtendLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// ReleaseLock deletes key only while it still holds value.
	ReleaseLock(ctx context.Context, key, value string) error
	Close() error
}
