// Package cache provides a small byte cache with Redis and in-memory backends.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss indicates the key is not cached or has expired.
var ErrMiss = errors.New("cache miss")

// Cache stores opaque values under string keys.
type Cache interface {
	// Get returns ErrMiss when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value. A zero ttl stores without expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error
}
