// Package cache holds the key-value stores used for refresh tokens
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Store is a flat string key-value store. Set overwrites any previous value
// for the same key
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns ErrMiss if the key doesn't exist or has expired
	Get(ctx context.Context, key string) (string, error)
	// Delete is a no-op for keys that don't exist
	Delete(ctx context.Context, key string) error
	Close() error
}
