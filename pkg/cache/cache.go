package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when no value is stored under the key.
var ErrCacheMiss = errors.New("cache miss")

// Store defines the key-value persistence used for rates, rate metadata and
// user preferences. Values are opaque JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
