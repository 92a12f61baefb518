package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/fxwidget/pkg/cache"
	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements cache.Store using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore creates a new RedisStore from a redis:// URL.
func NewRedisStore(
	url string,
	prefix string,
	logger *slog.Logger,
) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStoreWithOptions(opt, prefix, logger), nil
}

// NewRedisStoreWithOptions creates a new RedisStore from redis.Options.
func NewRedisStoreWithOptions(
	opt *redis.Options,
	prefix string,
	logger *slog.Logger,
) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(opt)
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (r *RedisStore) key(key string) string {
	return r.prefix + key
}

// Ping verifies the connection, retrying a few times while Redis starts up.
func (r *RedisStore) Ping(ctx context.Context, attempts uint) error {
	// retry-go treats zero attempts as unlimited
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		func() error {
			return r.client.Ping(ctx).Err()
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("Redis ping failed, retrying", "attempt", n+1, "error", err)
		}),
	)
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis store miss", "key", key)
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		r.logger.Error("Redis store get error", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis store hit", "key", key)
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		r.logger.Error("Redis store set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis store set", "key", key, "bytes", len(value))
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Redis store delete error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis store delete", "key", key)
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ cache.Store = (*RedisStore)(nil)
