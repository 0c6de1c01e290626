package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores values as redis strings with an optional expiry.
type RedisKV struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisKV wraps a redis client. Keys are namespaced under "pitaya:".
func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, prefix: "pitaya:", ttl: ttl}
}

func (r *RedisKV) key(k string) string { return r.prefix + k }

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	return data, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("session: redis delete: %w", err)
	}
	return nil
}

var _ KV = (*RedisKV)(nil)
