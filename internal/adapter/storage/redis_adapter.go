package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/port"
)

const redisKeyPrefix = "storefront:"

type RedisAdapter struct {
	client *redis.Client
	prefix string
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client, prefix: redisKeyPrefix}
}

// WithPrefix namespaces keys, e.g. per browsing profile.
func (r *RedisAdapter) WithPrefix(prefix string) *RedisAdapter {
	return &RedisAdapter{client: r.client, prefix: prefix}
}

func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
