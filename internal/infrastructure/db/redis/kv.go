package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Medium stores key-value records as plain Redis strings without expiry.
type Medium struct {
	client *redis.Client
}

// NewMedium wraps the given Redis client as a kv.Medium.
func NewMedium(client *redis.Client) *Medium {
	return &Medium{client: client}
}

func (m *Medium) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := m.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (m *Medium) Set(ctx context.Context, key, value string) error {
	if err := m.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (m *Medium) Remove(ctx context.Context, key string) error {
	return m.client.Del(ctx, key).Err()
}

// Ping reports whether Redis is reachable.
func (m *Medium) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}
