package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const inFlightTTL = 2 * time.Minute

// InFlightGuard rejects concurrent duplicates of the same request key.
// Key format: inflight:<key>
type InFlightGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInFlightGuard creates an InFlightGuard wrapping the given Redis client.
func NewInFlightGuard(client *redis.Client) *InFlightGuard {
	return &InFlightGuard{client: client, ttl: inFlightTTL}
}

// Acquire marks key as in flight. It returns false when another request holds it.
func (g *InFlightGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("inflight acquire: %w", err)
	}
	return ok, nil
}

// Release frees key (it also expires on its own after the TTL).
func (g *InFlightGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.key(key)).Err()
}

func (g *InFlightGuard) key(key string) string {
	return "inflight:" + key
}
