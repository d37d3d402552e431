package kv

import (
	"context"
	"sync"
	"time"
)

// InFlightGuard is the process-local ports.InFlightGuard used when Redis is
// not configured. Held keys expire after ttl so a crashed handler cannot pin
// a key forever.
type InFlightGuard struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	held map[string]time.Time
}

func NewInFlightGuard(ttl time.Duration) *InFlightGuard {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &InFlightGuard{ttl: ttl, now: time.Now, held: make(map[string]time.Time)}
}

func (g *InFlightGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if exp, ok := g.held[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.held[key] = now.Add(g.ttl)
	return true, nil
}

func (g *InFlightGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
	return nil
}
