package ports

import "context"

// KVStore is string-keyed persistence whose reads and writes never fail from
// the caller's point of view. Storage faults are absorbed by the implementation.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool)
	// Lookup is Get for read-modify-write callers: a value that exists but
	// cannot be read right now is an error, never a miss.
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string)
	Remove(ctx context.Context, key string)
}

// InFlightGuard prevents the same request key from being processed twice concurrently.
type InFlightGuard interface {
	// Acquire returns false when key is already held.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
