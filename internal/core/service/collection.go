package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
	"github.com/lumina-ai/studio/internal/pkg/metrics"
)

// Persisted key names, before the store's prefix is applied.
const (
	keyUsers        = "users"
	keyTransactions = "transactions"
	keySession      = "session"
)

// loadCollection decodes the JSON value under key. An absent key yields
// fallback. A value that does not parse is logged, removed from the store,
// and also yields fallback; the caller never sees the corruption. A value
// that cannot be read is ErrStorageUnavailable, so callers never write back a
// collection they did not actually load.
func loadCollection[T any](ctx context.Context, store ports.KVStore, key string, fallback T, log zerolog.Logger) (T, error) {
	raw, ok, err := store.Lookup(ctx, key)
	if err != nil {
		return fallback, fmt.Errorf("load %s: %w: %w", key, domain.ErrStorageUnavailable, err)
	}
	if !ok || raw == "" {
		return fallback, nil
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Error().Err(err).Str("key", key).Msg("discarding corrupted persisted value")
		metrics.KVCorruptTotal.WithLabelValues(key).Inc()
		store.Remove(ctx, key)
		return fallback, nil
	}
	return out, nil
}

// saveCollection writes v as JSON under key.
func saveCollection(ctx context.Context, store ports.KVStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	store.Set(ctx, key, string(b))
	return nil
}
