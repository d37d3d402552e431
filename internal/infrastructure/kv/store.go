// Package kv provides the best-effort key-value store the ledger persists
// into. A durable Medium is used when it works; otherwise values live in
// process memory for the rest of the session.
package kv

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/pkg/metrics"
)

const probeKey = "__storage_test__"

// Medium is a durable backend that may fail.
type Medium interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Store implements ports.KVStore on top of an optional Medium.
type Store struct {
	medium Medium
	prefix string
	log    zerolog.Logger

	probe   sync.Once
	durable bool

	mu     sync.RWMutex
	memory map[string]string
	dirty  map[string]struct{}
}

// NewStore wraps medium. A nil medium yields a memory-only store. Every key
// is stored under prefix.
func NewStore(medium Medium, prefix string, log zerolog.Logger) *Store {
	return &Store{
		medium: medium,
		prefix: prefix,
		log:    log,
		memory: make(map[string]string),
		dirty:  make(map[string]struct{}),
	}
}

// Durable reports whether writes currently target the durable medium. It
// triggers the availability probe.
func (s *Store) Durable(ctx context.Context) bool {
	s.ensureProbed(ctx)
	return s.durable
}

// ensureProbed checks the medium once with a harmless write/delete. A failure
// disables the medium for the lifetime of the Store.
func (s *Store) ensureProbed(ctx context.Context) {
	s.probe.Do(func() {
		if s.medium == nil {
			return
		}
		if err := s.medium.Set(ctx, s.prefix+probeKey, probeKey); err != nil {
			s.log.Warn().Err(err).Msg("storage medium unavailable, using memory store")
			metrics.KVFallbackTotal.WithLabelValues("probe").Inc()
			return
		}
		if err := s.medium.Remove(ctx, s.prefix+probeKey); err != nil {
			s.log.Warn().Err(err).Msg("storage medium unavailable, using memory store")
			metrics.KVFallbackTotal.WithLabelValues("probe").Inc()
			return
		}
		s.durable = true
	})
}

// Get absorbs medium read failures by answering from memory.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("storage get failed, reading memory store")
		metrics.KVFallbackTotal.WithLabelValues("get").Inc()
		return s.memGet(s.prefix + key)
	}
	return v, ok
}

// Lookup reads key and reports a medium failure instead of a miss. Keys whose
// last write or removal only reached memory are answered from memory.
func (s *Store) Lookup(ctx context.Context, key string) (string, bool, error) {
	s.ensureProbed(ctx)
	k := s.prefix + key
	if !s.durable || s.isDirty(k) {
		v, ok := s.memGet(k)
		return v, ok, nil
	}
	v, ok, err := s.medium.Get(ctx, k)
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", k, err)
	}
	return v, ok, nil
}

// Set writes to the medium. When that fails the value is kept in memory and
// the key stays memory-backed until a later durable write succeeds.
func (s *Store) Set(ctx context.Context, key, value string) {
	s.ensureProbed(ctx)
	k := s.prefix + key
	if s.durable {
		err := s.medium.Set(ctx, k, value)
		if err == nil {
			s.mu.Lock()
			delete(s.memory, k)
			delete(s.dirty, k)
			s.mu.Unlock()
			return
		}
		s.log.Warn().Err(err).Str("key", k).Msg("storage set failed, using memory store")
		metrics.KVFallbackTotal.WithLabelValues("set").Inc()
	}
	s.mu.Lock()
	s.memory[k] = value
	if s.durable {
		s.dirty[k] = struct{}{}
	}
	s.mu.Unlock()
}

// Remove deletes key everywhere. A failed medium delete leaves a memory
// tombstone so the stale durable value is not read back.
func (s *Store) Remove(ctx context.Context, key string) {
	s.ensureProbed(ctx)
	k := s.prefix + key
	tombstone := false
	if s.durable {
		if err := s.medium.Remove(ctx, k); err != nil {
			s.log.Debug().Err(err).Str("key", k).Msg("storage remove failed")
			tombstone = true
		}
	}
	s.mu.Lock()
	delete(s.memory, k)
	if tombstone {
		s.dirty[k] = struct{}{}
	} else {
		delete(s.dirty, k)
	}
	s.mu.Unlock()
}

func (s *Store) isDirty(k string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dirty[k]
	return ok
}

func (s *Store) memGet(k string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.memory[k]
	return v, ok
}
