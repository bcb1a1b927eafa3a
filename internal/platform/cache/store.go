package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchwatch/internal/platform/resilience"
)

// Entry is a cached value together with the moment it was stored and how long it stays fresh.
// A zero TTL never expires.
type Entry[T any] struct {
	Value    T             `json:"value"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

func (e Entry[T]) ExpiresAt() time.Time {
	if e.TTL <= 0 {
		return time.Time{}
	}
	return e.StoredAt.Add(e.TTL)
}

func (e Entry[T]) FreshAt(now time.Time) bool {
	if e.TTL <= 0 {
		return true
	}
	return now.Before(e.ExpiresAt())
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry[any]
	ttl     time.Duration
	flight  resilience.SingleFlight
	now     func() time.Time
}

// NewStore creates a store whose Set uses ttl. A zero ttl keeps entries until deleted,
// which is what per-cycle caches want.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]Entry[any]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests and by callers restoring persisted entries.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.FreshAt(s.now()) {
		s.mu.Lock()
		if current, still := s.entries[key]; still && current.StoredAt.Equal(e.StoredAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return e.Value, true
}

// GetEntry returns the fresh entry for key with its storage metadata.
func (s *Store) GetEntry(ctx context.Context, key string) (Entry[any], bool) {
	value, ok := s.Get(ctx, key)
	if !ok {
		return Entry[any]{}, false
	}
	s.mu.RLock()
	e, still := s.entries[key]
	s.mu.RUnlock()
	if !still {
		return Entry[any]{Value: value, StoredAt: s.now()}, true
	}
	return e, true
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *Store) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = Entry[any]{
		Value:    value,
		StoredAt: s.now(),
		TTL:      ttl,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns the fresh entries sorted by key.
func (s *Store) Snapshot() map[string]Entry[any] {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]Entry[any], len(keys))
	for _, key := range keys {
		e := s.entries[key]
		if !e.FreshAt(now) {
			continue
		}
		out[key] = e
	}
	return out
}

// Restore loads previously persisted entries, dropping the ones that are no longer fresh.
func (s *Store) Restore(entries map[string]Entry[any]) int {
	now := s.now()
	restored := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range entries {
		if key == "" || !e.FreshAt(now) {
			continue
		}
		s.entries[key] = e
		restored++
	}
	return restored
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	return s.GetOrLoadWithTTL(ctx, key, s.ttl, loader)
}

// GetOrLoadWithTTL collapses concurrent loads of one key into a single loader call.
// Loader errors are not cached.
func (s *Store) GetOrLoadWithTTL(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.SetWithTTL(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
