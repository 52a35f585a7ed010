package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Store backed by patrickmn/go-cache.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates a store. defaultTTL applies when Set is called with a
// zero ttl; cleanupInterval is how often expired items are removed.
func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.store.Set(key, value, ttl)
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// Clear removes all items.
func (m *Memory) Clear() {
	m.store.Flush()
}

// ItemCount returns the number of items, including expired ones not yet
// cleaned up.
func (m *Memory) ItemCount() int {
	return m.store.ItemCount()
}

// Close implements Store.
func (m *Memory) Close() error {
	m.store.Flush()
	return nil
}
