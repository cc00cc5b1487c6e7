package model

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process. Nothing survives a restart, so it
// fits tests and throwaway sessions.
type MemoryStore struct {
	items *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.items.Set(key, stored, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Close() error {
	s.items.Flush()
	return nil
}
