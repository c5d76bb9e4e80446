package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/jellydator/ttlcache/v2"
)

// MemoryStore keeps values in process memory. Everything is lost on restart
// which logs out every user, so it's meant for development and single
// instance deployments
type MemoryStore struct {
	s *persist.MemoryStore
}

func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{s: persist.NewMemoryStore(defaultTTL)}
}

func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if err := m.s.Set(key, value, ttl); err != nil {
		return fmt.Errorf("failed to set key %s, %w", key, err)
	}

	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	var v string
	if err := m.s.Get(key, &v); err != nil {
		if errors.Is(err, persist.ErrCacheMiss) || errors.Is(err, ttlcache.ErrNotFound) {
			return "", ErrMiss
		}

		return "", fmt.Errorf("failed to get key %s, %w", key, err)
	}

	return v, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	err := m.s.Delete(key)
	if err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
		return fmt.Errorf("failed to delete key %s, %w", key, err)
	}

	return nil
}

func (m *MemoryStore) Close() error {
	return m.s.Cache.Close()
}
