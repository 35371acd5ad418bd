package cache

import (
	"context"
	"time"
)

// ChainStore layers stores, fastest first. A hit in a lower layer is copied
// into the layers above it.
type ChainStore struct {
	name     string
	stores   []Store
	backfill time.Duration
}

func NewChainStore(name string, stores ...Store) *ChainStore {
	return &ChainStore{
		name:     name,
		stores:   stores,
		backfill: time.Minute,
	}
}

func (s *ChainStore) Name() string {
	return s.name
}

func (s *ChainStore) Get(ctx context.Context, key string) ([]byte, error) {
	for i, store := range s.stores {
		value, err := store.Get(ctx, key)
		if err != nil {
			continue
		}
		for j := 0; j < i; j++ {
			_ = s.stores[j].Set(ctx, key, value, s.backfill)
		}
		return value, nil
	}
	return nil, ErrCacheMiss
}

func (s *ChainStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var lastErr error
	for _, store := range s.stores {
		if err := store.Set(ctx, key, value, ttl); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (s *ChainStore) Delete(ctx context.Context, key string) error {
	var lastErr error
	for _, store := range s.stores {
		if err := store.Delete(ctx, key); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (s *ChainStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	var lastErr error
	for _, store := range s.stores {
		if err := store.DeleteByPrefix(ctx, prefix); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (s *ChainStore) Exists(ctx context.Context, key string) bool {
	for _, store := range s.stores {
		if store.Exists(ctx, key) {
			return true
		}
	}
	return false
}

func (s *ChainStore) Close() error {
	var lastErr error
	for _, store := range s.stores {
		if err := store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
