package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a size-bounded in-process store. Items expire after the
// store TTL or the per-call TTL, whichever comes first.
type MemoryStore struct {
	name string
	lru  *expirable.LRU[string, memoryItem]
	now  func() time.Time
}

// NewMemoryStore creates a store holding at most maxSize items for up to ttl.
func NewMemoryStore(name string, maxSize int, ttl time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		name: name,
		lru:  expirable.NewLRU[string, memoryItem](maxSize, nil, ttl),
		now:  time.Now,
	}
}

func (s *MemoryStore) Name() string {
	return s.name
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	item, ok := s.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && !s.now().Before(item.expiresAt) {
		s.lru.Remove(key)
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.lru.Add(key, item)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	for _, key := range s.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.lru.Remove(key)
		}
	}
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) bool {
	_, err := s.Get(ctx, key)
	return err == nil
}

// Len returns the number of items, expired ones not yet evicted included.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}

func (s *MemoryStore) Close() error {
	s.lru.Purge()
	return nil
}
