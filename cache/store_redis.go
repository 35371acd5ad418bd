package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots in redis under keyPrefix.
type RedisStore struct {
	name      string
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore creates a redis store. The client is owned by the caller.
func NewRedisStore(name string, client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{
		name:      name,
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) Name() string {
	return s.name
}

func (s *RedisStore) buildKey(key string) string {
	return s.keyPrefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.Get(ctx, s.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, ErrStoreGet.Wrap(err)
	}
	return result, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.buildKey(key), value, ttl).Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.buildKey(key)).Err(); err != nil {
		return ErrStoreDelete.Wrap(err)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix, scanning in batches.
func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := escapeGlob(s.buildKey(prefix)) + "*"

	var cursor uint64
	var keys []string
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return ErrStoreDelete.Wrap(err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return ErrStoreDelete.Wrap(err)
		}
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) bool {
	n, err := s.client.Exists(ctx, s.buildKey(key)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Close is a no-op; the redis client is managed outside.
func (s *RedisStore) Close() error {
	return nil
}

// escapeGlob quotes the characters SCAN MATCH treats specially. Key hashes
// are JSON and routinely contain brackets.
func escapeGlob(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
