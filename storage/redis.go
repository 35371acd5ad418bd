package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisChange struct {
	Key    string  `json:"key"`
	Value  *string `json:"value"`
	Origin string  `json:"origin"`
}

// RedisStore keeps values in redis and announces writes on a pub/sub
// channel, so contexts on different machines see each other's changes.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	channel   string
	origin    string
	logger    *logger.CtxZapLogger
}

// NewRedisStore creates a context over client. The client is owned by the caller.
func NewRedisStore(client redis.UniversalClient, keyPrefix string, log *logger.CtxZapLogger) *RedisStore {
	if log == nil {
		log = logger.GetLogger("storage")
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		channel:   keyPrefix + "changes",
		origin:    uuid.NewString(),
		logger:    log,
	}
}

func (s *RedisStore) Origin() string {
	return s.origin
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, ErrRead.Wrap(err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return ErrWrite.Wrap(err)
	}
	return s.publish(ctx, redisChange{Key: key, Value: strPtr(value), Origin: s.origin})
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return ErrWrite.Wrap(err)
	}
	if n == 0 {
		return nil
	}
	return s.publish(ctx, redisChange{Key: key, Origin: s.origin})
}

func (s *RedisStore) publish(ctx context.Context, change redisChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return ErrWrite.Wrap(err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return ErrWrite.Wrap(err)
	}
	return nil
}

// Subscribe returns once the channel subscription is confirmed, so writes
// made after it returns are never missed. The unsubscribe function waits for
// the delivery goroutine and must not be called from handler.
func (s *RedisStore) Subscribe(handler Handler) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := s.client.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, ErrSubscribe.Wrap(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range pubsub.Channel() {
			var change redisChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				s.logger.WarnCtx(ctx, "malformed storage change", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if change.Origin == s.origin {
				continue
			}
			handler(ctx, Change{Key: change.Key, Value: change.Value, Origin: change.Origin})
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
			wg.Wait()
		})
	}, nil
}
