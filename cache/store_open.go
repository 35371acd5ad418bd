package cache

import (
	"github.com/redis/go-redis/v9"
)

// OpenStore builds the snapshot store selected by cfg.Persist; a nil Store
// means no persistence. rdb is required by the redis and chain types.
func OpenStore(cfg Config, rdb redis.UniversalClient) (Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Persist.Type {
	case StoreMemory:
		return NewMemoryStore(StoreMemory, cfg.Persist.MaxSize, cfg.GCTime), nil
	case StoreRedis, StoreChain:
		if rdb == nil {
			return nil, ErrConfigInvalid.WithMsgf("persist type %s needs a redis client", cfg.Persist.Type)
		}
		remote := NewRedisStore(StoreRedis, rdb, cfg.Persist.KeyPrefix)
		if cfg.Persist.Type == StoreRedis {
			return remote, nil
		}
		return NewChainStore(StoreChain, NewMemoryStore(StoreMemory, cfg.Persist.MaxSize, cfg.GCTime), remote), nil
	default:
		return nil, nil
	}
}
