package storage

import (
	"github.com/Vayras/admin-frontend-sub001/event"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/redis/go-redis/v9"
)

// Open builds the store selected by cfg. rdb is only used by the redis driver;
// dispatcher carries the memory driver's change feed and may be nil.
func Open(cfg Config, rdb redis.UniversalClient, dispatcher event.Dispatcher, log *logger.CtxZapLogger) (Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverRedis:
		if rdb == nil {
			return nil, ErrConfigInvalid.WithMsg("redis client is required for the redis driver")
		}
		return NewRedisStore(rdb, cfg.KeyPrefix, log), nil
	case DriverMemory:
		return NewMemoryBackend(dispatcher).Tab(), nil
	default:
		return NewFileStore(cfg.Path, log)
	}
}
