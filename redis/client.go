// Package redis opens the go-redis client used by the redis-backed stores.
package redis

import (
	"context"

	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// NewClient connects to redis and pings it. Cluster mode returns a
// *redis.ClusterClient, standalone a *redis.Client.
func NewClient(ctx context.Context, cfg Config, log *logger.CtxZapLogger) (redis.UniversalClient, error) {
	if log == nil {
		log = logger.GetLogger("redis")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	if cfg.Mode == ModeCluster {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.Addrs,
			Password:     cfg.Password,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Addrs[0],
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, ErrConnect.Wrap(err).WithMsgf("ping %v failed", cfg.Addrs)
	}

	if cfg.MetricsEnabled {
		hook, err := NewMetricsHook(otel.Meter("redis"))
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		client.AddHook(hook)
	}

	log.DebugCtx(ctx, "redis connected",
		zap.String("mode", cfg.Mode),
		zap.Strings("addrs", cfg.Addrs))
	return client, nil
}
