package app

import (
	"context"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/Vayras/admin-frontend-sub001/event"
	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/query"
	"github.com/Vayras/admin-frontend-sub001/redis"
	"github.com/Vayras/admin-frontend-sub001/session"
	"github.com/Vayras/admin-frontend-sub001/storage"
	"github.com/Vayras/admin-frontend-sub001/telemetry"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// registerProviders registers every component lazily, by dependency layer.
func (a *App) registerProviders(ctx context.Context) {
	// infrastructure
	do.Provide(a.injector, a.provideTelemetry(ctx))
	do.Provide(a.injector, a.provideDispatcher)
	do.Provide(a.injector, a.provideRedis(ctx))
	do.Provide(a.injector, a.provideStorage)

	// session and transport
	do.Provide(a.injector, a.provideSession(ctx))
	do.Provide(a.injector, a.provideHTTPClient)

	// query layer
	do.Provide(a.injector, a.provideCache(ctx))
	do.Provide(a.injector, a.provideEnv)

	// domain
	do.Provide(a.injector, provideAPI)
	do.Provide(a.injector, provideQueries)
	do.Provide(a.injector, provideMutations)
}

func (a *App) moduleLogger(i do.Injector, module string) *logger.CtxZapLogger {
	return do.MustInvoke[*logger.Manager](i).GetLogger(module)
}

func (a *App) provideTelemetry(ctx context.Context) func(do.Injector) (*telemetry.Manager, error) {
	return func(i do.Injector) (*telemetry.Manager, error) {
		m := telemetry.NewManager(a.cfg.Telemetry, a.moduleLogger(i, "telemetry"), telemetry.WithWriter(a.opts.traceOut))
		if err := m.Start(ctx); err != nil {
			return nil, err
		}
		a.onClose("telemetry", m.Shutdown)
		return m, nil
	}
}

func (a *App) provideDispatcher(i do.Injector) (event.Dispatcher, error) {
	// listeners run inside cache fetches; a panic must not take the process down
	opts := append(a.cfg.Event.Options(), event.WithRecover(), event.WithLogger(a.moduleLogger(i, "event")))
	d := event.NewDispatcher(opts...)
	a.onClose("event", func(context.Context) error {
		d.Close()
		return nil
	})
	return d, nil
}

// provideRedis returns a nil client when no component is redis backed.
func (a *App) provideRedis(ctx context.Context) func(do.Injector) (goredis.UniversalClient, error) {
	return func(i do.Injector) (goredis.UniversalClient, error) {
		if !a.cfg.NeedsRedis() {
			return nil, nil
		}
		client, err := redis.NewClient(ctx, a.cfg.Redis, a.moduleLogger(i, "redis"))
		if err != nil {
			return nil, err
		}
		a.onClose("redis", func(context.Context) error { return client.Close() })
		return client, nil
	}
}

func (a *App) provideStorage(i do.Injector) (storage.Store, error) {
	rdb, err := do.Invoke[goredis.UniversalClient](i)
	if err != nil {
		return nil, err
	}
	dispatcher, err := do.Invoke[event.Dispatcher](i)
	if err != nil {
		return nil, err
	}
	return storage.Open(a.cfg.Storage, rdb, dispatcher, a.moduleLogger(i, "storage"))
}

// provideSession restores the persisted token and follows changes made by
// other processes sharing the store.
func (a *App) provideSession(ctx context.Context) func(do.Injector) (*session.Manager, error) {
	return func(i do.Injector) (*session.Manager, error) {
		store, err := do.Invoke[storage.Store](i)
		if err != nil {
			return nil, err
		}

		opts := []session.Option{session.WithLogger(a.moduleLogger(i, "session"))}
		if a.opts.navigator != nil {
			opts = append(opts, session.WithNavigator(a.opts.navigator))
		}
		m := session.NewManager(store, opts...)

		if _, err := m.Restore(ctx); err != nil {
			return nil, err
		}
		if err := m.Start(ctx); err != nil {
			return nil, err
		}
		a.onClose("session", func(context.Context) error {
			m.Close()
			return nil
		})
		return m, nil
	}
}

func (a *App) provideHTTPClient(i do.Injector) (*httpclient.Client, error) {
	sess, err := do.Invoke[*session.Manager](i)
	if err != nil {
		return nil, err
	}
	opts := append(a.cfg.HTTP.Options(),
		httpclient.WithTokenSource(sess.BearerToken),
		httpclient.WithLogger(a.moduleLogger(i, "httpclient")),
	)
	return httpclient.NewClient(append(opts, a.opts.httpOptions...)...), nil
}

func (a *App) provideCache(ctx context.Context) func(do.Injector) (*cache.Client, error) {
	return func(i do.Injector) (*cache.Client, error) {
		rdb, err := do.Invoke[goredis.UniversalClient](i)
		if err != nil {
			return nil, err
		}
		dispatcher, err := do.Invoke[event.Dispatcher](i)
		if err != nil {
			return nil, err
		}
		store, err := cache.OpenStore(a.cfg.Cache, rdb)
		if err != nil {
			return nil, err
		}

		log := a.moduleLogger(i, "cache")
		opts := []cache.Option{cache.WithLogger(log), cache.WithDispatcher(dispatcher)}
		if store != nil {
			opts = append(opts, cache.WithStore(store))
		}
		c, err := cache.NewClient(a.cfg.Cache, opts...)
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, err
		}
		a.onClose("cache", func(context.Context) error { return c.Close() })

		if !a.opts.noGC {
			if err := c.StartGC(ctx); err != nil {
				log.WarnCtx(ctx, "cache gc not started", zap.Error(err))
			}
		}
		return c, nil
	}
}

func (a *App) provideEnv(i do.Injector) (*query.Env, error) {
	c, err := do.Invoke[*cache.Client](i)
	if err != nil {
		return nil, err
	}
	sess, err := do.Invoke[*session.Manager](i)
	if err != nil {
		return nil, err
	}
	return query.NewEnv(c, sess, a.moduleLogger(i, "query")), nil
}

func provideAPI(i do.Injector) (*cohort.API, error) {
	client, err := do.Invoke[*httpclient.Client](i)
	if err != nil {
		return nil, err
	}
	return cohort.NewAPI(client), nil
}

func provideQueries(i do.Injector) (*cohort.Queries, error) {
	env, err := do.Invoke[*query.Env](i)
	if err != nil {
		return nil, err
	}
	api, err := do.Invoke[*cohort.API](i)
	if err != nil {
		return nil, err
	}
	return cohort.NewQueries(env, api), nil
}

func provideMutations(i do.Injector) (*cohort.Mutations, error) {
	env, err := do.Invoke[*query.Env](i)
	if err != nil {
		return nil, err
	}
	api, err := do.Invoke[*cohort.API](i)
	if err != nil {
		return nil, err
	}
	queries, err := do.Invoke[*cohort.Queries](i)
	if err != nil {
		return nil, err
	}
	return cohort.NewMutations(env, api, queries), nil
}
