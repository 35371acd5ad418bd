// Package app wires the cohort console client: configuration, logging,
// durable storage, session, API client, query cache and the cohort
// definitions, resolved through a samber/do container.
package app

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"github.com/Vayras/admin-frontend-sub001/cohort"
	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/query"
	"github.com/Vayras/admin-frontend-sub001/session"
	"github.com/Vayras/admin-frontend-sub001/telemetry"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// App owns every long-lived component of the client.
type App struct {
	cfg      Config
	injector *do.RootScope
	logger   *logger.CtxZapLogger
	opts     options

	mu      sync.Mutex
	closers []closer
	closed  bool
}

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

type options struct {
	navigator   session.Navigator
	httpOptions []httpclient.Option
	noGC        bool
	traceOut    io.Writer
}

type Option func(*options)

// WithNavigator is told when a rejected token ends the session.
func WithNavigator(n session.Navigator) Option {
	return func(o *options) { o.navigator = n }
}

// WithHTTPOptions are appended to the options derived from Config.HTTP.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(o *options) { o.httpOptions = append(o.httpOptions, opts...) }
}

// WithTelemetryWriter redirects the stdout telemetry exporters, which write
// to stderr by default.
func WithTelemetryWriter(w io.Writer) Option {
	return func(o *options) { o.traceOut = w }
}

// WithoutGC skips the background cache collection job, for short-lived commands.
func WithoutGC() Option {
	return func(o *options) { o.noGC = true }
}

// New validates cfg, registers the providers and resolves the session and
// the cache eagerly so that configuration errors surface here. ctx bounds
// the background work (session sync, cache GC) as well as startup.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		injector: do.New(),
	}
	for _, opt := range opts {
		opt(&a.opts)
	}

	logs := logger.InitManager(cfg.Logger)
	a.logger = logs.GetLogger("app")
	do.ProvideValue(a.injector, logs)
	a.onClose("logger", func(context.Context) error {
		logs.CloseAll()
		return nil
	})

	a.registerProviders(ctx)

	// before anything that creates tracers or meters
	if _, err := do.Invoke[*telemetry.Manager](a.injector); err != nil {
		_ = a.Shutdown(ctx)
		return nil, ErrInit.Wrap(err).WithMsg("telemetry setup failed")
	}
	if _, err := do.Invoke[*session.Manager](a.injector); err != nil {
		_ = a.Shutdown(ctx)
		return nil, ErrInit.Wrap(err).WithMsg("session setup failed")
	}
	if _, err := do.Invoke[*cache.Client](a.injector); err != nil {
		_ = a.Shutdown(ctx)
		return nil, ErrInit.Wrap(err).WithMsg("cache setup failed")
	}

	a.logger.DebugCtx(ctx, "app ready",
		zap.String("api", cfg.HTTP.BaseURL),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("cache_store", cfg.Cache.Persist.Type))
	return a, nil
}

func (a *App) onClose(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	a.closers = append(a.closers, closer{name: name, fn: fn})
	a.mu.Unlock()
}

func (a *App) Config() Config { return a.cfg }

func (a *App) Injector() do.Injector { return a.injector }

func (a *App) Logger() *logger.CtxZapLogger { return a.logger }

func (a *App) Session() *session.Manager { return do.MustInvoke[*session.Manager](a.injector) }

func (a *App) Cache() *cache.Client { return do.MustInvoke[*cache.Client](a.injector) }

func (a *App) Env() *query.Env { return do.MustInvoke[*query.Env](a.injector) }

func (a *App) API() *cohort.API { return do.MustInvoke[*cohort.API](a.injector) }

func (a *App) Queries() *cohort.Queries { return do.MustInvoke[*cohort.Queries](a.injector) }

func (a *App) Mutations() *cohort.Mutations { return do.MustInvoke[*cohort.Mutations](a.injector) }

// Shutdown closes the components in reverse creation order. Later calls are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(ctx); err != nil {
			a.logger.WarnCtx(ctx, "close component failed", zap.String("component", c.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if c.name != "logger" {
			a.logger.DebugCtx(ctx, "component closed", zap.String("component", c.name))
		}
	}
	// the closers above already released every resource the container built
	_ = a.injector.Shutdown()
	return errors.Join(errs...)
}
