package query

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Result is what an execution reports.
type Result[T any] struct {
	Data  T
	Error error

	Status cache.Status

	// IsLoading is true only while the first fetch of the key is in flight
	// and the observer is enabled. A refetch over cached data shows up in
	// IsFetching alone, and stale or missing data never makes it true.
	IsLoading bool

	IsFetching    bool
	IsStale       bool
	IsPlaceholder bool
	UpdatedAt     time.Time
}

// Observer is a mounted read for one payload.
type Observer[P, T any] struct {
	def      *Definition[P, T]
	payload  P
	key      cache.Key
	settings settings[T]

	release     func()
	unsubscribe func()
	closed      atomic.Bool

	mu      sync.Mutex
	enabled bool
	last    T
	lastAt  time.Time
	hasLast bool
}

func (d *Definition[P, T]) newObserver(payload P, opts []Option[T]) *Observer[P, T] {
	s := newSettings(opts)
	o := &Observer[P, T]{
		def:      d,
		payload:  payload,
		key:      d.Key(payload),
		settings: s,
		enabled:  s.enabled,
	}

	// data already cached is the baseline for change detection
	if st, ok := d.env.Cache.Peek(o.key); ok && st.Err == nil && !st.Hydrated {
		if v, ok, err := d.decode(st); ok && err == nil {
			o.last, o.lastAt, o.hasLast = v, st.UpdatedAt, true
		}
	}
	return o
}

func (o *Observer[P, T]) Key() cache.Key {
	return o.key
}

func (o *Observer[P, T]) Payload() P {
	return o.payload
}

// Result reports the current state of the entry without fetching.
func (o *Observer[P, T]) Result() Result[T] {
	st, _ := o.def.env.Cache.Peek(o.key)
	return o.resultFrom(st)
}

// Refetch fetches again even when the cached data is fresh. It joins a fetch
// already in flight. A disabled observer does not fetch.
func (o *Observer[P, T]) Refetch(ctx context.Context) Result[T] {
	if o.closed.Load() {
		res := o.Result()
		res.Error = ErrClosed
		return res
	}
	return o.execute(ctx, true)
}

// SetEnabled switches the observer on or off. Switching it on executes.
func (o *Observer[P, T]) SetEnabled(ctx context.Context, enabled bool) Result[T] {
	o.mu.Lock()
	was := o.enabled
	o.enabled = enabled
	o.mu.Unlock()

	if enabled && !was && !o.closed.Load() {
		return o.execute(ctx, false)
	}
	return o.Result()
}

// ResetQuery drops the cached state of the key, and of keys under it, then
// fetches again. It returns the error of that fetch.
func (o *Observer[P, T]) ResetQuery(ctx context.Context) error {
	if o.closed.Load() {
		return ErrClosed
	}
	n := o.def.env.Cache.Reset(ctx, o.key)
	o.def.env.Logger.DebugCtx(ctx, "query reset", zap.Stringer("key", o.key), zap.Int("entries", n))
	if !o.isEnabled() {
		return nil
	}
	return o.execute(ctx, false).Error
}

// Close detaches the observer. It may be called more than once.
func (o *Observer[P, T]) Close() {
	if !o.closed.CompareAndSwap(false, true) {
		return
	}
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
	if o.release != nil {
		o.release()
	}
}

func (o *Observer[P, T]) isEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enabled
}

func (o *Observer[P, T]) execute(ctx context.Context, force bool) Result[T] {
	if !o.isEnabled() {
		return o.Result()
	}

	env := o.def.env
	ctx, span := env.Tracer.Start(ctx, spanName(o.key),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("query.key", o.key.String())),
	)
	defer span.End()

	meta := Meta{
		Params: env.params(),
		Client: env.Cache,
		Key:    o.key,
		Extra:  o.settings.meta,
	}
	fetch := o.def.fetchResolver(o.payload)
	opts := o.settings.cacheOpts
	if force {
		opts = append(slices.Clone(opts), cache.Force())
	}

	st, err := env.Cache.Fetch(ctx, o.key, func(ctx context.Context) (any, error) {
		return fetch(ctx, meta)
	}, opts...)

	res := o.resultFrom(st)
	if err != nil {
		err = o.fail(ctx, err)
		res.Error = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res
	}
	if res.Error != nil {
		span.SetStatus(codes.Error, res.Error.Error())
		return res
	}

	span.SetStatus(codes.Ok, "")
	o.observe(ctx, st)
	return res
}

// fail runs the error chain: session handling first, then the caller.
func (o *Observer[P, T]) fail(ctx context.Context, err error) error {
	env := o.def.env
	if env.Session != nil {
		env.Session.HandleError(ctx, err)
	}

	err, internal := classify(err)
	if internal {
		env.Logger.ErrorCtx(ctx, "query failed with an unclassified error", zap.Stringer("key", o.key), zap.Error(err))
	} else {
		env.Logger.DebugCtx(ctx, "query failed", zap.Stringer("key", o.key), zap.Error(err))
	}

	if o.settings.onError != nil {
		o.settings.onError(err)
	}
	return err
}

func (o *Observer[P, T]) entryUpdated(ctx context.Context, st cache.State) {
	if o.closed.Load() || !o.isEnabled() {
		return
	}
	o.observe(ctx, st)
}

// observe compares fresh data with what the observer saw last.
func (o *Observer[P, T]) observe(ctx context.Context, st cache.State) {
	if st.Err != nil || st.Hydrated || !st.HasData() {
		return
	}
	data, ok, err := o.def.decode(st)
	if !ok || err != nil {
		return
	}

	o.mu.Lock()
	if o.hasLast && st.UpdatedAt.Before(o.lastAt) {
		o.mu.Unlock()
		return
	}
	old, had := o.last, o.hasLast
	o.last, o.lastAt, o.hasLast = data, st.UpdatedAt, true
	o.mu.Unlock()

	if !had || o.settings.onDataChanged == nil || reflect.DeepEqual(old, data) {
		return
	}
	o.def.env.Logger.DebugCtx(ctx, "query data changed", zap.Stringer("key", o.key))
	o.settings.onDataChanged(data, old)
}

func (o *Observer[P, T]) resultFrom(st cache.State) Result[T] {
	enabled := o.isEnabled()
	res := Result[T]{
		Status:     st.Status,
		IsLoading:  enabled && st.IsFetching() && !st.HasData(),
		IsFetching: st.IsFetching(),
		IsStale:    o.def.env.Cache.Stale(st, o.settings.cacheOpts...),
		UpdatedAt:  st.UpdatedAt,
	}
	res.Error, _ = classify(st.Err)
	if !enabled {
		return res
	}

	data, ok, err := o.def.decode(st)
	if err != nil && res.Error == nil {
		res.Error = err
	}
	switch {
	case ok:
		res.Data = data
	case o.def.hasPlaceholder:
		res.Data = o.def.placeholder
		res.IsPlaceholder = true
	}
	return res
}
