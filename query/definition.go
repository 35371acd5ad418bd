package query

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"go.uber.org/zap"
)

// Meta is what a fetch function gets besides its context.
type Meta struct {
	Params url.Values
	Client *cache.Client
	Key    cache.Key
	Extra  map[string]any
}

// FetchFunc performs the network read for one payload.
type FetchFunc[T any] func(ctx context.Context, meta Meta) (T, error)

// Definition is a reusable read: how a payload maps to a cache key and to the
// function that loads it. It is immutable and safe for concurrent use.
type Definition[P, T any] struct {
	env            *Env
	keyResolver    func(P) cache.Key
	fetchResolver  func(P) FetchFunc[T]
	placeholder    T
	hasPlaceholder bool
}

// New creates a definition. keyResolver must be pure: equal payloads must
// give equal keys, so that they share one cache entry.
func New[P, T any](env *Env, keyResolver func(P) cache.Key, fetchResolver func(P) FetchFunc[T], opts ...DefinitionOption[T]) *Definition[P, T] {
	if env == nil || env.Cache == nil {
		panic("query: env with a cache client is required")
	}
	if keyResolver == nil || fetchResolver == nil {
		panic("query: key and fetch resolvers are required")
	}

	var o definitionOptions[T]
	for _, opt := range opts {
		opt(&o)
	}
	return &Definition[P, T]{
		env:            env,
		keyResolver:    keyResolver,
		fetchResolver:  fetchResolver,
		placeholder:    o.placeholder,
		hasPlaceholder: o.hasPlaceholder,
	}
}

// Key resolves the cache key of payload.
func (d *Definition[P, T]) Key(payload P) cache.Key {
	return d.keyResolver(payload)
}

// Use mounts an observer for payload and runs its first execution.
// Close the observer when done so the entry can be collected.
func (d *Definition[P, T]) Use(ctx context.Context, payload P, opts ...Option[T]) *Observer[P, T] {
	o := d.newObserver(payload, opts)
	o.release = d.env.Cache.Observe(o.key)
	o.unsubscribe = d.env.Cache.Subscribe(o.key, o.entryUpdated)
	if o.settings.enabled {
		o.execute(ctx, false)
	}
	return o
}

// Fetch runs a single execution for payload without keeping an observer.
func (d *Definition[P, T]) Fetch(ctx context.Context, payload P, opts ...Option[T]) Result[T] {
	return d.newObserver(payload, opts).execute(ctx, false)
}

// Invalidate marks the entry for payload, and those under its key, so that
// the next read refetches. No observer is needed.
func (d *Definition[P, T]) Invalidate(ctx context.Context, payload P) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := d.Key(payload)
	n := d.env.Cache.Invalidate(ctx, key)
	d.env.Logger.DebugCtx(ctx, "query invalidated", zap.Stringer("key", key), zap.Int("entries", n))
	return nil
}

// decode turns entry data into T. Hydrated entries hold cache.Raw.
func (d *Definition[P, T]) decode(st cache.State) (T, bool, error) {
	var zero T
	if !st.HasData() {
		return zero, false, nil
	}
	if st.Data == nil {
		return zero, true, nil
	}
	if raw, ok := st.Data.(cache.Raw); ok {
		var v T
		if err := d.env.Cache.Decode(raw, &v); err != nil {
			return zero, false, ErrInternal.Wrap(err)
		}
		return v, true, nil
	}
	v, ok := st.Data.(T)
	if !ok {
		return zero, false, ErrInternal.WithMsgf("cached data for %s is %T, not %T", st.Key, st.Data, zero)
	}
	return v, true, nil
}

// classify leaves HTTP, network and cancellation errors alone and wraps
// everything else in ErrInternal. The bool reports whether it wrapped.
func classify(err error) (error, bool) {
	if err == nil {
		return nil, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err, false
	}
	if errors.Is(err, ErrInternal) || httpclient.Classify(err) != httpclient.KindInternal {
		return err, false
	}
	return ErrInternal.Wrap(err), true
}

func spanName(key cache.Key) string {
	if len(key) == 0 {
		return "query"
	}
	return fmt.Sprintf("query %v", key[0])
}
