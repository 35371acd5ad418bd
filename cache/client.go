// Package cache is the shared query cache: keyed entries with freshness,
// in-flight de-duplication, invalidation by key prefix, garbage collection
// of unobserved entries and optional snapshot persistence.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vayras/admin-frontend-sub001/event"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/retry"
	"github.com/go-co-op/gocron/v2"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// EventEntryUpdated is dispatched after every change to an entry.
const EventEntryUpdated = "cache.entry_updated"

// EntryUpdatedEvent carries the entry state after a change.
type EntryUpdatedEvent struct {
	event.BaseEvent
	State State
	hash  string
}

// FetchFunc loads the data for one key.
type FetchFunc func(ctx context.Context) (any, error)

// Raw is hydrated data still in its serialized form. Decode turns it into a value.
type Raw []byte

// Stats cache statistics
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Fetches       int64 `json:"fetches"`
	Dedup         int64 `json:"dedup"`
	Invalidations int64 `json:"invalidations"`
	Errors        int64 `json:"errors"`
	Entries       int   `json:"entries"`
}

// Client is the process-wide query cache.
type Client struct {
	cfg            Config
	mu             sync.Mutex
	entries        map[string]*entry
	nextGen        uint64
	group          singleflight.Group
	store          Store
	serializer     Serializer
	logger         *logger.CtxZapLogger
	dispatcher     event.Dispatcher
	ownsDispatcher bool
	metrics        *Metrics
	now            func() time.Time
	gcMu           sync.Mutex
	scheduler      gocron.Scheduler
	closed         atomic.Bool

	hits          atomic.Int64
	misses        atomic.Int64
	fetches       atomic.Int64
	dedup         atomic.Int64
	invalidations atomic.Int64
	errors        atomic.Int64
}

// NewClient creates a cache client. cfg is defaulted and validated.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:            cfg,
		entries:        make(map[string]*entry),
		serializer:     NewJSONSerializer(),
		logger:         logger.GetLogger("cache"),
		metrics:        NewMetrics(),
		now:            time.Now,
		ownsDispatcher: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.dispatcher == nil {
		c.dispatcher = event.NewDispatcher(
			event.WithSetAllSync(true),
			event.WithPoolSize(1),
			event.WithRecover(),
			event.WithLogger(c.logger),
		)
	}

	if cfg.MetricsEnabled {
		if err := c.metrics.RegisterMetrics(otel.Meter("cache")); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Fetch returns the data for key, calling fn when the cached data is missing,
// stale, invalidated or Force is given. Callers asking for an equal key while
// a fetch runs share its result. A caller whose ctx ends stops waiting; the
// fetch itself carries on and still lands in the cache.
func (c *Client) Fetch(ctx context.Context, key Key, fn FetchFunc, opts ...FetchOption) (State, error) {
	if c.closed.Load() {
		return State{Key: key, Status: StatusPending, FetchStatus: FetchIdle}, ErrClosed
	}

	o := c.fetchOptions(opts)
	hash := key.Hash()
	now := c.now()

	c.mu.Lock()
	e := c.entryLocked(key, hash)
	e.lastAccess = now
	if !o.force && !e.state.IsStale(o.staleTime, now) {
		st := e.snapshot()
		c.mu.Unlock()

		c.hits.Add(1)
		c.metrics.add(ctx, c.metrics.hits, 1, key)
		c.logger.DebugCtx(ctx, "cache hit", zap.Stringer("key", key))
		return st, nil
	}
	hydrate := c.store != nil && !e.hydrateTried && !e.state.HasData()
	e.hydrateTried = true
	gen := e.gen
	c.mu.Unlock()

	c.misses.Add(1)
	c.metrics.add(ctx, c.metrics.misses, 1, key)
	c.logger.DebugCtx(ctx, "cache miss", zap.Stringer("key", key), zap.Bool("force", o.force))

	if hydrate {
		c.hydrate(ctx, key, hash, gen)
	}

	led := false
	ch := c.group.DoChan(flightKey(hash, gen), func() (any, error) {
		led = true
		return c.run(context.WithoutCancel(ctx), key, hash, gen, fn, o)
	})

	select {
	case res := <-ch:
		if res.Shared && !led {
			c.dedup.Add(1)
			c.metrics.add(ctx, c.metrics.dedup, 1, key)
		}
		st, _ := res.Val.(State)
		return st, res.Err
	case <-ctx.Done():
		st, _ := c.Peek(key)
		return st, ctx.Err()
	}
}

func (c *Client) fetchOptions(opts []FetchOption) fetchOptions {
	o := fetchOptions{
		staleTime: c.cfg.StaleTime,
		policy:    c.cfg.Retry,
		persist:   true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func flightKey(hash string, gen uint64) string {
	return fmt.Sprintf("%s#%d", hash, gen)
}

func (c *Client) run(ctx context.Context, key Key, hash string, gen uint64, fn FetchFunc, o fetchOptions) (any, error) {
	start := time.Now()

	c.mu.Lock()
	e := c.current(hash, gen)
	var seq uint64
	var st State
	if e != nil {
		e.state.FetchStatus = FetchFetching
		if !e.state.HasData() && e.state.Err == nil {
			e.state.Status = StatusPending
		}
		seq = e.invalidations
		st = e.snapshot()
	}
	c.mu.Unlock()
	if e != nil {
		c.notify(ctx, st)
	}

	data, err := retry.DoWithData(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, c.retryOptions(ctx, key, o)...)
	err = lastAttemptError(err)

	c.fetches.Add(1)
	if err != nil {
		c.errors.Add(1)
	}
	c.metrics.recordFetch(ctx, key, time.Since(start).Seconds(), err != nil)

	now := c.now()
	c.mu.Lock()
	e = c.current(hash, gen)
	if e != nil {
		e.state.FetchStatus = FetchIdle
		if err != nil {
			e.state.Err = err
			e.state.ErrorAt = now
			e.state.Status = StatusError
		} else {
			e.state.Data = data
			e.state.Err = nil
			e.state.Status = StatusSuccess
			e.state.UpdatedAt = now
			e.state.Hydrated = false
			// an invalidation that arrived mid-flight still applies
			e.state.Invalidated = e.invalidations != seq
		}
		st = e.snapshot()
	} else {
		st = State{Key: key, Data: data, Err: err, FetchStatus: FetchIdle}
		if err != nil {
			st.Status, st.ErrorAt = StatusError, now
		} else {
			st.Status, st.UpdatedAt = StatusSuccess, now
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.DebugCtx(ctx, "fetch failed", zap.Stringer("key", key), zap.Error(err))
	} else {
		c.logger.DebugCtx(ctx, "fetch succeeded", zap.Stringer("key", key), zap.Duration("duration", time.Since(start)))
		if o.persist && e != nil {
			c.persist(ctx, key, hash, data, now)
		}
	}
	if e != nil {
		c.notify(ctx, st)
	}
	return st, err
}

func (c *Client) retryOptions(ctx context.Context, key Key, o fetchOptions) []retry.Option {
	if o.noRetry {
		return []retry.Option{retry.MaxAttempts(1)}
	}
	extra := []retry.Option{
		retry.OnRetry(func(attempt int, err error, delay time.Duration) {
			c.logger.DebugCtx(ctx, "retrying fetch",
				zap.Stringer("key", key),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		}),
	}
	return o.policy.Options(extra...)
}

// lastAttemptError reports the final attempt's error rather than the aggregate.
func lastAttemptError(err error) error {
	var me *retry.MultiError
	if errors.As(err, &me) {
		if last := me.LastError(); last != nil {
			return last
		}
	}
	return err
}

// entryLocked returns the entry for hash, creating it. c.mu must be held.
func (c *Client) entryLocked(key Key, hash string) *entry {
	if e, ok := c.entries[hash]; ok {
		return e
	}
	e := c.newEntryLocked(key)
	c.entries[hash] = e
	return e
}

func (c *Client) newEntryLocked(key Key) *entry {
	c.nextGen++
	return &entry{
		gen: c.nextGen,
		state: State{
			Key:         append(Key(nil), key...),
			Status:      StatusPending,
			FetchStatus: FetchIdle,
		},
		lastAccess: c.now(),
	}
}

// current returns the entry only if it is still the generation a fetch started on.
func (c *Client) current(hash string, gen uint64) *entry {
	e, ok := c.entries[hash]
	if !ok || e.gen != gen {
		return nil
	}
	return e
}

// Peek returns the entry state without fetching.
func (c *Client) Peek(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.Hash()]
	if !ok {
		return State{Key: key, Status: StatusPending, FetchStatus: FetchIdle}, false
	}
	return e.snapshot(), true
}

// SetData stores data for key as a fresh successful result.
func (c *Client) SetData(ctx context.Context, key Key, data any) State {
	hash := key.Hash()
	now := c.now()

	c.mu.Lock()
	e := c.entryLocked(key, hash)
	e.state.Data = data
	e.state.Err = nil
	e.state.Status = StatusSuccess
	e.state.UpdatedAt = now
	e.state.Invalidated = false
	e.state.Hydrated = false
	e.lastAccess = now
	st := e.snapshot()
	c.mu.Unlock()

	c.persist(ctx, key, hash, data, now)
	c.notify(ctx, st)
	return st
}

// Invalidate marks every entry whose key starts with prefix as invalid, so the
// next Fetch refetches. Persisted snapshots under the prefix are dropped.
// It returns the number of entries marked.
func (c *Client) Invalidate(ctx context.Context, prefix Key) int {
	p := prefix.Hash()

	c.mu.Lock()
	var changed []State
	for hash, e := range c.entries {
		if !strings.HasPrefix(hash, p) {
			continue
		}
		e.state.Invalidated = true
		e.invalidations++
		changed = append(changed, e.snapshot())
	}
	c.mu.Unlock()

	n := int64(len(changed))
	c.invalidations.Add(n)
	c.metrics.add(ctx, c.metrics.invalidations, n, prefix)

	if c.store != nil {
		if err := c.store.DeleteByPrefix(ctx, p); err != nil {
			c.logger.WarnCtx(ctx, "drop persisted snapshots failed", zap.Stringer("prefix", prefix), zap.Error(err))
		}
	}

	c.logger.DebugCtx(ctx, "cache invalidated", zap.Stringer("prefix", prefix), zap.Int("entries", len(changed)))
	for _, st := range changed {
		c.notify(ctx, st)
	}
	return len(changed)
}

// InvalidateAll invalidates every entry.
func (c *Client) InvalidateAll(ctx context.Context) int {
	return c.Invalidate(ctx, nil)
}

// Reset returns every entry under prefix to its initial state, dropping data
// and errors. Observers stay attached. Fetches in flight for those entries
// no longer write their result.
func (c *Client) Reset(ctx context.Context, prefix Key) int {
	p := prefix.Hash()

	c.mu.Lock()
	var changed []State
	for hash, e := range c.entries {
		if !strings.HasPrefix(hash, p) {
			continue
		}
		fresh := c.newEntryLocked(e.state.Key)
		fresh.state.Observers = e.state.Observers
		c.entries[hash] = fresh
		changed = append(changed, fresh.snapshot())
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.DeleteByPrefix(ctx, p); err != nil {
			c.logger.WarnCtx(ctx, "drop persisted snapshots failed", zap.Stringer("prefix", prefix), zap.Error(err))
		}
	}
	for _, st := range changed {
		c.notify(ctx, st)
	}
	return len(changed)
}

// Remove deletes the entry for exactly key.
func (c *Client) Remove(ctx context.Context, key Key) bool {
	hash := key.Hash()

	c.mu.Lock()
	_, ok := c.entries[hash]
	delete(c.entries, hash)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(ctx, hash); err != nil {
			c.logger.WarnCtx(ctx, "drop persisted snapshot failed", zap.Stringer("key", key), zap.Error(err))
		}
	}
	return ok
}

// Observe registers interest in key. Observed entries are never collected.
// The returned release function may be called more than once.
func (c *Client) Observe(key Key) (release func()) {
	hash := key.Hash()

	c.mu.Lock()
	e := c.entryLocked(key, hash)
	e.state.Observers++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if e, ok := c.entries[hash]; ok && e.state.Observers > 0 {
				e.state.Observers--
				e.lastAccess = c.now()
			}
		})
	}
}

// Subscribe calls fn with the new state after every change to the entry for key.
func (c *Client) Subscribe(key Key, fn func(ctx context.Context, st State)) (unsubscribe func()) {
	hash := key.Hash()
	unsub := c.dispatcher.Subscribe(EventEntryUpdated, event.ListenerFunc(func(ctx context.Context, e event.Event) error {
		ev, ok := e.(*EntryUpdatedEvent)
		if !ok || ev.hash != hash {
			return nil
		}
		fn(ctx, ev.State)
		return nil
	}))
	return func() { unsub() }
}

func (c *Client) notify(ctx context.Context, st State) {
	ev := &EntryUpdatedEvent{
		BaseEvent: event.NewEvent(EventEntryUpdated),
		State:     st,
		hash:      st.Key.Hash(),
	}
	if err := c.dispatcher.Dispatch(ctx, ev); err != nil {
		c.logger.WarnCtx(ctx, "entry update listener failed", zap.Stringer("key", st.Key), zap.Error(err))
	}
}

// Stale reports whether a Fetch with opts would refetch st.
func (c *Client) Stale(st State, opts ...FetchOption) bool {
	o := c.fetchOptions(opts)
	return o.force || st.IsStale(o.staleTime, c.now())
}

// IsFetching reports whether a fetch for key is in flight.
func (c *Client) IsFetching(key Key) bool {
	st, _ := c.Peek(key)
	return st.IsFetching()
}

// FetchingCount returns how many entries have a fetch in flight.
func (c *Client) FetchingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.state.IsFetching() {
			n++
		}
	}
	return n
}

func (c *Client) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Fetches:       c.fetches.Load(),
		Dedup:         c.dedup.Load(),
		Invalidations: c.invalidations.Load(),
		Errors:        c.errors.Load(),
		Entries:       entries,
	}
}

// CollectGarbage removes entries that have no observers, no fetch in flight
// and were last touched at least GCTime ago. It returns how many were removed.
func (c *Client) CollectGarbage() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for hash, e := range c.entries {
		if e.state.Observers > 0 || e.state.IsFetching() {
			continue
		}
		if now.Sub(e.lastAccess) < c.cfg.GCTime {
			continue
		}
		delete(c.entries, hash)
		removed++
	}
	return removed
}

// StartGC runs CollectGarbage every GCInterval until ctx ends or Close.
func (c *Client) StartGC(ctx context.Context) error {
	c.gcMu.Lock()
	defer c.gcMu.Unlock()

	if c.scheduler != nil {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(
		gocron.DurationJob(c.cfg.GCInterval),
		gocron.NewTask(func() {
			if n := c.CollectGarbage(); n > 0 {
				c.logger.Debug("cache entries collected", zap.Int("removed", n))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return err
	}
	s.Start()
	c.scheduler = s
	context.AfterFunc(ctx, c.stopGC)

	c.logger.DebugCtx(ctx, "cache gc started", zap.Duration("interval", c.cfg.GCInterval), zap.Duration("gc_time", c.cfg.GCTime))
	return nil
}

func (c *Client) stopGC() {
	c.gcMu.Lock()
	defer c.gcMu.Unlock()
	if c.scheduler == nil {
		return
	}
	if err := c.scheduler.Shutdown(); err != nil {
		c.logger.Warn("stop cache gc failed", zap.Error(err))
	}
	c.scheduler = nil
}

// Close stops GC and closes the snapshot store. Fetch fails with ErrClosed afterwards.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.stopGC()
	if c.ownsDispatcher {
		c.dispatcher.Close()
	}
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
