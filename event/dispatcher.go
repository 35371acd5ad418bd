package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// UnsubscribeFunc removes a subscription. Calling it twice is harmless.
type UnsubscribeFunc func()

// Dispatcher routes events to their listeners.
type Dispatcher interface {
	// Subscribe registers listener for eventName.
	Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc

	// Dispatch runs the synchronous listeners of event in subscription order
	// and hands the async ones to the pool.
	Dispatch(ctx context.Context, event Event) error

	// Close stops accepting asynchronous work and releases the pool.
	Close()
}

type dispatcher struct {
	mu           sync.RWMutex
	listeners    map[string][]listenerEntry
	interceptors []Interceptor
	nextID       uint64
	pool         *ants.Pool
	poolSize     int
	logger       *logger.CtxZapLogger
	metrics      *EventMetrics
	closed       int32
	setAllSync   bool
	recover      bool
	logDispatch  bool
}

// NewDispatcher creates a dispatcher with its async goroutine pool.
func NewDispatcher(opts ...DispatcherOption) Dispatcher {
	d := &dispatcher{
		listeners: make(map[string][]listenerEntry),
		poolSize:  100,
		logger:    logger.GetLogger("event"),
	}

	for _, opt := range opts {
		opt(d)
	}

	// outermost first
	var builtin []Interceptor
	if d.recover {
		builtin = append(builtin, RecoverInterceptor(d.logger))
	}
	if d.logDispatch {
		builtin = append(builtin, LoggingInterceptor(d.logger))
	}
	d.interceptors = append(builtin, d.interceptors...)

	if d.metrics != nil && !d.metrics.IsRegistered() {
		if err := d.metrics.RegisterMetrics(otel.Meter("event")); err != nil {
			d.logger.Warn("register event metrics failed", zap.Error(err))
			d.metrics = nil
		}
	}

	var err error
	d.pool, err = ants.NewPool(d.poolSize, ants.WithPanicHandler(d.asyncPanic))
	if err != nil {
		d.logger.Error("create goroutine pool failed, falling back to default size", zap.Error(err))
		d.pool, _ = ants.NewPool(100, ants.WithPanicHandler(d.asyncPanic))
	}

	return d
}

func (d *dispatcher) asyncPanic(p any) {
	d.logger.Error("async event listener panicked", zap.String("panic", fmt.Sprint(p)))
}

func (d *dispatcher) Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc {
	if eventName == "" || listener == nil {
		return func() {}
	}

	entry := listenerEntry{
		id:       atomic.AddUint64(&d.nextID, 1),
		listener: listener,
	}
	for _, opt := range opts {
		opt(&entry)
	}
	if d.setAllSync {
		entry.async = false
	}

	d.mu.Lock()
	d.listeners[eventName] = append(d.listeners[eventName], entry)
	d.mu.Unlock()

	return func() {
		d.removeListener(eventName, entry.id)
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, event Event) error {
	if event == nil {
		return nil
	}
	start := time.Now()

	d.mu.RLock()
	entries := make([]listenerEntry, len(d.listeners[event.Name()]))
	copy(entries, d.listeners[event.Name()])
	d.mu.RUnlock()

	err := d.buildHandlerChain(entries)(ctx, event)

	if d.metrics != nil {
		d.metrics.RecordDispatched(ctx, event.Name(), time.Since(start))
	}
	return err
}

func (d *dispatcher) buildHandlerChain(entries []listenerEntry) Next {
	handler := func(ctx context.Context, event Event) error {
		return d.executeListeners(ctx, event, entries)
	}

	for i := len(d.interceptors) - 1; i >= 0; i-- {
		interceptor := d.interceptors[i]
		next := handler
		handler = func(ctx context.Context, event Event) error {
			return interceptor(ctx, event, next)
		}
	}
	return handler
}

// executeListeners detaches async listeners from ctx cancellation but keeps
// its values (trace id).
func (d *dispatcher) executeListeners(ctx context.Context, event Event, entries []listenerEntry) error {
	for _, entry := range entries {
		if entry.async {
			d.submit(context.WithoutCancel(ctx), event, entry.listener)
			continue
		}

		err := entry.listener.Handle(ctx, event)
		d.recordHandled(ctx, event.Name(), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *dispatcher) submit(ctx context.Context, event Event, listener Listener) {
	if atomic.LoadInt32(&d.closed) == 1 {
		return
	}
	eventName := event.Name()
	err := d.pool.Submit(func() {
		err := listener.Handle(ctx, event)
		d.recordHandled(ctx, eventName, err)
		if err != nil {
			d.logger.ErrorCtx(ctx, "async listener failed",
				zap.String("event", eventName),
				zap.Error(err))
		}
	})
	if err != nil {
		d.logger.ErrorCtx(ctx, "submit async listener failed",
			zap.String("event", eventName),
			zap.Error(err))
	}
}

func (d *dispatcher) recordHandled(ctx context.Context, eventName string, err error) {
	if d.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	d.metrics.RecordHandled(ctx, eventName, result)
}

func (d *dispatcher) removeListener(eventName string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.listeners[eventName]
	filtered := make([]listenerEntry, 0, len(entries))
	for _, e := range entries {
		if e.id != id {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		delete(d.listeners, eventName)
		return
	}
	d.listeners[eventName] = filtered
}

func (d *dispatcher) Close() {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return
	}
	if d.pool != nil {
		d.pool.Release()
	}
}
