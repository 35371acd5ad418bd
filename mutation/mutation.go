// Package mutation builds typed writes: auth-aware error handling, trailing
// edge debouncing and invalidation of the queries a write affects.
package mutation

import (
	"context"
	"sync"
	"time"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"github.com/Vayras/admin-frontend-sub001/query"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Meta is what a write function gets besides its context and variables.
type Meta struct {
	Client *cache.Client
	Extra  map[string]any
}

// WriteFunc performs the network write.
type WriteFunc[V, R any] func(ctx context.Context, variables V, meta Meta) (R, error)

// InvalidationInput describes a successful write.
type InvalidationInput[V, R any] struct {
	Variables V
	Data      R
	Client    *cache.Client
}

// InvalidationPolicy marks the cached queries a write made stale.
type InvalidationPolicy[V, R any] func(ctx context.Context, in InvalidationInput[V, R]) error

// Definition is a reusable write. It is immutable and safe for concurrent use.
type Definition[V, R any] struct {
	env        *query.Env
	name       string
	write      WriteFunc[V, R]
	invalidate InvalidationPolicy[V, R]
}

// New creates a definition. name labels logs and spans.
func New[V, R any](env *query.Env, name string, write WriteFunc[V, R], opts ...DefinitionOption[V, R]) *Definition[V, R] {
	if env == nil || env.Cache == nil {
		panic("mutation: env with a cache client is required")
	}
	if write == nil {
		panic("mutation: write function is required")
	}
	d := &Definition[V, R]{env: env, name: name, write: write}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Definition[V, R]) Name() string {
	return d.name
}

// Use creates a mutation instance with its own state and debounce timer.
func (d *Definition[V, R]) Use(opts ...Option[V, R]) *Mutation[V, R] {
	return &Mutation[V, R]{
		def:      d,
		settings: newSettings(opts),
		state:    State[V, R]{Status: StatusIdle},
	}
}

// Status of a mutation instance.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// State reflects the latest write of a mutation instance.
type State[V, R any] struct {
	Status      Status
	Variables   V
	Data        R
	Error       error
	SubmittedAt time.Time
}

// Mutation is one instance of a Definition. Writes are not serialized:
// concurrent Mutate calls all run, and State follows the latest one.
type Mutation[V, R any] struct {
	def      *Definition[V, R]
	settings settings[V, R]

	mu       sync.Mutex
	state    State[V, R]
	calls    uint64
	timer    *time.Timer
	timerSeq uint64
	closed   bool
}

func (m *Mutation[V, R]) State() State[V, R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns the state to idle. A pending debounced write stays scheduled.
func (m *Mutation[V, R]) Reset() {
	m.mu.Lock()
	m.calls++
	m.state = State[V, R]{Status: StatusIdle}
	m.mu.Unlock()
}

// Pending reports whether a debounced write is scheduled.
func (m *Mutation[V, R]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer != nil
}

// Close cancels a scheduled debounced write. Later calls fail with ErrClosed.
func (m *Mutation[V, R]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.stopTimerLocked()
}

// Mutate runs the write. Failures are not retried. An authorization failure
// ends the session before OnError runs. On success OnSuccess runs, then the
// invalidation policy, which Mutate waits for.
func (m *Mutation[V, R]) Mutate(ctx context.Context, variables V) (R, error) {
	var zero R
	env := m.def.env

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return zero, ErrClosed
	}
	m.calls++
	call := m.calls
	m.state = State[V, R]{Status: StatusPending, Variables: variables, SubmittedAt: time.Now()}
	m.mu.Unlock()

	ctx, span := env.Tracer.Start(ctx, "mutation "+m.def.name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	data, err := m.def.write(ctx, variables, Meta{Client: env.Cache, Extra: m.settings.meta})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.fail(ctx, call, err)
		return zero, err
	}

	m.update(call, func(st *State[V, R]) {
		st.Status = StatusSuccess
		st.Data = data
	})
	env.Logger.DebugCtx(ctx, "mutation succeeded", zap.String("mutation", m.def.name))
	if m.settings.onSuccess != nil {
		m.settings.onSuccess(data, variables)
	}

	if m.settings.shouldInvalidate && m.def.invalidate != nil {
		in := InvalidationInput[V, R]{Variables: variables, Data: data, Client: env.Cache}
		if err := m.def.invalidate(ctx, in); err != nil {
			err = ErrInvalidation.Wrap(err)
			env.Logger.WarnCtx(ctx, "invalidate queries after mutation failed", zap.String("mutation", m.def.name), zap.Error(err))
			span.SetStatus(codes.Error, err.Error())
			m.update(call, func(st *State[V, R]) { st.Error = err })
			return data, err
		}
	}
	span.SetStatus(codes.Ok, "")
	return data, nil
}

func (m *Mutation[V, R]) fail(ctx context.Context, call uint64, err error) {
	env := m.def.env
	if env.Session != nil {
		env.Session.HandleError(ctx, err)
	}
	env.Logger.DebugCtx(ctx, "mutation failed", zap.String("mutation", m.def.name), zap.Error(err))

	m.update(call, func(st *State[V, R]) {
		st.Status = StatusError
		st.Error = err
	})
	if m.settings.onError != nil {
		m.settings.onError(err)
	}
}

// update applies fn only if call is still the latest write.
func (m *Mutation[V, R]) update(call uint64, fn func(*State[V, R])) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == call {
		fn(&m.state)
	}
}

// DebouncedMutate schedules a write of variables once debounce has passed
// without another call. Each call cancels the previously scheduled write,
// so only the last variables are sent. callback, if set, gets the outcome.
// After Close the call is ignored.
func (m *Mutation[V, R]) DebouncedMutate(ctx context.Context, variables V, debounce time.Duration, callback func(R, error)) {
	// the write outlives the caller's context
	ctx = context.WithoutCancel(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	m.stopTimerLocked()
	m.timerSeq++
	seq := m.timerSeq
	m.timer = time.AfterFunc(debounce, func() {
		m.mu.Lock()
		// Stop cannot catch a timer that already fired
		if m.timerSeq != seq || m.closed {
			m.mu.Unlock()
			return
		}
		m.timer = nil
		m.mu.Unlock()

		data, err := m.Mutate(ctx, variables)
		if callback != nil {
			callback(data, err)
		}
	})
}

func (m *Mutation[V, R]) stopTimerLocked() {
	if m.timer == nil {
		return
	}
	m.timer.Stop()
	m.timer = nil
	m.timerSeq++
}
