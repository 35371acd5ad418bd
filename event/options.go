package event

import "github.com/Vayras/admin-frontend-sub001/logger"

type listenerEntry struct {
	id       uint64
	listener Listener
	async    bool
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*listenerEntry)

// WithAsync runs the listener on the pool even during synchronous dispatch.
// Its errors never reach the dispatcher's caller. A dispatcher created with
// WithSetAllSync runs it synchronously.
func WithAsync() SubscribeOption {
	return func(e *listenerEntry) {
		e.async = true
	}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcher)

func WithPoolSize(size int) DispatcherOption {
	return func(d *dispatcher) {
		d.poolSize = size
	}
}

// WithSetAllSync forces every listener to run synchronously.
func WithSetAllSync(v bool) DispatcherOption {
	return func(d *dispatcher) {
		d.setAllSync = v
	}
}

// WithRecover installs RecoverInterceptor around every dispatch.
func WithRecover() DispatcherOption {
	return func(d *dispatcher) {
		d.recover = true
	}
}

// WithDispatchLogging installs LoggingInterceptor around every dispatch.
func WithDispatchLogging() DispatcherOption {
	return func(d *dispatcher) {
		d.logDispatch = true
	}
}

// WithInterceptors appends interceptors; they run inside the recover and
// logging interceptors.
func WithInterceptors(interceptors ...Interceptor) DispatcherOption {
	return func(d *dispatcher) {
		d.interceptors = append(d.interceptors, interceptors...)
	}
}

// WithMetrics records dispatch metrics on m. An unregistered m is registered
// on the global meter provider.
func WithMetrics(m *EventMetrics) DispatcherOption {
	return func(d *dispatcher) {
		d.metrics = m
	}
}

func WithLogger(l *logger.CtxZapLogger) DispatcherOption {
	return func(d *dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}
