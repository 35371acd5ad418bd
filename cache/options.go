package cache

import (
	"time"

	"github.com/Vayras/admin-frontend-sub001/event"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/retry"
)

// Option configures a Client.
type Option func(*Client)

// WithStore persists successful results as snapshots and hydrates empty entries from them.
func WithStore(store Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

func WithSerializer(s Serializer) Option {
	return func(c *Client) {
		if s != nil {
			c.serializer = s
		}
	}
}

func WithLogger(l *logger.CtxZapLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDispatcher publishes entry changes on d. Without it the client owns a
// synchronous dispatcher.
func WithDispatcher(d event.Dispatcher) Option {
	return func(c *Client) {
		if d != nil {
			c.dispatcher = d
			c.ownsDispatcher = false
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

type fetchOptions struct {
	staleTime time.Duration
	force     bool
	policy    retry.Policy
	noRetry   bool
	persist   bool
}

// FetchOption tunes a single Fetch.
type FetchOption func(*fetchOptions)

// WithStaleTime overrides the configured freshness window.
func WithStaleTime(d time.Duration) FetchOption {
	return func(o *fetchOptions) {
		o.staleTime = d
	}
}

// Force fetches even when the cached data is fresh.
func Force() FetchOption {
	return func(o *fetchOptions) {
		o.force = true
	}
}

func WithRetryPolicy(p retry.Policy) FetchOption {
	return func(o *fetchOptions) {
		p.ApplyDefaults()
		o.policy = p
	}
}

// NoRetry runs the fetch once.
func NoRetry() FetchOption {
	return func(o *fetchOptions) {
		o.noRetry = true
	}
}

// SkipPersist keeps the result out of the snapshot store.
func SkipPersist() FetchOption {
	return func(o *fetchOptions) {
		o.persist = false
	}
}
