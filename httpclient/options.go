package httpclient

import (
	"context"
	"maps"
	"net/http"
	"net/url"
	"time"

	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/retry"
)

// TokenSource returns the bearer token to send, or "" for anonymous requests.
type TokenSource func(ctx context.Context) string

type config struct {
	baseURL       string
	timeout       time.Duration
	transport     http.RoundTripper
	headers       map[string]string
	queries       url.Values
	retryEnabled  bool
	retryOpts     []retry.Option
	tokenSource   TokenSource
	requestIDKey  string
	logger        *logger.CtxZapLogger
	beforeRequest func(*http.Request) error
	afterResponse func(*Response) error
}

// Option configures a Client, or a single call when passed to Do.
type Option func(*config)

func newConfig() *config {
	return &config{
		timeout:      30 * time.Second,
		headers:      make(map[string]string),
		queries:      make(url.Values),
		requestIDKey: "X-Request-ID",
	}
}

func applyOptions(cfg *config, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = baseURL }
}

// WithTimeout bounds a single attempt, not the whole retry sequence.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) { c.transport = rt }
}

func WithHeader(key, value string) Option {
	return func(c *config) { c.headers[key] = value }
}

func WithHeaders(headers map[string]string) Option {
	return func(c *config) { maps.Copy(c.headers, headers) }
}

func WithQuery(key, value string) Option {
	return func(c *config) { c.queries.Set(key, value) }
}

func WithQueries(q url.Values) Option {
	return func(c *config) {
		for k, vs := range q {
			for _, v := range vs {
				c.queries.Add(k, v)
			}
		}
	}
}

// WithRetry enables retries with the given options.
func WithRetry(opts ...retry.Option) Option {
	return func(c *config) {
		c.retryEnabled = true
		c.retryOpts = opts
	}
}

// WithRetryPolicy enables retries following p.
func WithRetryPolicy(p retry.Policy) Option {
	return WithRetry(p.Options()...)
}

// DisableRetry turns retries off, typically per call for writes.
func DisableRetry() Option {
	return func(c *config) {
		c.retryEnabled = false
		c.retryOpts = nil
	}
}

// WithTokenSource adds "Authorization: Bearer <token>" whenever the source yields a token.
func WithTokenSource(ts TokenSource) Option {
	return func(c *config) { c.tokenSource = ts }
}

// WithRequestIDHeader changes the request id header name; "" disables it.
func WithRequestIDHeader(name string) Option {
	return func(c *config) { c.requestIDKey = name }
}

func WithLogger(l *logger.CtxZapLogger) Option {
	return func(c *config) { c.logger = l }
}

func WithBeforeRequest(fn func(*http.Request) error) Option {
	return func(c *config) { c.beforeRequest = fn }
}

// WithAfterResponse runs after every successful response; its error is returned from Do.
func WithAfterResponse(fn func(*Response) error) Option {
	return func(c *config) { c.afterResponse = fn }
}

// merge applies per-call options on top of the client's.
func (c *config) merge(opts []Option) *config {
	merged := *c
	merged.headers = maps.Clone(c.headers)
	merged.queries = make(url.Values, len(c.queries))
	for k, vs := range c.queries {
		merged.queries[k] = append([]string(nil), vs...)
	}
	merged.retryOpts = append([]retry.Option(nil), c.retryOpts...)
	applyOptions(&merged, opts)
	return &merged
}
