// Package httpclient is the JSON HTTP transport used to reach the cohort API.
// Non-2xx responses come back as *HTTPError, failures without a response as *NetworkError.
package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/retry"
)

type Client struct {
	httpClient *http.Client
	config     *config
}

func NewClient(opts ...Option) *Client {
	cfg := newConfig()
	applyOptions(cfg, opts)
	if cfg.transport == nil {
		cfg.transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	if cfg.logger == nil {
		cfg.logger = logger.GetLogger("httpclient")
	}
	return &Client{
		httpClient: &http.Client{Transport: cfg.transport},
		config:     cfg,
	}
}

// Do sends req. Per-call opts override the client's options.
// A non-2xx response is returned together with an *HTTPError.
func (c *Client) Do(ctx context.Context, req *Request, opts ...Option) (*Response, error) {
	cfg := c.config.merge(opts)
	fullURL := req.resolveURL(cfg.baseURL)
	start := time.Now()

	attempts := 0
	var last *Response
	send := func(ctx context.Context) (*Response, error) {
		attempts++
		resp, err := c.send(ctx, req, fullURL, cfg)
		if resp != nil {
			last = resp
		}
		return resp, err
	}

	var resp *Response
	var err error
	if cfg.retryEnabled {
		retryOpts := append(cfg.retryOpts, retry.OnRetry(func(attempt int, err error, delay time.Duration) {
			cfg.logger.DebugCtx(ctx, "retrying request",
				zap.String("method", req.Method),
				zap.String("url", fullURL),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		}))
		resp, err = retry.DoWithData(ctx, send, retryOpts...)
		if err != nil {
			resp = last
		}
	} else {
		resp, err = send(ctx)
	}

	if resp != nil {
		resp.Duration = time.Since(start)
		resp.Attempts = attempts
	}
	if err != nil {
		cfg.logger.DebugCtx(ctx, "request failed",
			zap.String("method", req.Method),
			zap.String("url", fullURL),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return resp, err
	}

	cfg.logger.DebugCtx(ctx, "request completed",
		zap.String("method", req.Method),
		zap.String("url", fullURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration))

	if cfg.afterResponse != nil {
		if err := cfg.afterResponse(resp); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, req *Request, fullURL string, cfg *config) (*Response, error) {
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	httpReq, err := req.build(ctx, fullURL, cfg.queries)
	if err != nil {
		return nil, err
	}
	for k, v := range cfg.headers {
		if httpReq.Header.Get(k) == "" {
			httpReq.Header.Set(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if cfg.requestIDKey != "" && httpReq.Header.Get(cfg.requestIDKey) == "" {
		httpReq.Header.Set(cfg.requestIDKey, uuid.NewString())
	}
	if cfg.tokenSource != nil {
		if token := cfg.tokenSource(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if cfg.beforeRequest != nil {
		if err := cfg.beforeRequest(httpReq); err != nil {
			return nil, ErrBuildRequest.WithMsg("before request hook failed").Wrap(err)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: fullURL, Err: err}
	}
	resp, err := readResponse(httpResp)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: fullURL, Err: err}
	}
	if !resp.IsSuccess() {
		return resp, newHTTPError(req.Method, fullURL, resp)
	}
	return resp, nil
}

func (c *Client) Get(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Do(ctx, NewGetRequest(url), opts...)
}

func (c *Client) Delete(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Do(ctx, NewDeleteRequest(url), opts...)
}

// DoWithData sends req and decodes a 2xx JSON body into T.
func DoWithData[T any](ctx context.Context, c *Client, req *Request, opts ...Option) (T, error) {
	var out T
	resp, err := c.Do(ctx, req, opts...)
	if err != nil {
		return out, err
	}
	err = resp.JSON(&out)
	return out, err
}

// Get decodes GET url into T.
func Get[T any](ctx context.Context, c *Client, url string, opts ...Option) (T, error) {
	return DoWithData[T](ctx, c, NewGetRequest(url), opts...)
}

// Post sends body as JSON and decodes the reply into T.
func Post[T any](ctx context.Context, c *Client, url string, body any, opts ...Option) (T, error) {
	return DoWithData[T](ctx, c, NewPostRequest(url).WithJSON(body), opts...)
}

// Patch sends body as JSON and decodes the reply into T.
func Patch[T any](ctx context.Context, c *Client, url string, body any, opts ...Option) (T, error) {
	return DoWithData[T](ctx, c, NewPatchRequest(url).WithJSON(body), opts...)
}
