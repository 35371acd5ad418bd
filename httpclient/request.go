package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is a replayable request description; the body is buffered so retries can resend it.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   url.Values
	body    []byte
	bodyErr error
}

func NewRequest(method, urlStr string) *Request {
	return &Request{
		Method:  method,
		URL:     urlStr,
		Headers: make(map[string]string),
		Query:   make(url.Values),
	}
}

func NewGetRequest(urlStr string) *Request { return NewRequest(http.MethodGet, urlStr) }

func NewPostRequest(urlStr string) *Request { return NewRequest(http.MethodPost, urlStr) }

func NewPatchRequest(urlStr string) *Request { return NewRequest(http.MethodPatch, urlStr) }

func NewDeleteRequest(urlStr string) *Request { return NewRequest(http.MethodDelete, urlStr) }

func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) WithQuery(key, value string) *Request {
	r.Query.Set(key, value)
	return r
}

// WithQueries merges q into the request's query.
func (r *Request) WithQueries(q url.Values) *Request {
	for k, vs := range q {
		for _, v := range vs {
			r.Query.Add(k, v)
		}
	}
	return r
}

func (r *Request) WithBody(body io.Reader) *Request {
	if body == nil {
		return r
	}
	r.body, r.bodyErr = io.ReadAll(body)
	return r
}

// WithJSON encodes data and sets the content type. Encoding errors surface from Do.
func (r *Request) WithJSON(data any) *Request {
	if data == nil {
		return r
	}
	r.body, r.bodyErr = json.Marshal(data)
	r.Headers["Content-Type"] = "application/json"
	return r
}

func (r *Request) resolveURL(baseURL string) string {
	u := r.URL
	if baseURL != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(u, "/")
	}
	return u
}

func (r *Request) build(ctx context.Context, fullURL string, extra url.Values) (*http.Request, error) {
	if r.bodyErr != nil {
		return nil, ErrEncodeBody.Wrap(r.bodyErr)
	}

	q := make(url.Values, len(r.Query)+len(extra))
	for k, vs := range extra {
		q[k] = append(q[k], vs...)
	}
	for k, vs := range r.Query {
		q[k] = append(q[k], vs...)
	}
	if len(q) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + q.Encode()
	}

	var body io.Reader
	if len(r.body) > 0 {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, fullURL, body)
	if err != nil {
		return nil, ErrBuildRequest.Wrap(err)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
