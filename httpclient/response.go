package httpclient

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Response is a fully read response.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Attempts   int
}

func (r *Response) IsSuccess() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (r *Response) IsClientError() bool { return r.StatusCode >= 400 && r.StatusCode < 500 }

func (r *Response) IsServerError() bool { return r.StatusCode >= 500 && r.StatusCode < 600 }

// JSON decodes the body into v. An empty body leaves v untouched.
func (r *Response) JSON(v any) error {
	if v == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return ErrDecodeResponse.Wrap(err)
	}
	return nil
}

func (r *Response) String() string { return string(r.Body) }

func readResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
