package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Vayras/admin-frontend-sub001/errcode"
	"github.com/Vayras/admin-frontend-sub001/retry"
)

const ModuleCode = 71

var (
	ErrBuildRequest   = errcode.Register(errcode.New(ModuleCode, 1, "httpclient", "error.httpclient.build_request", "build request failed"))
	ErrDecodeResponse = errcode.Register(errcode.New(ModuleCode, 2, "httpclient", "error.httpclient.decode_response", "decode response failed", 502))
	ErrEncodeBody     = errcode.Register(errcode.New(ModuleCode, 3, "httpclient", "error.httpclient.encode_body", "encode request body failed"))
)

// HTTPError is returned for every non-2xx response. Message holds the server's
// "message" (or "error") field when the body is JSON, the raw body otherwise.
type HTTPError struct {
	Status  int
	Method  string
	URL     string
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
}

// StatusCode implements retry.HTTPError.
func (e *HTTPError) StatusCode() int { return e.Status }

func newHTTPError(method, url string, resp *Response) *HTTPError {
	return &HTTPError{
		Status:  resp.StatusCode,
		Method:  method,
		URL:     url,
		Message: extractMessage(resp.Body),
		Body:    resp.Body,
	}
}

func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
		return ""
	}
	return strings.TrimSpace(string(body))
}

// NetworkError means no response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Temporary marks the failure as transient for retry.IsTransient,
// unless the caller cancelled the request.
func (e *NetworkError) Temporary() bool { return !errors.Is(e.Err, context.Canceled) }

// Kind classifies an error for cross-cutting handling.
type Kind int

const (
	KindNone Kind = iota
	KindUnauthorized
	KindNetwork
	KindApplication
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthorized:
		return "unauthorized"
	case KindNetwork:
		return "network"
	case KindApplication:
		return "application"
	default:
		return "internal"
	}
}

// Classify sorts err into the client's error taxonomy:
//
//	HTTP 401                      KindUnauthorized
//	other status (see StatusOf)   KindApplication
//	no response received          KindNetwork
//	anything else                 KindInternal
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if status, ok := StatusOf(err); ok {
		if status == http.StatusUnauthorized {
			return KindUnauthorized
		}
		return KindApplication
	}
	var ne *NetworkError
	if errors.As(err, &ne) || errors.Is(err, context.Canceled) || retry.IsTransient(err) {
		return KindNetwork
	}
	return KindInternal
}

// StatusOf extracts the HTTP status an error carries. LayeredErrors only count
// with a 4xx status, which is how local validation failures are reported.
func StatusOf(err error) (int, bool) {
	var he retry.HTTPError
	if errors.As(err, &he) {
		return he.StatusCode(), true
	}
	if le, ok := errcode.As(err); ok && le.HTTPStatus() >= 400 && le.HTTPStatus() < 500 {
		return le.HTTPStatus(), true
	}
	return 0, false
}

// IsUnauthorized is the universal 401 check.
func IsUnauthorized(err error) bool {
	return Classify(err) == KindUnauthorized
}

// MessageOf returns the server supplied message of an application failure,
// or err.Error() for any other error.
func MessageOf(err error) string {
	var he *HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	if le, ok := errcode.As(err); ok {
		return le.Message()
	}
	return err.Error()
}
