// Package errcode defines the structured error type shared by every package of the client.
//
// Codes have the form MMBBBB: a two digit module code followed by a four digit business code.
// Two errors are considered equal by errors.Is when their codes match, regardless of message,
// data or cause.
package errcode

import (
	"errors"
	"fmt"
	"net/http"
)

// LayeredError is an error with a module-scoped code, a message key, an HTTP status and
// optional context data. All With* methods return copies.
type LayeredError struct {
	module     string
	code       int
	msgKey     string
	msg        string
	httpStatus int
	data       map[string]any
	cause      error
}

// New creates an error with code moduleCode*10000+businessCode.
// httpStatus defaults to 500 when omitted.
func New(moduleCode, businessCode int, module, msgKey, msg string, httpStatus ...int) *LayeredError {
	status := http.StatusInternalServerError
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		msgKey:     msgKey,
		msg:        msg,
		httpStatus: status,
		data:       make(map[string]any),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the full MMBBBB code.
func (e *LayeredError) Code() int { return e.code }

// Module returns the owning module name.
func (e *LayeredError) Module() string { return e.module }

// MsgKey returns the message key, e.g. "error.session.persist".
func (e *LayeredError) MsgKey() string { return e.msgKey }

// Message returns the message without the cause.
func (e *LayeredError) Message() string { return e.msg }

func (e *LayeredError) HTTPStatus() int { return e.httpStatus }

func (e *LayeredError) Data() map[string]any { return e.data }

func (e *LayeredError) Cause() error { return e.cause }

func (e *LayeredError) Unwrap() error { return e.cause }

// WithMsg replaces the message.
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf replaces the message with a formatted one.
func (e *LayeredError) WithMsgf(format string, args ...any) *LayeredError {
	return e.WithMsg(fmt.Sprintf(format, args...))
}

// WithData attaches a single context value.
func (e *LayeredError) WithData(key string, value any) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	clone.data[key] = value
	return &clone
}

// WithFields attaches several context values at once.
func (e *LayeredError) WithFields(fields map[string]any) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	for k, v := range fields {
		clone.data[k] = v
	}
	return &clone
}

// WithHTTPStatus overrides the HTTP status.
func (e *LayeredError) WithHTTPStatus(status int) *LayeredError {
	clone := *e
	clone.httpStatus = status
	return &clone
}

// Wrap records cause as the underlying error. A nil cause returns e unchanged.
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Wrapf records cause and replaces the message.
func (e *LayeredError) Wrapf(cause error, format string, args ...any) *LayeredError {
	return e.Wrap(cause).WithMsgf(format, args...)
}

// Is matches by code.
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}", e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}", e.code, e.module, e.msg)
}

func (e *LayeredError) cloneData() map[string]any {
	data := make(map[string]any, len(e.data)+1)
	for k, v := range e.data {
		data[k] = v
	}
	return data
}

// As returns the outermost LayeredError in err's chain.
func As(err error) (*LayeredError, bool) {
	var le *LayeredError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// HTTPStatusOf returns the HTTP status carried by err, or 500 when err has none.
func HTTPStatusOf(err error) int {
	if le, ok := As(err); ok {
		return le.HTTPStatus()
	}
	return http.StatusInternalServerError
}
