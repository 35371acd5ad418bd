package query

import (
	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode query module code
const ModuleCode = 72

var (
	// ErrInternal wraps failures that are neither HTTP, network nor
	// cancellation errors. They point at a bug in a fetch function.
	ErrInternal = errcode.Register(errcode.New(
		ModuleCode, 1, "query", "error.query.internal", "internal query error", 500,
	))

	ErrClosed = errcode.Register(errcode.New(
		ModuleCode, 2, "query", "error.query.closed", "query observer is closed",
	))
)
