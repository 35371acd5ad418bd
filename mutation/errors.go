package mutation

import (
	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode mutation module code
const ModuleCode = 73

var (
	ErrClosed = errcode.Register(errcode.New(
		ModuleCode, 1, "mutation", "error.mutation.closed", "mutation is closed",
	))

	// ErrInvalidation is returned when the write succeeded but invalidating
	// the dependent queries failed.
	ErrInvalidation = errcode.Register(errcode.New(
		ModuleCode, 2, "mutation", "error.mutation.invalidation", "invalidate queries after mutation failed",
	))
)
