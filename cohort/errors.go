package cohort

import (
	"net/http"

	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode cohort module code
const ModuleCode = 76

var (
	// ErrMissingID a request needs a cohort id and got none
	ErrMissingID = errcode.Register(errcode.New(
		ModuleCode, 1, "cohort", "error.cohort.missing_id", "cohort id is required", http.StatusBadRequest,
	))

	ErrNoToken = errcode.Register(errcode.New(
		ModuleCode, 2, "cohort", "error.cohort.no_token", "login response carried no token", http.StatusBadGateway,
	))
)
