package session

import (
	"net/http"

	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode session module code
const ModuleCode = 74

var (
	// ErrNotAuthenticated no session token is held
	ErrNotAuthenticated = errcode.Register(errcode.New(
		ModuleCode, 1, "session", "error.session.not_authenticated", "not logged in", http.StatusUnauthorized,
	))

	ErrMalformedToken = errcode.Register(errcode.New(
		ModuleCode, 2, "session", "error.session.malformed_token", "session token is not a readable JWT",
	))

	ErrRestore = errcode.Register(errcode.New(
		ModuleCode, 3, "session", "error.session.restore", "restore session from storage failed",
	))

	ErrEmptyToken = errcode.Register(errcode.New(
		ModuleCode, 4, "session", "error.session.empty_token", "token must not be empty", http.StatusBadRequest,
	))
)
