package cli

import (
	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode cli module code
const ModuleCode = 79

var (
	// ErrNotLoggedIn a command needs a session and none is stored
	ErrNotLoggedIn = errcode.Register(errcode.New(
		ModuleCode, 1, "cli", "error.cli.not_logged_in", "not logged in, run `cohortctl login` first",
	))

	ErrNothingToUpdate = errcode.Register(errcode.New(
		ModuleCode, 2, "cli", "error.cli.nothing_to_update", "nothing to update, pass at least one field flag",
	))
)
