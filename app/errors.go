package app

import (
	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode app module code
const ModuleCode = 78

var (
	ErrConfigLoad = errcode.Register(errcode.New(
		ModuleCode, 1, "app", "error.app.config_load", "load configuration failed",
	))

	ErrInit = errcode.Register(errcode.New(
		ModuleCode, 2, "app", "error.app.init", "initialize application failed",
	))
)
