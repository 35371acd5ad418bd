package telemetry

import (
	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode telemetry module code
const ModuleCode = 80

var (
	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, 1, "telemetry", "error.telemetry.config_invalid", "invalid telemetry configuration",
	))

	ErrStart = errcode.Register(errcode.New(
		ModuleCode, 2, "telemetry", "error.telemetry.start", "start telemetry failed",
	))
)
