package redis

import (
	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode redis module code
const ModuleCode = 77

var (
	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, 1, "redis", "error.redis.config_invalid", "invalid redis configuration",
	))

	ErrConnect = errcode.Register(errcode.New(
		ModuleCode, 2, "redis", "error.redis.connect", "connect to redis failed",
	))
)
