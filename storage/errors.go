package storage

import (
	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode storage module code
const ModuleCode = 75

var (
	ErrRead = errcode.Register(errcode.New(
		ModuleCode, 1, "storage", "error.storage.read", "read from storage failed",
	))

	ErrWrite = errcode.Register(errcode.New(
		ModuleCode, 2, "storage", "error.storage.write", "write to storage failed",
	))

	ErrDecode = errcode.Register(errcode.New(
		ModuleCode, 3, "storage", "error.storage.decode", "storage contents are corrupt",
	))

	ErrSubscribe = errcode.Register(errcode.New(
		ModuleCode, 4, "storage", "error.storage.subscribe", "subscribe to storage changes failed",
	))

	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, 5, "storage", "error.storage.config_invalid", "invalid storage configuration",
	))
)
