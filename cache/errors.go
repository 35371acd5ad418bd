package cache

import (
	"github.com/Vayras/admin-frontend-sub001/errcode"
)

// ModuleCode cache module code
const ModuleCode = 70

const (
	ErrCodeCacheMiss     = 1
	ErrCodeSerialize     = 2
	ErrCodeDeserialize   = 3
	ErrCodeStoreGet      = 4
	ErrCodeStoreSet      = 5
	ErrCodeStoreDelete   = 6
	ErrCodeConfigInvalid = 7
	ErrCodeClosed        = 8
)

var (
	// ErrCacheMiss is returned by stores when the key is absent or expired
	ErrCacheMiss = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCacheMiss,
		"cache", "error.cache.miss", "cache miss", 404,
	))

	ErrSerialize = errcode.Register(errcode.New(
		ModuleCode, ErrCodeSerialize,
		"cache", "error.cache.serialize", "serialize cache snapshot failed",
	))

	ErrDeserialize = errcode.Register(errcode.New(
		ModuleCode, ErrCodeDeserialize,
		"cache", "error.cache.deserialize", "deserialize cache snapshot failed",
	))

	ErrStoreGet = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreGet,
		"cache", "error.cache.store_get", "read from cache store failed",
	))

	ErrStoreSet = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreSet,
		"cache", "error.cache.store_set", "write to cache store failed",
	))

	ErrStoreDelete = errcode.Register(errcode.New(
		ModuleCode, ErrCodeStoreDelete,
		"cache", "error.cache.store_delete", "delete from cache store failed",
	))

	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, ErrCodeConfigInvalid,
		"cache", "error.cache.config_invalid", "invalid cache configuration",
	))

	// ErrClosed is returned by Fetch after Close
	ErrClosed = errcode.Register(errcode.New(
		ModuleCode, ErrCodeClosed,
		"cache", "error.cache.closed", "cache client is closed",
	))
)
