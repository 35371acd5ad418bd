package query

import (
	"maps"

	"github.com/Vayras/admin-frontend-sub001/cache"
)

// DefinitionOption configures a Definition.
type DefinitionOption[T any] func(*definitionOptions[T])

type definitionOptions[T any] struct {
	placeholder    T
	hasPlaceholder bool
}

// WithPlaceholder is returned as data while the key has none.
func WithPlaceholder[T any](v T) DefinitionOption[T] {
	return func(o *definitionOptions[T]) {
		o.placeholder = v
		o.hasPlaceholder = true
	}
}

// Option configures one observer or one Fetch. T is the definition's data
// type, so callbacks are checked against it at compile time:
//
//	def.Use(ctx, id, query.Enabled[cohort.Cohort](loggedIn), query.OnDataChanged(notify))
type Option[T any] func(*settings[T])

type settings[T any] struct {
	enabled       bool
	onError       func(error)
	onDataChanged func(newData, oldData T)
	meta          map[string]any
	cacheOpts     []cache.FetchOption
}

func newSettings[T any](opts []Option[T]) settings[T] {
	s := settings[T]{enabled: true}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Enabled false skips every execution and reports no data.
func Enabled[T any](enabled bool) Option[T] {
	return func(s *settings[T]) {
		s.enabled = enabled
	}
}

// OnError is called with every failed execution, after authorization
// failures have ended the session.
func OnError[T any](fn func(error)) Option[T] {
	return func(s *settings[T]) {
		s.onError = fn
	}
}

// OnDataChanged is called when newly fetched data is not deeply equal to the
// data seen before. It never fires for the first data of a key.
func OnDataChanged[T any](fn func(newData, oldData T)) Option[T] {
	return func(s *settings[T]) {
		s.onDataChanged = fn
	}
}

// WithMeta is passed to the fetch function as Meta.Extra.
func WithMeta[T any](meta map[string]any) Option[T] {
	return func(s *settings[T]) {
		s.meta = maps.Clone(meta)
	}
}

// WithCacheOptions forwards options to cache.Client.Fetch.
func WithCacheOptions[T any](opts ...cache.FetchOption) Option[T] {
	return func(s *settings[T]) {
		s.cacheOpts = append(s.cacheOpts, opts...)
	}
}
