package mutation

import (
	"maps"
)

// DefinitionOption configures a Definition.
type DefinitionOption[V, R any] func(*Definition[V, R])

// WithInvalidation sets the policy run after every successful write.
func WithInvalidation[V, R any](policy InvalidationPolicy[V, R]) DefinitionOption[V, R] {
	return func(d *Definition[V, R]) {
		d.invalidate = policy
	}
}

// Option configures one Mutation. V and R are the definition's variables
// and result types, so callbacks are checked against them at compile time.
type Option[V, R any] func(*settings[V, R])

type settings[V, R any] struct {
	onError          func(error)
	onSuccess        func(data R, variables V)
	shouldInvalidate bool
	meta             map[string]any
}

func newSettings[V, R any](opts []Option[V, R]) settings[V, R] {
	s := settings[V, R]{shouldInvalidate: true}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// OnError is called with every failed write, after authorization failures
// have ended the session.
func OnError[V, R any](fn func(error)) Option[V, R] {
	return func(s *settings[V, R]) {
		s.onError = fn
	}
}

// OnSuccess is called after every successful write, before the invalidation
// policy runs.
func OnSuccess[V, R any](fn func(data R, variables V)) Option[V, R] {
	return func(s *settings[V, R]) {
		s.onSuccess = fn
	}
}

// ShouldInvalidateQueries false skips the definition's invalidation policy.
func ShouldInvalidateQueries[V, R any](enabled bool) Option[V, R] {
	return func(s *settings[V, R]) {
		s.shouldInvalidate = enabled
	}
}

// WithMeta is passed to the write function as Meta.Extra.
func WithMeta[V, R any](meta map[string]any) Option[V, R] {
	return func(s *settings[V, R]) {
		s.meta = maps.Clone(meta)
	}
}
