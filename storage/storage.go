// Package storage is a small durable key-value store with a change feed.
//
// Every Store value is one context (a terminal, a process, a browser tab).
// Subscribers hear about changes made by other contexts sharing the same
// backend, never about their own writes.
package storage

import (
	"context"
)

// Change is one key update made by another context.
type Change struct {
	Key string
	// Value is nil when the key was removed.
	Value  *string
	Origin string
}

// Removed reports whether the change deleted the key.
func (c Change) Removed() bool {
	return c.Value == nil
}

// Handler receives changes. It runs on the store's notification goroutine.
type Handler func(ctx context.Context, change Change)

// Store is a string key-value store shared between contexts.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Subscribe delivers changes made through other Store values on the same backend.
	Subscribe(handler Handler) (unsubscribe func(), err error)
}

func strPtr(s string) *string {
	return &s
}
