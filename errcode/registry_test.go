package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(New(70, 1, "cache", "error.cache.fetch", "fetch failed"))
	r.Register(New(74, 1, "session", "error.session.persist", "persist failed"))

	key, ok := r.Lookup(700001)
	assert.True(t, ok)
	assert.Equal(t, "cache:error.cache.fetch", key)
	assert.Equal(t, []int{700001, 740001}, r.Codes())
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	err := New(70, 1, "cache", "error.cache.fetch", "fetch failed")
	assert.NotPanics(t, func() {
		r.Register(err)
		r.Register(New(70, 1, "cache", "error.cache.fetch", "other text"))
	})
	assert.Len(t, r.Codes(), 1)
}

func TestRegistry_RegisterConflict(t *testing.T) {
	r := NewRegistry()
	r.Register(New(70, 1, "cache", "error.cache.fetch", "fetch failed"))
	assert.Panics(t, func() {
		r.Register(New(70, 1, "cache", "error.cache.other", "other"))
	})
}
