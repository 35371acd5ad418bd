package errcode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(74, 1, "session", "error.session.persist", "persist token failed")

	assert.Equal(t, 740001, err.Code())
	assert.Equal(t, "session", err.Module())
	assert.Equal(t, "error.session.persist", err.MsgKey())
	assert.Equal(t, "persist token failed", err.Message())
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Empty(t, err.Data())

	withStatus := New(76, 2, "cohort", "error.cohort.invalid", "invalid cohort", http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, withStatus.HTTPStatus())
}

func TestLayeredError_Wrap(t *testing.T) {
	base := New(75, 1, "storage", "error.storage.read", "read failed")
	cause := errors.New("disk gone")

	wrapped := base.Wrap(cause)
	assert.Equal(t, "read failed: disk gone", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, base)
	assert.Nil(t, base.Cause(), "original must stay untouched")

	assert.Same(t, base, base.Wrap(nil))

	wf := base.Wrapf(cause, "read %q failed", "token")
	assert.Equal(t, `read "token" failed`, wf.Message())
	assert.Equal(t, cause, wf.Cause())
}

func TestLayeredError_Immutable(t *testing.T) {
	base := New(70, 1, "cache", "error.cache.fetch", "fetch failed")

	_ = base.WithMsg("other")
	_ = base.WithData("key", "cohorts")
	_ = base.WithFields(map[string]any{"a": 1})
	_ = base.WithHTTPStatus(http.StatusBadGateway)

	assert.Equal(t, "fetch failed", base.Message())
	assert.Empty(t, base.Data())
	assert.Equal(t, http.StatusInternalServerError, base.HTTPStatus())

	chained := base.WithMsgf("fetch %s failed", "cohorts").
		WithData("key", "cohorts").
		WithFields(map[string]any{"attempts": 3}).
		WithHTTPStatus(http.StatusBadGateway)
	assert.Equal(t, "fetch cohorts failed", chained.Message())
	assert.Len(t, chained.Data(), 2)
	assert.Equal(t, http.StatusBadGateway, chained.HTTPStatus())
}

func TestLayeredError_Is(t *testing.T) {
	a := New(72, 1, "query", "error.query.internal", "internal")
	b := New(72, 1, "query", "error.query.internal", "something else")
	c := New(72, 2, "query", "error.query.disabled", "disabled")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
	assert.False(t, a.Is(errors.New("plain")))
}

func TestAsAndHTTPStatusOf(t *testing.T) {
	le := New(76, 3, "cohort", "error.cohort.not_found", "not found", http.StatusNotFound)
	wrapped := fmt.Errorf("load: %w", le)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, le.Code(), got.Code())
	assert.Equal(t, http.StatusNotFound, HTTPStatusOf(wrapped))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusOf(errors.New("plain")))
}

func TestLayeredError_String(t *testing.T) {
	err := New(10, 1, "validation", "error.validation.failed", "validation failed")
	assert.Equal(t, "LayeredError{code:100001, module:validation, msg:validation failed}", err.String())
	assert.Equal(t,
		"LayeredError{code:100001, module:validation, msg:validation failed, cause:boom}",
		err.Wrap(errors.New("boom")).String())
}
