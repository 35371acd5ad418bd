package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vayras/admin-frontend-sub001/errcode"
)

func TestClassify(t *testing.T) {
	validation := errcode.New(10, 1, "validation", "error.validation.failed", "name is required", http.StatusBadRequest)

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"401", &HTTPError{Status: http.StatusUnauthorized}, KindUnauthorized},
		{"wrapped 401", fmt.Errorf("load me: %w", &HTTPError{Status: http.StatusUnauthorized}), KindUnauthorized},
		{"404", &HTTPError{Status: http.StatusNotFound}, KindApplication},
		{"validation", validation, KindApplication},
		{"network", &NetworkError{Err: errors.New("dial tcp: refused")}, KindNetwork},
		{"deadline", context.DeadlineExceeded, KindNetwork},
		{"cancel", context.Canceled, KindNetwork},
		{"internal layered", errcode.New(99, 1, "x", "error.x", "boom"), KindInternal},
		{"plain", errors.New("nil pointer somewhere"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestHTTPError_Message(t *testing.T) {
	assert.Equal(t, "bad", extractMessage([]byte(`{"message":"bad"}`)))
	assert.Equal(t, "worse", extractMessage([]byte(`{"error":"worse"}`)))
	assert.Equal(t, "", extractMessage([]byte(`{"other":1}`)))
	assert.Equal(t, "gateway down", extractMessage([]byte("gateway down\n")))

	e := &HTTPError{Status: 404, Method: "GET", URL: "http://api/cohorts/x"}
	assert.Equal(t, "GET http://api/cohorts/x: 404 Not Found", e.Error())
}

func TestNetworkError_Temporary(t *testing.T) {
	assert.True(t, (&NetworkError{Err: errors.New("reset")}).Temporary())
	assert.False(t, (&NetworkError{Err: context.Canceled}).Temporary())
	assert.Equal(t, "unauthorized", KindUnauthorized.String())
}
