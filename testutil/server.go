package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/retry"
)

// Server serves a FakeAPI on a local listener for tests that go through
// the real HTTP transport.
type Server struct {
	*FakeAPI
	URL string
}

// NewServer starts a FakeAPI and stops it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	api := NewFakeAPI()
	srv := httptest.NewServer(api.Engine)
	t.Cleanup(srv.Close)
	return &Server{FakeAPI: api, URL: srv.URL}
}

// Client returns an httpclient pointed at the server.
func (s *Server) Client(opts ...httpclient.Option) *httpclient.Client {
	return httpclient.NewClient(append([]httpclient.Option{httpclient.WithBaseURL(s.URL)}, opts...)...)
}

// FastRetryPolicy is a read retry policy with millisecond delays.
func FastRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:      3,
		BaseDelay:        time.Millisecond,
		NetworkBaseDelay: time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		Multiplier:       2,
	}
}
