// Package query builds typed, cache-backed reads on top of cache.Client:
// auth-aware error handling, change notification by deep equality, a
// loading flag tied to in-flight fetches, reset and invalidation by payload.
package query

import (
	"net/url"

	"github.com/Vayras/admin-frontend-sub001/cache"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Env is the process-scoped state every definition reads through.
// Build one at startup and pass it to every constructor.
type Env struct {
	Cache   *cache.Client
	Session *session.Manager
	Logger  *logger.CtxZapLogger
	Tracer  trace.Tracer

	// Params returns the current search parameters handed to fetch functions.
	Params func() url.Values
}

// NewEnv creates an Env. sess may be nil, in which case authorization
// failures are reported but nobody is logged out.
func NewEnv(c *cache.Client, sess *session.Manager, log *logger.CtxZapLogger) *Env {
	if log == nil {
		log = logger.GetLogger("query")
	}
	return &Env{
		Cache:   c,
		Session: sess,
		Logger:  log,
		Tracer:  otel.Tracer("query"),
	}
}

func (e *Env) params() url.Values {
	if e.Params == nil {
		return url.Values{}
	}
	if p := e.Params(); p != nil {
		return p
	}
	return url.Values{}
}
