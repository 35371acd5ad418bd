package event

import (
	"context"
	"fmt"
	"time"

	"github.com/Vayras/admin-frontend-sub001/logger"
	"go.uber.org/zap"
)

// Next continues with the next interceptor or the listeners.
type Next func(ctx context.Context, event Event) error

// Interceptor wraps every dispatch, for logging, filtering or recovery.
type Interceptor func(ctx context.Context, event Event, next Next) error

// RecoverInterceptor turns a listener panic into an error.
func RecoverInterceptor(log *logger.CtxZapLogger) Interceptor {
	return func(ctx context.Context, event Event, next Next) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("event %s: listener panic: %v", event.Name(), r)
				if log != nil {
					log.ErrorCtx(ctx, "event listener panicked", zap.String("event", event.Name()), zap.Any("panic", r))
				}
			}
		}()
		return next(ctx, event)
	}
}

// LoggingInterceptor logs every dispatch at debug level.
func LoggingInterceptor(log *logger.CtxZapLogger) Interceptor {
	return func(ctx context.Context, event Event, next Next) error {
		start := time.Now()
		err := next(ctx, event)
		log.DebugCtx(ctx, "event dispatched",
			zap.String("event", event.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return err
	}
}
