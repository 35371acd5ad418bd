package session

import (
	"context"

	"github.com/Vayras/admin-frontend-sub001/logger"
)

// Navigator moves the user to the login view.
type Navigator interface {
	NavigateToLogin(ctx context.Context)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context)

func (f NavigatorFunc) NavigateToLogin(ctx context.Context) {
	f(ctx)
}

// Option configures a Manager.
type Option func(*Manager)

func WithNavigator(n Navigator) Option {
	return func(m *Manager) {
		if n != nil {
			m.navigator = n
		}
	}
}

func WithLogger(l *logger.CtxZapLogger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithChangeListener is called with the new token after every change, local or external.
func WithChangeListener(fn func(ctx context.Context, token string)) Option {
	return func(m *Manager) {
		if fn != nil {
			m.listeners = append(m.listeners, fn)
		}
	}
}
