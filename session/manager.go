// Package session holds the session token: login, logout, cross-context
// synchronization through the storage change feed and forced logout on
// authorization failures.
package session

import (
	"context"
	"sync"

	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/storage"
	"go.uber.org/zap"
)

// TokenKey is the storage key of the session token.
const TokenKey = "token"

// Manager is the single source of truth for the session token in one context.
type Manager struct {
	store     storage.Store
	navigator Navigator
	logger    *logger.CtxZapLogger
	listeners []func(ctx context.Context, token string)

	mu          sync.RWMutex
	token       string
	unsubscribe func()
}

// NewManager creates a manager with no token. Call Restore to pick up a
// persisted one and Start to follow changes made elsewhere.
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		navigator: NavigatorFunc(func(context.Context) {}),
		logger:    logger.GetLogger("session"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login persists token, then adopts it. A persistence failure is logged and
// does not stop the login.
func (m *Manager) Login(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := m.store.Set(ctx, TokenKey, token); err != nil {
		m.logger.WarnCtx(ctx, "persist session token failed", zap.Error(err))
	}
	m.setToken(ctx, token)
	m.logger.InfoCtx(ctx, "logged in")
	return nil
}

// Logout removes the persisted token (best effort), clears it and navigates
// to the login view.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Remove(ctx, TokenKey); err != nil {
		m.logger.WarnCtx(ctx, "remove session token failed", zap.Error(err))
	}
	m.setToken(ctx, "")
	m.logger.InfoCtx(ctx, "logged out")
	m.navigator.NavigateToLogin(ctx)
}

// IsAuthenticated is derived from the token on every call.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// BearerToken has the shape of httpclient.TokenSource.
func (m *Manager) BearerToken(context.Context) string {
	return m.Token()
}

// Claims decodes the current token for display.
func (m *Manager) Claims() (Claims, error) {
	token := m.Token()
	if token == "" {
		return Claims{}, ErrNotAuthenticated
	}
	return ParseClaims(token)
}

// HandleError logs out when err is an authorization failure and reports
// whether it did.
func (m *Manager) HandleError(ctx context.Context, err error) bool {
	if !httpclient.IsUnauthorized(err) {
		return false
	}
	m.logger.WarnCtx(ctx, "authorization rejected, ending session", zap.Error(err))
	m.Logout(ctx)
	return true
}

// Restore adopts the persisted token, if any, and reports whether one was found.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	token, ok, err := m.store.Get(ctx, TokenKey)
	if err != nil {
		return false, ErrRestore.Wrap(err)
	}
	if !ok || token == "" {
		return false, nil
	}
	m.setToken(ctx, token)
	m.logger.DebugCtx(ctx, "session restored")
	return true, nil
}

// Start follows token changes made by other contexts. They update the token
// without navigating. Calling Start again is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return nil
	}

	unsubscribe, err := m.store.Subscribe(func(ctx context.Context, change storage.Change) {
		if change.Key != TokenKey {
			return
		}
		token := ""
		if change.Value != nil {
			token = *change.Value
		}
		m.logger.DebugCtx(ctx, "session token changed elsewhere", zap.Bool("authenticated", token != ""))
		m.setToken(ctx, token)
	})
	if err != nil {
		return err
	}
	m.unsubscribe = unsubscribe
	m.logger.DebugCtx(ctx, "session sync started")
	return nil
}

// Close stops following external changes.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (m *Manager) setToken(ctx context.Context, token string) {
	m.mu.Lock()
	changed := m.token != token
	m.token = token
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range m.listeners {
		fn(ctx, token)
	}
}
