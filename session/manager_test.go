package session

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vayras/admin-frontend-sub001/httpclient"
	"github.com/Vayras/admin-frontend-sub001/logger"
	"github.com/Vayras/admin-frontend-sub001/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	storage.Store
	err error
}

func (s *brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, s.err }
func (s *brokenStore) Set(context.Context, string, string) error { return s.err }
func (s *brokenStore) Remove(context.Context, string) error { return s.err }

type navCounter struct {
	calls atomic.Int32
}

func (n *navCounter) NavigateToLogin(context.Context) {
	n.calls.Add(1)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTab(t *testing.T) (*storage.MemoryBackend, *storage.MemoryStore) {
	t.Helper()
	backend := storage.NewMemoryBackend(nil)
	t.Cleanup(backend.Close)
	return backend, backend.Tab()
}

func TestManager_LoginLogout(t *testing.T) {
	ctx := context.Background()
	_, tab := newTab(t)
	nav := &navCounter{}
	m := NewManager(tab, WithNavigator(nav))

	assert.False(t, m.IsAuthenticated())

	require.NoError(t, m.Login(ctx, "tok"))
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "tok", m.BearerToken(ctx))
	v, ok, err := tab.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	m.Logout(ctx)
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, int32(1), nav.calls.Load())
	_, ok, err = tab.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_Login_EmptyToken(t *testing.T) {
	_, tab := newTab(t)
	m := NewManager(tab)
	assert.ErrorIs(t, m.Login(context.Background(), ""), ErrEmptyToken)
	assert.False(t, m.IsAuthenticated())
}

func TestManager_PersistenceFailuresDoNotBlock(t *testing.T) {
	ctx := context.Background()
	tl := logger.NewTestCtxLogger()
	nav := &navCounter{}
	m := NewManager(&brokenStore{err: errors.New("quota exceeded")}, WithLogger(tl.CtxZapLogger), WithNavigator(nav))

	require.NoError(t, m.Login(ctx, "tok"))
	assert.True(t, m.IsAuthenticated())
	assert.True(t, tl.HasLog("WARN", "persist session token failed"))

	m.Logout(ctx)
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, int32(1), nav.calls.Load())
	assert.True(t, tl.HasLog("WARN", "remove session token failed"))
}

func TestManager_ExternalChanges(t *testing.T) {
	ctx := context.Background()
	backend, tab := newTab(t)
	other := backend.Tab()

	nav := &navCounter{}
	m := NewManager(tab, WithNavigator(nav))
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Start(ctx))
	defer m.Close()

	otherManager := NewManager(other)
	require.NoError(t, otherManager.Login(ctx, "from-other-tab"))
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "from-other-tab", m.Token())

	otherManager.Logout(ctx)
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, int32(0), nav.calls.Load())

	require.NoError(t, other.Set(ctx, "unrelated", "x"))
	assert.False(t, m.IsAuthenticated())
}

func TestManager_Close_StopsSync(t *testing.T) {
	ctx := context.Background()
	backend, tab := newTab(t)
	other := backend.Tab()

	m := NewManager(tab)
	require.NoError(t, m.Start(ctx))
	m.Close()
	m.Close()

	require.NoError(t, other.Set(ctx, TokenKey, "tok"))
	assert.False(t, m.IsAuthenticated())
}

func TestManager_HandleError(t *testing.T) {
	ctx := context.Background()
	_, tab := newTab(t)
	nav := &navCounter{}
	m := NewManager(tab, WithNavigator(nav))
	require.NoError(t, m.Login(ctx, "tok"))

	assert.False(t, m.HandleError(ctx, nil))
	assert.False(t, m.HandleError(ctx, &httpclient.HTTPError{Status: http.StatusForbidden}))
	assert.False(t, m.HandleError(ctx, errors.New("boom")))
	assert.True(t, m.IsAuthenticated())

	assert.True(t, m.HandleError(ctx, &httpclient.HTTPError{Status: http.StatusUnauthorized}))
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, int32(1), nav.calls.Load())
}

func TestManager_Restore(t *testing.T) {
	ctx := context.Background()
	_, tab := newTab(t)

	m := NewManager(tab)
	ok, err := m.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tab.Set(ctx, TokenKey, "persisted"))
	ok, err = m.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", m.Token())

	broken := NewManager(&brokenStore{err: errors.New("disk gone")})
	_, err = broken.Restore(ctx)
	assert.ErrorIs(t, err, ErrRestore)
}

func TestManager_Claims(t *testing.T) {
	ctx := context.Background()
	_, tab := newTab(t)
	m := NewManager(tab)

	_, err := m.Claims()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, m.Login(ctx, signToken(t, jwt.MapClaims{
		"sub":   "u1",
		"name":  "Satoshi",
		"email": "satoshi@example.com",
		"role":  "ADMIN",
		"exp":   exp.Unix(),
	})))

	claims, err := m.Claims()
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "Satoshi", claims.Name)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.IsExpired(time.Now()))
	assert.True(t, claims.IsExpired(exp.Add(time.Second)))

	require.NoError(t, m.Login(ctx, "not-a-jwt"))
	_, err = m.Claims()
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestManager_ChangeListener(t *testing.T) {
	ctx := context.Background()
	_, tab := newTab(t)

	var seen []string
	m := NewManager(tab, WithChangeListener(func(_ context.Context, token string) {
		seen = append(seen, token)
	}))

	require.NoError(t, m.Login(ctx, "a"))
	require.NoError(t, m.Login(ctx, "a"))
	m.Logout(ctx)
	assert.Equal(t, []string{"a", ""}, seen)
}
