package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionInit_NoStoredToken(t *testing.T) {
	ts := newTestServer(t)
	session := NewSession(NewAPIClient(ts.url, 0, nil), NewMemoryTokenStore(), nil, zap.NewNop())

	require.NoError(t, session.Init(t.Context()))

	_, ok := session.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, ts.paths(), "no request expected without a stored token")
}

func TestSessionInit_RestoresUser(t *testing.T) {
	ts := newTestServer(t)
	_, first := loggedInSession(t, ts)

	store := NewMemoryTokenStore()
	require.NoError(t, store.Save(first.Token()))

	session := NewSession(NewAPIClient(ts.url, 0, nil), store, nil, zap.NewNop())
	require.NoError(t, session.Init(t.Context()))

	user, ok := session.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@x.com", user.Email)
	assert.Equal(t, first.Token(), session.Token())
}

func TestSessionInit_InvalidTokenClearsStore(t *testing.T) {
	ts := newTestServer(t)
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save("stale-token"))

	session := NewSession(NewAPIClient(ts.url, 0, nil), store, nil, zap.NewNop())
	require.NoError(t, session.Init(t.Context()))

	_, ok := session.CurrentUser()
	assert.False(t, ok)
	stored, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSessionLoginLogout_Navigate(t *testing.T) {
	ts := newTestServer(t)
	api := NewAPIClient(ts.url, 0, nil)
	store := NewMemoryTokenStore()
	nav := &recordingNavigator{}
	session := NewSession(api, store, nav, zap.NewNop())
	auth := NewAuthView(api, session)

	_, err := auth.Register(t.Context(), "Ana", "ana@x.com", "pw123")
	require.NoError(t, err)
	require.NoError(t, auth.Login(t.Context(), "ana@x.com", "pw123"))

	user, ok := session.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ana", user.Name)
	stored, _ := store.Load()
	assert.Equal(t, session.Token(), stored)

	require.NoError(t, session.Logout())
	_, ok = session.CurrentUser()
	assert.False(t, ok)
	stored, _ = store.Load()
	assert.Empty(t, stored)
	assert.Equal(t, []string{ViewDashboard, ViewAuth}, nav.views)
}

func TestAuthViewLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	api := NewAPIClient(ts.url, 0, nil)
	nav := &recordingNavigator{}
	session := NewSession(api, NewMemoryTokenStore(), nav, zap.NewNop())

	err := NewAuthView(api, session).Login(t.Context(), "ghost@x.com", "pw")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Empty(t, nav.views)
}
