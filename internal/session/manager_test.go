package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/brokemate/internal/api"
	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackendClient(t *testing.T) (*testutil.Backend, *api.Client) {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.AddUser("user@example.com", "password123")
	client, err := api.NewClient(api.Config{BaseURL: backend.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	return backend, client
}

func TestManagerStartsAnonymousWithEmptyStore(t *testing.T) {
	_, client := newBackendClient(t)
	m, err := NewManager(NewMemoryStore(""), client, nil)
	require.NoError(t, err)

	assert.Equal(t, StateAnonymous, m.State())
	_, err = m.Token()
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestManagerRestoresStoredCredential(t *testing.T) {
	_, client := newBackendClient(t)
	m, err := NewManager(NewMemoryStore("stored"), client, nil)
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, m.State())
	token, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "stored", token)
}

func TestManagerLoginPersists(t *testing.T) {
	_, client := newBackendClient(t)
	store := NewFileStore(filepath.Join(t.TempDir(), "brokemate", "session.json"))
	m, err := NewManager(store, client, nil)
	require.NoError(t, err)

	var transitions []Reason
	m.OnChange(func(_ State, reason Reason) { transitions = append(transitions, reason) })

	token, err := m.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, StateAuthenticated, m.State())

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	// A new process picks the credential up again.
	restarted, err := NewManager(store, client, nil)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, restarted.State())

	assert.Equal(t, []Reason{ReasonLogin}, transitions)
}

func TestManagerLoginFailureLeavesState(t *testing.T) {
	_, client := newBackendClient(t)
	store := NewMemoryStore("")
	m, err := NewManager(store, client, nil)
	require.NoError(t, err)

	_, err = m.Login(context.Background(), "user@example.com", "wrong")
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StateAnonymous, m.State())

	_, err = m.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestManagerLoginConnectionFailure(t *testing.T) {
	backend, client := newBackendClient(t)
	backend.Close()
	m, err := NewManager(NewMemoryStore(""), client, nil)
	require.NoError(t, err)

	_, err = m.Login(context.Background(), "user@example.com", "password123")
	assert.ErrorIs(t, err, common.ErrConnection)
	assert.Equal(t, StateAnonymous, m.State())
}

func TestManagerRegisterDoesNotAuthenticate(t *testing.T) {
	_, client := newBackendClient(t)
	m, err := NewManager(NewMemoryStore(""), client, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "new@example.com", "secret"))
	assert.Equal(t, StateAnonymous, m.State())

	err = m.Register(ctx, "new@example.com", "secret")
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Username already registered", apiErr.Detail)

	_, err = m.RegisterAndLogin(ctx, "other@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestManagerLogoutIsIdempotent(t *testing.T) {
	_, client := newBackendClient(t)
	store := NewMemoryStore("stored")
	m, err := NewManager(store, client, nil)
	require.NoError(t, err)

	var reasons []Reason
	m.OnChange(func(_ State, reason Reason) { reasons = append(reasons, reason) })

	require.NoError(t, m.Logout())
	require.NoError(t, m.Logout())

	assert.Equal(t, StateAnonymous, m.State())
	stored, _ := store.Load()
	assert.Empty(t, stored)
	assert.Equal(t, []Reason{ReasonLogout}, reasons)
}

func TestManagerExpire(t *testing.T) {
	_, client := newBackendClient(t)
	store := NewMemoryStore("stale")
	m, err := NewManager(store, client, nil)
	require.NoError(t, err)

	var reasons []Reason
	m.OnChange(func(_ State, reason Reason) { reasons = append(reasons, reason) })

	notCredential := common.NewAPIError(404, "Expense not found")
	assert.False(t, m.Expire("stale", notCredential))
	assert.False(t, m.Expire("stale", &common.ConnectionError{}))
	assert.Equal(t, StateAuthenticated, m.State())

	rejected := &common.APIError{Status: 401, Detail: "Could not validate credentials", Authenticated: true}
	assert.True(t, m.Expire("stale", rejected))
	assert.Equal(t, StateAnonymous, m.State())
	stored, _ := store.Load()
	assert.Empty(t, stored)
	assert.Equal(t, []Reason{ReasonExpired}, reasons)
}

func TestManagerTransitionReasons(t *testing.T) {
	_, client := newBackendClient(t)
	m, err := NewManager(NewMemoryStore("stored"), client, nil)
	require.NoError(t, err)

	var reasons []Reason
	m.OnChange(func(_ State, reason Reason) { reasons = append(reasons, reason) })
	assert.Empty(t, reasons, "restoring at construction is not a transition")

	require.NoError(t, m.Logout())
	_, err = m.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, m.Logout())

	assert.Equal(t, []Reason{ReasonLogout, ReasonLogin, ReasonLogout}, reasons)
}

func TestManagerExpireIgnoresReplacedToken(t *testing.T) {
	_, client := newBackendClient(t)
	m, err := NewManager(NewMemoryStore("old"), client, nil)
	require.NoError(t, err)

	fresh, err := m.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	rejected := &common.APIError{Status: 401, Detail: "Could not validate credentials", Authenticated: true}
	assert.True(t, m.Expire("old", rejected))

	token, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, fresh, token)
}
