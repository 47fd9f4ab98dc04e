// Package session owns the lifecycle of the bearer credential: it is loaded at startup,
// persisted on login and destroyed on logout or when the backend rejects it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/brokemate/internal/common"
)

// State is the authentication state of the session.
type State int

const (
	// StateAnonymous means no credential is held.
	StateAnonymous State = iota
	// StateAuthenticated means a credential is held. It has not necessarily been validated.
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Reason explains a state transition.
type Reason string

const (
	// ReasonLogin is reported after a successful login.
	ReasonLogin Reason = "login"
	// ReasonLogout is reported after an explicit logout.
	ReasonLogout Reason = "logout"
	// ReasonExpired is reported when the backend rejected the credential.
	ReasonExpired Reason = "expired"
)

// Authenticator performs the credential exchanges with the backend.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) error
}

// Listener is notified after every state transition.
type Listener func(state State, reason Reason)

// Manager is the explicit session context handed to every component that talks to the
// backend on the user's behalf.
type Manager struct {
	store     CredentialStore
	auth      Authenticator
	logger    *slog.Logger
	token     string
	listeners []Listener
	mu        sync.RWMutex
}

// NewManager creates a Manager and restores any credential found in store. The restored
// credential is not validated here; the first authenticated request does that.
func NewManager(store CredentialStore, auth Authenticator, logger *slog.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if auth == nil {
		return nil, fmt.Errorf("authenticator is required")
	}

	m := &Manager{
		store:  store,
		auth:   auth,
		logger: common.OrDefault(logger),
	}

	token, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if token != "" {
		m.token = token
		m.logger.Debug("restored stored credential", "store", store.Location())
	}
	return m, nil
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return StateAnonymous
	}
	return StateAuthenticated
}

// Token returns the held credential, or common.ErrNotAuthenticated.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", common.ErrNotAuthenticated
	}
	return m.token, nil
}

// Location describes where the credential is persisted.
func (m *Manager) Location() string {
	return m.store.Location()
}

// OnChange registers l for state transitions.
func (m *Manager) OnChange(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Login exchanges the username and password for a credential and persists it.
// On failure the session state is left unchanged.
func (m *Manager) Login(ctx context.Context, username, password string) (string, error) {
	if err := checkCredentials(username, password); err != nil {
		return "", err
	}

	token, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", common.NewAPIError(0, "server returned an empty access token")
	}

	if err := m.store.Save(token); err != nil {
		return "", fmt.Errorf("failed to persist credential: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	m.logger.Info("logged in", "username", username)
	m.notify(StateAuthenticated, ReasonLogin)
	return token, nil
}

// Register creates an account. It does not authenticate.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	if err := checkCredentials(username, password); err != nil {
		return err
	}
	if err := m.auth.Register(ctx, username, password); err != nil {
		return err
	}
	m.logger.Info("registered account", "username", username)
	return nil
}

// RegisterAndLogin registers an account and then logs into it.
func (m *Manager) RegisterAndLogin(ctx context.Context, username, password string) (string, error) {
	if err := m.Register(ctx, username, password); err != nil {
		return "", err
	}
	return m.Login(ctx, username, password)
}

// Logout clears the credential from memory and storage. It is safe to call repeatedly.
func (m *Manager) Logout() error {
	return m.clear(ReasonLogout)
}

// Expire performs the forced logout when err shows that token was rejected. It returns
// true if err was a credential failure. A failure for a token that has since been
// replaced by a new login does not end the new session.
func (m *Manager) Expire(token string, err error) bool {
	if !common.IsCredentialInvalid(err) {
		return false
	}

	m.mu.RLock()
	current := m.token
	m.mu.RUnlock()

	if current == "" || current != token {
		return true
	}

	m.logger.Warn("credential rejected by server, logging out")
	if clearErr := m.clear(ReasonExpired); clearErr != nil {
		m.logger.Error("failed to clear rejected credential", "error", clearErr)
	}
	return true
}

func (m *Manager) clear(reason Reason) error {
	m.mu.Lock()
	had := m.token != ""
	m.token = ""
	m.mu.Unlock()

	err := m.store.Clear()
	if had {
		m.notify(StateAnonymous, reason)
	}
	return err
}

func (m *Manager) notify(state State, reason Reason) {
	m.mu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.RUnlock()
	for _, l := range listeners {
		l(state, reason)
	}
}

func checkCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return common.NewValidationError("username", "is required")
	}
	if password == "" {
		return common.NewValidationError("password", "is required")
	}
	return nil
}

// IsExpired reports whether err should be shown as "session expired".
func IsExpired(err error) bool {
	return common.IsCredentialInvalid(err) || errors.Is(err, common.ErrNotAuthenticated)
}
