package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jafsabakes/storefront/bakeryapi"
	"github.com/jafsabakes/storefront/credstore"
)

// DefaultLoginPath is where Logout directs the presentation layer.
const DefaultLoginPath = "/login"

// Authenticator is the external authentication endpoint contract.
// *bakeryapi.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (bakeryapi.TokenPair, error)
}

// Scratch is session-scoped ephemeral storage that logout also clears,
// independent of the credential store.
type Scratch interface {
	Clear(ctx context.Context) error
}

// Manager is the single source of truth for "am I logged in, as whom" over
// one profile's lifetime. It mediates between the authentication endpoint,
// the token decoder and the credential store.
//
// Lifecycle: Uninitialized -> Hydrating -> {Authenticated, Anonymous}, then
// Authenticated <-> Anonymous via Login/Logout.
type Manager struct {
	store     credstore.ProfileStore
	authn     Authenticator
	scratch   Scratch
	loginPath string
	log       zerolog.Logger

	mu            sync.RWMutex
	state         State
	user          *User
	loginInFlight bool
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// WithScratch attaches ephemeral storage that Logout clears.
func WithScratch(scratch Scratch) ManagerOption {
	return func(m *Manager) {
		m.scratch = scratch
	}
}

// WithLoginPath overrides the path Logout redirects to.
func WithLoginPath(path string) ManagerOption {
	return func(m *Manager) {
		m.loginPath = path
	}
}

// NewManager creates a Manager in the Uninitialized state. Call Hydrate
// before consulting it.
func NewManager(store credstore.ProfileStore, authn Authenticator, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] credential store is required")
	}
	if authn == nil {
		return nil, errors.New("[NewManager] authenticator is required")
	}

	m := &Manager{
		store:     store,
		authn:     authn,
		loginPath: DefaultLoginPath,
		log:       zerolog.Nop(),
		state:     StateUninitialized,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Hydrate restores the session from the credential store. A persisted access
// token plus a parseable profile snapshot yields Authenticated without any
// network call; anything else yields Anonymous. A profile that fails to parse
// is a corrupted session: the store is cleared and the outcome is Anonymous,
// never an error. Hydrating twice is a no-op.
func (m *Manager) Hydrate(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return nil
	}
	m.state = StateHydrating
	m.mu.Unlock()

	creds, err := m.store.Load(ctx)
	if err != nil {
		m.setAnonymous()
		return errors.Wrap(err, "[Manager.Hydrate] store load")
	}

	if creds.AccessToken == "" {
		m.setAnonymous()
		return nil
	}

	if creds.ProfileJSON == "" {
		// A token without its profile snapshot is a half-written session.
		m.log.Warn().Msg("stored token without profile snapshot, clearing session")
		m.clearCorrupted(ctx)
		return nil
	}

	user, err := DecodeProfile(creds.ProfileJSON)
	if err != nil {
		m.log.Warn().Err(err).Msg("stored profile failed to parse, clearing session")
		m.clearCorrupted(ctx)
		return nil
	}

	m.mu.Lock()
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()
	return nil
}

// Login authenticates against the external endpoint, decodes the returned
// access token, persists the credentials and profile snapshot, and moves the
// session to Authenticated. On any failure the session stays exactly as it
// was and nothing is written to the store; the returned error is
// *bakeryapi.AuthError for rejected credentials, *DecodeError for a malformed
// token, or a transport error otherwise. Use FailureMessage to render it.
//
// Concurrent Login calls are a caller error; the presentation layer must
// block duplicate submissions while Loading reports true.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*User, error) {
	m.mu.Lock()
	m.loginInFlight = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loginInFlight = false
		m.mu.Unlock()
	}()

	pair, err := m.authn.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] authenticate")
	}

	user, err := DecodeAccessToken(pair.Access, creds.Username)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] decode token")
	}

	profileJSON, err := EncodeProfile(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] encode profile")
	}

	if err := m.store.Save(ctx, credstore.Credentials{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ProfileJSON:  profileJSON,
	}); err != nil {
		// A half-written store must not back a live session.
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.log.Error().Err(clearErr).Msg("failed to clear store after save failure")
		}
		return nil, errors.Wrap(err, "[Manager.Login] persist credentials")
	}

	m.mu.Lock()
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.log.Info().Str("username", user.Username).Bool("is_staff", user.IsStaff).Msg("login succeeded")
	return &user, nil
}

// Logout clears the credential store and any session-scoped scratch storage,
// drops the in-memory user, and signals the presentation layer to navigate to
// the login path. Safe to call when already Anonymous.
func (m *Manager) Logout(ctx context.Context, redirect func(path string)) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error().Err(err).Msg("failed to clear credential store on logout")
	}
	if m.scratch != nil {
		if err := m.scratch.Clear(ctx); err != nil {
			m.log.Error().Err(err).Msg("failed to clear scratch storage on logout")
		}
	}

	m.setAnonymous()

	if redirect != nil {
		redirect(m.loginPath)
	}
}

// IsAuthenticated reports whether both the in-memory session and the
// credential store agree that a user is logged in. A torn state, in-memory
// user without a persisted token or the reverse, resolves to false.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	m.mu.RLock()
	user := m.user
	m.mu.RUnlock()
	if user == nil {
		return false
	}

	creds, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("credential store unreadable, treating session as unauthenticated")
		return false
	}
	if creds.AccessToken == "" {
		m.log.Debug().Str("username", user.Username).Msg("in-memory user without persisted token")
		return false
	}
	return true
}

// AccessToken returns the persisted access token for the session, or an empty
// string when the profile has none.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	creds, err := m.store.Load(ctx)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.AccessToken] store load")
	}
	return creds.AccessToken, nil
}

// IsAdmin reports whether the current user carries a staff or superuser flag.
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.IsAdmin()
}

// CurrentUser returns a copy of the session's user, or nil when logged out.
func (m *Manager) CurrentUser() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// State returns the manager's lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Loading reports true only during initial hydration or an in-flight login.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateHydrating || m.loginInFlight
}

// clearCorrupted self-heals an unusable persisted session: the store is
// wiped and the outcome is Anonymous, never an error.
func (m *Manager) clearCorrupted(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error().Err(err).Msg("failed to clear corrupted session")
	}
	m.setAnonymous()
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.user = nil
	m.state = StateAnonymous
	m.mu.Unlock()
}
