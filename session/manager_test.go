package session_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jafsabakes/storefront/bakeryapi"
	"github.com/jafsabakes/storefront/credstore"
	"github.com/jafsabakes/storefront/session"
)

// fakeAuthenticator scripts the external authentication endpoint.
type fakeAuthenticator struct {
	loginFunc func(ctx context.Context, username, password string) (bakeryapi.TokenPair, error)
	calls     int
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) (bakeryapi.TokenPair, error) {
	f.calls++
	if f.loginFunc == nil {
		return bakeryapi.TokenPair{}, errors.New("unexpected login call")
	}
	return f.loginFunc(ctx, username, password)
}

// fakeScratch records whether session-scoped scratch storage was cleared.
type fakeScratch struct {
	cleared int
}

func (f *fakeScratch) Clear(ctx context.Context) error {
	f.cleared++
	return nil
}

type managerFixture struct {
	store   credstore.Store
	profile credstore.ProfileStore
	authn   *fakeAuthenticator
	scratch *fakeScratch
	manager *session.Manager
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	store := credstore.NewInMemoryStore()
	profile := credstore.ForProfile(store, "profile-1")
	authn := &fakeAuthenticator{}
	scratch := &fakeScratch{}

	m, err := session.NewManager(profile, authn, session.WithScratch(scratch))
	require.NoError(t, err)

	return &managerFixture{
		store:   store,
		profile: profile,
		authn:   authn,
		scratch: scratch,
		manager: m,
	}
}

func acceptingAuthenticator(t *testing.T, claims map[string]any) func(context.Context, string, string) (bakeryapi.TokenPair, error) {
	t.Helper()
	return func(ctx context.Context, username, password string) (bakeryapi.TokenPair, error) {
		return bakeryapi.TokenPair{
			Access:  makeToken(t, claims),
			Refresh: "refresh-token",
		}, nil
	}
}

func TestManager_LoginSuccess(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)
	f.authn.loginFunc = acceptingAuthenticator(t, map[string]any{"user_id": 7, "is_staff": true})

	require.NoError(t, f.manager.Hydrate(ctx))
	require.Equal(t, session.StateAnonymous, f.manager.State())

	user, err := f.manager.Login(ctx, session.Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, &session.User{ID: 7, Username: "admin", IsStaff: true}, user)

	require.Equal(t, session.StateAuthenticated, f.manager.State())
	require.True(t, f.manager.IsAuthenticated(ctx))
	require.True(t, f.manager.IsAdmin())
	require.False(t, f.manager.Loading())

	// All three values persisted.
	creds, err := f.profile.Load(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, creds.AccessToken)
	require.Equal(t, "refresh-token", creds.RefreshToken)
	require.Contains(t, creds.ProfileJSON, `"username":"admin"`)
}

func TestManager_LoginRejected(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)
	f.authn.loginFunc = func(ctx context.Context, username, password string) (bakeryapi.TokenPair, error) {
		return bakeryapi.TokenPair{}, &bakeryapi.AuthError{StatusCode: 401, Detail: "Invalid credentials"}
	}

	require.NoError(t, f.manager.Hydrate(ctx))

	_, err := f.manager.Login(ctx, session.Credentials{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	require.True(t, session.IsRejected(err))
	require.Equal(t, "Invalid credentials", session.FailureMessage(err))

	require.Equal(t, session.StateAnonymous, f.manager.State())
	require.False(t, f.manager.IsAuthenticated(ctx))

	creds, loadErr := f.profile.Load(ctx)
	require.NoError(t, loadErr)
	require.True(t, creds.Empty())
}

func TestManager_LoginNetworkFailure(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)
	f.authn.loginFunc = func(ctx context.Context, username, password string) (bakeryapi.TokenPair, error) {
		return bakeryapi.TokenPair{}, errors.Wrap(bakeryapi.ErrUnreachable, "dial tcp: connection refused")
	}

	require.NoError(t, f.manager.Hydrate(ctx))

	_, err := f.manager.Login(ctx, session.Credentials{Username: "admin", Password: "secret"})
	require.Error(t, err)
	require.False(t, session.IsRejected(err))
	require.Equal(t, session.GenericLoginFailure, session.FailureMessage(err))
	require.Equal(t, session.StateAnonymous, f.manager.State())
}

func TestManager_LoginMalformedToken(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)
	f.authn.loginFunc = func(ctx context.Context, username, password string) (bakeryapi.TokenPair, error) {
		return bakeryapi.TokenPair{Access: "not-a-jwt", Refresh: "r"}, nil
	}

	require.NoError(t, f.manager.Hydrate(ctx))

	_, err := f.manager.Login(ctx, session.Credentials{Username: "admin", Password: "secret"})
	var decodeErr *session.DecodeError
	require.ErrorAs(t, err, &decodeErr)

	// Decode failure must leave the store untouched.
	creds, loadErr := f.profile.Load(ctx)
	require.NoError(t, loadErr)
	require.True(t, creds.Empty())
	require.Equal(t, session.StateAnonymous, f.manager.State())
}

func TestManager_LogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)
	f.authn.loginFunc = acceptingAuthenticator(t, map[string]any{"user_id": 7, "is_staff": true})

	require.NoError(t, f.manager.Hydrate(ctx))
	_, err := f.manager.Login(ctx, session.Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)

	var redirectedTo string
	f.manager.Logout(ctx, func(path string) { redirectedTo = path })

	require.Equal(t, session.DefaultLoginPath, redirectedTo)
	require.Equal(t, session.StateAnonymous, f.manager.State())
	require.False(t, f.manager.IsAuthenticated(ctx))
	require.Nil(t, f.manager.CurrentUser())
	require.Equal(t, 1, f.scratch.cleared)

	creds, err := f.profile.Load(ctx)
	require.NoError(t, err)
	require.True(t, creds.Empty())
}

func TestManager_LogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)

	require.NoError(t, f.manager.Hydrate(ctx))

	f.manager.Logout(ctx, nil)
	f.manager.Logout(ctx, nil)
	require.Equal(t, session.StateAnonymous, f.manager.State())
}

func TestManager_HydrateFromPersistedSession(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)

	profileJSON, err := session.EncodeProfile(session.User{ID: 7, Username: "admin", IsStaff: true})
	require.NoError(t, err)
	require.NoError(t, f.profile.Save(ctx, credstore.Credentials{
		AccessToken:  makeToken(t, map[string]any{"user_id": 7, "is_staff": true}),
		RefreshToken: "refresh-token",
		ProfileJSON:  profileJSON,
	}))

	require.NoError(t, f.manager.Hydrate(ctx))

	require.Equal(t, session.StateAuthenticated, f.manager.State())
	require.Equal(t, &session.User{ID: 7, Username: "admin", IsStaff: true}, f.manager.CurrentUser())
	require.True(t, f.manager.IsAuthenticated(ctx))
	// Hydration never touches the network.
	require.Zero(t, f.authn.calls)
}

func TestManager_HydrateCorruptedProfileSelfHeals(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)

	require.NoError(t, f.profile.Save(ctx, credstore.Credentials{
		AccessToken: "some-token",
		ProfileJSON: "{not valid json",
	}))

	require.NoError(t, f.manager.Hydrate(ctx))

	require.Equal(t, session.StateAnonymous, f.manager.State())
	require.False(t, f.manager.IsAuthenticated(ctx))

	creds, err := f.profile.Load(ctx)
	require.NoError(t, err)
	require.True(t, creds.Empty())
}

func TestManager_HydrateEmptyStore(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)

	require.NoError(t, f.manager.Hydrate(ctx))
	require.Equal(t, session.StateAnonymous, f.manager.State())
	require.False(t, f.manager.Loading())
}

func TestManager_HydrateTokenWithoutProfile(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)

	require.NoError(t, f.profile.Save(ctx, credstore.Credentials{AccessToken: "orphan-token"}))
	require.NoError(t, f.manager.Hydrate(ctx))

	require.Equal(t, session.StateAnonymous, f.manager.State())
	require.False(t, f.manager.IsAuthenticated(ctx))

	// The half-written session is wiped, not left to confuse later checks.
	creds, err := f.profile.Load(ctx)
	require.NoError(t, err)
	require.True(t, creds.Empty())
}

func TestManager_AmbiguousSessionResolvesToAnonymous(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(t)
	f.authn.loginFunc = acceptingAuthenticator(t, map[string]any{"user_id": 7, "is_staff": true})

	require.NoError(t, f.manager.Hydrate(ctx))
	_, err := f.manager.Login(ctx, session.Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)

	// Simulate an external storage clear: in-memory user remains but the
	// persisted token is gone.
	require.NoError(t, f.profile.Clear(ctx))

	require.False(t, f.manager.IsAuthenticated(ctx))
	require.NotNil(t, f.manager.CurrentUser())
}

func TestManager_IsAdminReflectsRoleFlags(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		claims  map[string]any
		isAdmin bool
	}{
		{"staff only", map[string]any{"user_id": 1, "is_staff": true}, true},
		{"superuser only", map[string]any{"user_id": 2, "is_superuser": true}, true},
		{"both flags", map[string]any{"user_id": 3, "is_staff": true, "is_superuser": true}, true},
		{"no flags", map[string]any{"user_id": 4}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newManagerFixture(t)
			f.authn.loginFunc = acceptingAuthenticator(t, tc.claims)

			require.NoError(t, f.manager.Hydrate(ctx))
			_, err := f.manager.Login(ctx, session.Credentials{Username: "user", Password: "pw"})
			require.NoError(t, err)
			require.Equal(t, tc.isAdmin, f.manager.IsAdmin())
		})
	}
}

func TestRegistry_ReusesManagersPerProfile(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemoryStore()
	authn := &fakeAuthenticator{}
	registry := session.NewRegistry(store, authn)

	m1, err := registry.Manager(ctx, "profile-a")
	require.NoError(t, err)
	m2, err := registry.Manager(ctx, "profile-a")
	require.NoError(t, err)
	require.Same(t, m1, m2)

	other, err := registry.Manager(ctx, "profile-b")
	require.NoError(t, err)
	require.NotSame(t, m1, other)
}

func TestRegistry_RehydratesAfterDrop(t *testing.T) {
	ctx := context.Background()
	store := credstore.NewInMemoryStore()
	authn := &fakeAuthenticator{}
	registry := session.NewRegistry(store, authn)

	profileJSON, err := session.EncodeProfile(session.User{ID: 9, Username: "baker"})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "profile-a", credstore.Credentials{
		AccessToken: "tok",
		ProfileJSON: profileJSON,
	}))

	m, err := registry.Manager(ctx, "profile-a")
	require.NoError(t, err)
	require.Equal(t, session.StateAuthenticated, m.State())

	registry.Drop("profile-a")

	rehydrated, err := registry.Manager(ctx, "profile-a")
	require.NoError(t, err)
	require.NotSame(t, m, rehydrated)
	require.Equal(t, session.StateAuthenticated, rehydrated.State())
	require.Equal(t, "baker", rehydrated.CurrentUser().Username)
}
