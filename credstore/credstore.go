// Package credstore provides durable key-value persistence for per-profile
// session credentials: an access token, a refresh token and a cached user
// profile snapshot. A profile corresponds to one browser session; credentials
// survive application restarts but not an explicit Clear.
package credstore

import "context"

// Credentials holds the three values persisted for a profile. Fields are
// empty strings when never written. ProfileJSON is kept as raw JSON at rest;
// it is parsed (and validated) by the session layer, so a corrupted value is
// returned as-is rather than failing the load.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ProfileJSON  string
}

// Empty reports whether no credential values are present.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.ProfileJSON == ""
}

// Store persists credentials per profile ID.
type Store interface {
	// Save writes all three credential values for the profile.
	Save(ctx context.Context, profileID string, creds Credentials) error
	// Load returns the stored credentials. A profile that was never written
	// yields zero-value Credentials, not an error.
	Load(ctx context.Context, profileID string) (Credentials, error)
	// Clear removes all credential values for the profile. Clearing an
	// already-empty profile is a no-op.
	Clear(ctx context.Context, profileID string) error
}

// ProfileStore is the single-profile view consumed by the session manager.
type ProfileStore interface {
	Save(ctx context.Context, creds Credentials) error
	Load(ctx context.Context) (Credentials, error)
	Clear(ctx context.Context) error
}

type profileStore struct {
	store     Store
	profileID string
}

// ForProfile binds a Store to a single profile ID.
func ForProfile(store Store, profileID string) ProfileStore {
	return &profileStore{store: store, profileID: profileID}
}

func (p *profileStore) Save(ctx context.Context, creds Credentials) error {
	return p.store.Save(ctx, p.profileID, creds)
}

func (p *profileStore) Load(ctx context.Context) (Credentials, error) {
	return p.store.Load(ctx, p.profileID)
}

func (p *profileStore) Clear(ctx context.Context) error {
	return p.store.Clear(ctx, p.profileID)
}
