package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jafsabakes/storefront/credstore"
)

// ScratchFactory builds the ephemeral scratch storage for a profile.
type ScratchFactory func(profileID string) Scratch

// Registry hands out one Manager per profile ID, constructing and hydrating
// it on first sight. Managers live for the process lifetime; their persisted
// credentials live in the underlying store.
type Registry struct {
	store      credstore.Store
	authn      Authenticator
	scratchFor ScratchFactory
	loginPath  string
	log        zerolog.Logger

	mu       sync.Mutex
	managers map[string]*Manager
}

// RegistryOption defines a function type to modify the Registry instance.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger passed to constructed managers.
func WithRegistryLogger(log zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = log
	}
}

// WithScratchFactory attaches per-profile scratch storage to managers.
func WithScratchFactory(factory ScratchFactory) RegistryOption {
	return func(r *Registry) {
		r.scratchFor = factory
	}
}

// WithRegistryLoginPath overrides the login path on constructed managers.
func WithRegistryLoginPath(path string) RegistryOption {
	return func(r *Registry) {
		r.loginPath = path
	}
}

// NewRegistry creates a registry over the given credential store and
// authentication endpoint.
func NewRegistry(store credstore.Store, authn Authenticator, options ...RegistryOption) *Registry {
	r := &Registry{
		store:     store,
		authn:     authn,
		loginPath: DefaultLoginPath,
		log:       zerolog.Nop(),
		managers:  make(map[string]*Manager),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Manager returns the profile's session manager, hydrating a new one from
// the credential store on first access.
func (r *Registry) Manager(ctx context.Context, profileID string) (*Manager, error) {
	r.mu.Lock()
	if m, ok := r.managers[profileID]; ok {
		r.mu.Unlock()
		// No-op unless the manager is still Uninitialized.
		if err := m.Hydrate(ctx); err != nil {
			r.log.Warn().Err(err).Str("profile_id", profileID).Msg("session hydration failed")
		}
		return m, nil
	}
	r.mu.Unlock()

	opts := []ManagerOption{
		WithLogger(r.log.With().Str("profile_id", profileID).Logger()),
		WithLoginPath(r.loginPath),
	}
	if r.scratchFor != nil {
		opts = append(opts, WithScratch(r.scratchFor(profileID)))
	}

	m, err := NewManager(credstore.ForProfile(r.store, profileID), r.authn, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// Another request may have constructed the manager meanwhile; keep the
	// first one so session state stays single-sourced.
	if existing, ok := r.managers[profileID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.managers[profileID] = m
	r.mu.Unlock()

	if err := m.Hydrate(ctx); err != nil {
		r.log.Warn().Err(err).Str("profile_id", profileID).Msg("session hydration failed")
	}
	return m, nil
}

// Drop forgets the profile's in-memory manager. The persisted credentials
// are untouched; a later Manager call re-hydrates from the store.
func (r *Registry) Drop(profileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, profileID)
}
