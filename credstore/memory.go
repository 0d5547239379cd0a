package credstore

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store. Suitable for
// development and tests; credentials do not survive a process restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Credentials
}

// NewInMemoryStore creates a new in-memory credential store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[string]Credentials),
	}
}

var _ Store = (*InMemoryStore)(nil)

// Save writes all three credential values for the profile.
func (s *InMemoryStore) Save(ctx context.Context, profileID string, creds Credentials) error {
	if profileID == "" {
		return fmt.Errorf("profileID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profileID] = creds
	return nil
}

// Load retrieves the stored credentials for the profile.
func (s *InMemoryStore) Load(ctx context.Context, profileID string) (Credentials, error) {
	if profileID == "" {
		return Credentials{}, fmt.Errorf("profileID is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profiles[profileID], nil
}

// Clear removes the profile's credentials. Idempotent.
func (s *InMemoryStore) Clear(ctx context.Context, profileID string) error {
	if profileID == "" {
		return fmt.Errorf("profileID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, profileID)
	return nil
}
