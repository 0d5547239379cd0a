package server

import (
	"context"
	"sync"

	"github.com/jafsabakes/storefront/session"
)

// FlashStore holds one-shot notices per browser profile, shown on the next
// rendered page. It doubles as the session-scoped scratch storage that logout
// wipes alongside the credentials.
type FlashStore struct {
	mu       sync.Mutex
	messages map[string][]string
}

func NewFlashStore() *FlashStore {
	return &FlashStore{messages: make(map[string][]string)}
}

// Add queues a notice for the profile.
func (f *FlashStore) Add(profileID, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[profileID] = append(f.messages[profileID], message)
}

// Pop returns and clears the profile's queued notices.
func (f *FlashStore) Pop(profileID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	queued := f.messages[profileID]
	delete(f.messages, profileID)
	return queued
}

// ScratchFor binds the store to one profile as session.Scratch.
func (f *FlashStore) ScratchFor(profileID string) session.Scratch {
	return &profileScratch{store: f, profileID: profileID}
}

type profileScratch struct {
	store     *FlashStore
	profileID string
}

func (p *profileScratch) Clear(ctx context.Context) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	delete(p.store.messages, p.profileID)
	return nil
}
