package memory

import (
	"context"
	"sync"

	"github.com/patrickmak/papertrader/internal/domain"
)

// SessionStore implements domain.SessionStore in memory. It holds the single
// demo user for the lifetime of the process.
type SessionStore struct {
	mu      sync.RWMutex
	user    domain.User
	present bool
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Current returns the persisted user, or domain.ErrNoSession when none is set.
func (s *SessionStore) Current(_ context.Context) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return domain.User{}, domain.ErrNoSession
	}
	return s.user, nil
}

// Persist stores the user as the current session.
func (s *SessionStore) Persist(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.present = true
	return nil
}

// Clear drops the current session.
func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = domain.User{}
	s.present = false
	return nil
}

// Compile-time interface check.
var _ domain.SessionStore = (*SessionStore)(nil)
