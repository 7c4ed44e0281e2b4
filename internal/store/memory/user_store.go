package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmak/papertrader/internal/domain"
)

// UserStore implements domain.UserStore in memory.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

// Create inserts a new user; an existing ID is an error.
func (s *UserStore) Create(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return nil
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// UpdateBalance sets the user's balance.
func (s *UserStore) UpdateBalance(_ context.Context, id string, balanceMicros int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.BalanceMicros = balanceMicros
	s.users[id] = u
	return nil
}

// Compile-time interface check.
var _ domain.UserStore = (*UserStore)(nil)
