package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/patrickmak/papertrader/internal/domain"
)

// sessionKey stores the single demo session; the demo supports one user per
// deployment.
const sessionKey = "session:current"

// SessionStore implements domain.SessionStore using a Redis JSON blob.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a SessionStore backed by the given Client.
func NewSessionStore(c *Client) *SessionStore {
	return &SessionStore{rdb: c.Underlying()}
}

// sessionUser is the JSON shape persisted for the session.
type sessionUser struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BalanceMicros int64     `json:"balance_micros"`
	CreatedAt     time.Time `json:"created_at"`
}

// Current returns the persisted user, or domain.ErrNoSession when the key
// is absent.
func (s *SessionStore) Current(ctx context.Context) (domain.User, error) {
	data, err := s.rdb.Get(ctx, sessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.User{}, domain.ErrNoSession
		}
		return domain.User{}, fmt.Errorf("redis: get session: %w", err)
	}

	var u sessionUser
	if err := json.Unmarshal(data, &u); err != nil {
		return domain.User{}, fmt.Errorf("redis: unmarshal session: %w", err)
	}
	return domain.User{
		ID:            u.ID,
		Name:          u.Name,
		BalanceMicros: u.BalanceMicros,
		CreatedAt:     u.CreatedAt,
	}, nil
}

// Persist stores the user as the current session.
func (s *SessionStore) Persist(ctx context.Context, user domain.User) error {
	data, err := json.Marshal(sessionUser{
		ID:            user.ID,
		Name:          user.Name,
		BalanceMicros: user.BalanceMicros,
		CreatedAt:     user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("redis: marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set session: %w", err)
	}
	return nil
}

// Clear drops the current session.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("redis: clear session: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SessionStore = (*SessionStore)(nil)
