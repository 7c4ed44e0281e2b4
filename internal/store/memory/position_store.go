package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/patrickmak/papertrader/internal/domain"
)

// PositionStore implements domain.PositionStore in memory. Positions are
// keyed by (user, market, side); the map key encodes all three.
type PositionStore struct {
	mu        sync.RWMutex
	positions map[string]domain.Position
}

// NewPositionStore creates an empty PositionStore.
func NewPositionStore() *PositionStore {
	return &PositionStore{positions: make(map[string]domain.Position)}
}

func positionKey(userID string, marketID int64, side domain.Side) string {
	return fmt.Sprintf("%s|%d|%s", userID, marketID, side)
}

// Upsert inserts or replaces the position for its (user, market, side) key.
func (s *PositionStore) Upsert(_ context.Context, p domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[positionKey(p.UserID, p.MarketID, p.Side)] = p
	return nil
}

// GetByKey retrieves the position for a (user, market, side) key.
func (s *PositionStore) GetByKey(_ context.Context, userID string, marketID int64, side domain.Side) (domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[positionKey(userID, marketID, side)]
	if !ok {
		return domain.Position{}, domain.ErrNotFound
	}
	return p, nil
}

// ListByUser returns all positions held by a user, oldest purchase first.
func (s *PositionStore) ListByUser(_ context.Context, userID string) ([]domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Position
	for _, p := range s.positions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PurchasedAt.Equal(out[j].PurchasedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].PurchasedAt.Before(out[j].PurchasedAt)
	})
	return out, nil
}

// Compile-time interface check.
var _ domain.PositionStore = (*PositionStore)(nil)
