// Package memory implements the domain store interfaces with in-process
// maps. It backs demo mode, where all state lives for the lifetime of the
// session and nothing is persisted.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/patrickmak/papertrader/internal/domain"
)

// MarketStore implements domain.MarketStore in memory.
type MarketStore struct {
	mu      sync.RWMutex
	markets map[int64]domain.Market
}

// NewMarketStore creates an empty MarketStore.
func NewMarketStore() *MarketStore {
	return &MarketStore{markets: make(map[int64]domain.Market)}
}

// Upsert inserts or replaces a market.
func (s *MarketStore) Upsert(_ context.Context, m domain.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.UpdatedAt = time.Now().UTC()
	s.markets[m.ID] = m
	return nil
}

// GetByID retrieves a market by ID.
func (s *MarketStore) GetByID(_ context.Context, id int64) (domain.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

// ListActive returns active markets, optionally filtered by category,
// ordered by ID for stable pagination.
func (s *MarketStore) ListActive(_ context.Context, category string, opts domain.ListOpts) ([]domain.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Market
	for _, m := range s.markets {
		if m.Status != domain.MarketStatusActive {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return paginate(out, opts), nil
}

// UpdatePrices sets the YES/NO pair for a market.
func (s *MarketStore) UpdatePrices(_ context.Context, id int64, yesTicks, noTicks int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markets[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.YesTicks = yesTicks
	m.NoTicks = noTicks
	m.UpdatedAt = time.Now().UTC()
	s.markets[id] = m
	return nil
}

// AddVolume adds the traded notional to the market's running volume.
func (s *MarketStore) AddVolume(_ context.Context, id int64, amountMicros int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markets[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.VolumeMicros += amountMicros
	s.markets[id] = m
	return nil
}

// Count returns the number of stored markets.
func (s *MarketStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.markets)), nil
}

// paginate applies Limit/Offset to an already-ordered slice.
func paginate[T any](items []T, opts domain.ListOpts) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return nil
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

// Compile-time interface check.
var _ domain.MarketStore = (*MarketStore)(nil)
