package memory

import (
	"context"
	"sync"

	"github.com/patrickmak/papertrader/internal/domain"
)

// PriceCache implements domain.PriceCache in memory for demo mode.
type PriceCache struct {
	mu    sync.RWMutex
	pairs map[int64]domain.PricePair
}

// NewPriceCache creates an empty PriceCache.
func NewPriceCache() *PriceCache {
	return &PriceCache{pairs: make(map[int64]domain.PricePair)}
}

// SetPair stores the latest pair for a market.
func (c *PriceCache) SetPair(_ context.Context, marketID int64, pair domain.PricePair) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs[marketID] = pair
	return nil
}

// GetPair returns the latest pair for a market, or domain.ErrNotFound.
func (c *PriceCache) GetPair(_ context.Context, marketID int64) (domain.PricePair, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pair, ok := c.pairs[marketID]
	if !ok {
		return domain.PricePair{}, domain.ErrNotFound
	}
	return pair, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
