package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/patrickmak/papertrader/internal/domain"
)

// MarketService handles market discovery for the HTTP layer.
type MarketService struct {
	markets domain.MarketStore
	prices  domain.PriceCache
	logger  *slog.Logger
}

// NewMarketService creates a MarketService with all required dependencies.
func NewMarketService(
	markets domain.MarketStore,
	prices domain.PriceCache,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		markets: markets,
		prices:  prices,
		logger:  logger,
	}
}

// Get retrieves a market by ID, overlaying the cached price pair when one
// is fresher than the stored row. It returns domain.ErrMarketNotFound for
// unknown ids.
func (s *MarketService) Get(ctx context.Context, id int64) (domain.Market, error) {
	m, err := s.markets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Market{}, domain.ErrMarketNotFound
		}
		return domain.Market{}, fmt.Errorf("market_service: get by id %d: %w", id, err)
	}

	// Overlay a newer cached pair; cache errors fall back to the store row.
	if pair, cacheErr := s.prices.GetPair(ctx, id); cacheErr == nil && pair.UpdatedAt.After(m.UpdatedAt) {
		m.YesTicks = pair.YesTicks
		m.NoTicks = pair.NoTicks
		m.UpdatedAt = pair.UpdatedAt
	}

	return m, nil
}

// ListActive returns active markets, optionally filtered by category.
func (s *MarketService) ListActive(ctx context.Context, category string, opts domain.ListOpts) ([]domain.Market, error) {
	markets, err := s.markets.ListActive(ctx, category, opts)
	if err != nil {
		return nil, fmt.Errorf("market_service: list active: %w", err)
	}
	return markets, nil
}

// Count returns the total number of markets.
func (s *MarketService) Count(ctx context.Context) (int64, error) {
	count, err := s.markets.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("market_service: count: %w", err)
	}
	return count, nil
}
