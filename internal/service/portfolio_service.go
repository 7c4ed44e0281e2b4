package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/patrickmak/papertrader/internal/domain"
	"github.com/patrickmak/papertrader/internal/portfolio"
)

// PortfolioService loads a user's positions, resolves their markets, and
// runs the valuator against current prices.
type PortfolioService struct {
	positions domain.PositionStore
	markets   domain.MarketStore
	logger    *slog.Logger
}

// NewPortfolioService creates a PortfolioService with all required
// dependencies.
func NewPortfolioService(
	positions domain.PositionStore,
	markets domain.MarketStore,
	logger *slog.Logger,
) *PortfolioService {
	return &PortfolioService{
		positions: positions,
		markets:   markets,
		logger:    logger,
	}
}

// Valuate revalues all of the user's positions against current market
// prices. Positions whose market can no longer be found end up in the
// valuation's Unpriced list rather than failing the whole call.
func (s *PortfolioService) Valuate(ctx context.Context, userID string) (portfolio.Valuation, error) {
	positions, err := s.positions.ListByUser(ctx, userID)
	if err != nil {
		return portfolio.Valuation{}, fmt.Errorf("portfolio_service: list positions: %w", err)
	}

	markets := make(map[int64]domain.Market, len(positions))
	for _, pos := range positions {
		if _, ok := markets[pos.MarketID]; ok {
			continue
		}
		m, err := s.markets.GetByID(ctx, pos.MarketID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.WarnContext(ctx, "portfolio_service: market missing for position",
					slog.String("position_id", pos.ID),
					slog.Int64("market_id", pos.MarketID),
				)
				continue
			}
			return portfolio.Valuation{}, fmt.Errorf("portfolio_service: get market %d: %w", pos.MarketID, err)
		}
		markets[pos.MarketID] = m
	}

	return portfolio.Valuate(positions, markets), nil
}
