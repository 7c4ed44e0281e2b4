// Package ledger owns open positions. Each (user, market, side) key holds at
// most one position; repeated trades into the same key merge via weighted
// average rather than creating new rows.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/patrickmak/papertrader/internal/domain"
)

// Merge folds a new trade into an existing position: shares and invested
// capital accumulate and the average price is recomputed as
// invested / shares. The first-trade purchase date is preserved.
func Merge(pos domain.Position, sizeUnits, costMicros int64) domain.Position {
	pos.SizeUnits += sizeUnits
	pos.InvestedMicros += costMicros
	pos.AvgPriceTicks = avgPriceTicks(pos.InvestedMicros, pos.SizeUnits)
	return pos
}

// avgPriceTicks computes invested/shares in tick space.
func avgPriceTicks(investedMicros, sizeUnits int64) int64 {
	if sizeUnits == 0 {
		return 0
	}
	return investedMicros * domain.PriceScale / sizeUnits
}

// Ledger merges trades into the position store.
type Ledger struct {
	positions domain.PositionStore
	logger    *slog.Logger
}

// New creates a Ledger over the given position store.
func New(positions domain.PositionStore, logger *slog.Logger) *Ledger {
	return &Ledger{
		positions: positions,
		logger:    logger.With(slog.String("component", "ledger")),
	}
}

// Upsert records a filled trade against the (user, market, side) key. A new
// key creates a position dated at the trade time; an existing key merges and
// keeps its original purchase date.
func (l *Ledger) Upsert(
	ctx context.Context,
	userID string,
	marketID int64,
	side domain.Side,
	sizeUnits, costMicros int64,
	at time.Time,
) (domain.Position, error) {
	pos, err := l.positions.GetByKey(ctx, userID, marketID, side)
	switch {
	case err == nil:
		pos = Merge(pos, sizeUnits, costMicros)
	case errors.Is(err, domain.ErrNotFound):
		pos = domain.Position{
			ID:             uuid.NewString(),
			UserID:         userID,
			MarketID:       marketID,
			Side:           side,
			SizeUnits:      sizeUnits,
			AvgPriceTicks:  avgPriceTicks(costMicros, sizeUnits),
			InvestedMicros: costMicros,
			PurchasedAt:    at,
		}
	default:
		return domain.Position{}, fmt.Errorf("ledger: get position: %w", err)
	}

	if err := l.positions.Upsert(ctx, pos); err != nil {
		return domain.Position{}, fmt.Errorf("ledger: upsert position %s: %w", pos.ID, err)
	}

	l.logger.DebugContext(ctx, "position upserted",
		slog.String("position_id", pos.ID),
		slog.Int64("market_id", marketID),
		slog.String("side", string(side)),
		slog.Float64("shares", pos.Shares()),
		slog.Float64("avg_price", pos.AvgPrice()),
	)
	return pos, nil
}

// ListByUser returns all positions held by the given user.
func (l *Ledger) ListByUser(ctx context.Context, userID string) ([]domain.Position, error) {
	positions, err := l.positions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list positions for %q: %w", userID, err)
	}
	return positions, nil
}
