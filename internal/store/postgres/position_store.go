package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patrickmak/papertrader/internal/domain"
)

// PositionStore implements domain.PositionStore using PostgreSQL. The
// (user_id, market_id, side) unique constraint enforces the one-position-
// per-key invariant at the schema level.
type PositionStore struct {
	pool *pgxpool.Pool
}

// NewPositionStore creates a new PositionStore backed by the given pool.
func NewPositionStore(pool *pgxpool.Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

const positionSelectCols = `id, user_id, market_id, side, size_units,
	avg_price_ticks, invested_micros, purchased_at`

func scanPositionRow(row pgx.Row) (domain.Position, error) {
	var p domain.Position
	var side string
	err := row.Scan(
		&p.ID, &p.UserID, &p.MarketID, &side,
		&p.SizeUnits, &p.AvgPriceTicks, &p.InvestedMicros, &p.PurchasedAt,
	)
	if err != nil {
		return domain.Position{}, err
	}
	p.Side = domain.Side(side)
	return p, nil
}

// Upsert inserts or replaces the position for its (user, market, side) key.
// purchased_at is written only on insert so merges keep the first-trade date.
func (s *PositionStore) Upsert(ctx context.Context, p domain.Position) error {
	const query = `
		INSERT INTO positions (
			id, user_id, market_id, side, size_units,
			avg_price_ticks, invested_micros, purchased_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id, market_id, side) DO UPDATE SET
			size_units      = EXCLUDED.size_units,
			avg_price_ticks = EXCLUDED.avg_price_ticks,
			invested_micros = EXCLUDED.invested_micros,
			updated_at      = NOW()`

	_, err := s.pool.Exec(ctx, query,
		p.ID, p.UserID, p.MarketID, string(p.Side),
		p.SizeUnits, p.AvgPriceTicks, p.InvestedMicros, p.PurchasedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert position %s: %w", p.ID, err)
	}
	return nil
}

// GetByKey retrieves the position for a (user, market, side) key.
func (s *PositionStore) GetByKey(ctx context.Context, userID string, marketID int64, side domain.Side) (domain.Position, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+positionSelectCols+` FROM positions
		 WHERE user_id = $1 AND market_id = $2 AND side = $3`,
		userID, marketID, string(side))

	p, err := scanPositionRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Position{}, domain.ErrNotFound
		}
		return domain.Position{}, fmt.Errorf("postgres: get position %s/%d/%s: %w",
			userID, marketID, side, err)
	}
	return p, nil
}

// ListByUser returns all positions held by a user, oldest purchase first.
func (s *PositionStore) ListByUser(ctx context.Context, userID string) ([]domain.Position, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+positionSelectCols+` FROM positions
		 WHERE user_id = $1
		 ORDER BY purchased_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list positions for %q: %w", userID, err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		p, err := scanPositionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// Compile-time interface check.
var _ domain.PositionStore = (*PositionStore)(nil)
