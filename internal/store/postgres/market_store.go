package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patrickmak/papertrader/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a new MarketStore backed by the given pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const marketSelectCols = `id, question, slug, category, yes_ticks, no_ticks,
	volume_micros, status, created_at, updated_at`

func scanMarketRow(row pgx.Row) (domain.Market, error) {
	var m domain.Market
	var status string
	err := row.Scan(
		&m.ID, &m.Question, &m.Slug, &m.Category,
		&m.YesTicks, &m.NoTicks, &m.VolumeMicros,
		&status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Market{}, err
	}
	m.Status = domain.MarketStatus(status)
	return m, nil
}

// Upsert inserts or replaces a market keyed by ID.
func (s *MarketStore) Upsert(ctx context.Context, m domain.Market) error {
	const query = `
		INSERT INTO markets (
			id, question, slug, category, yes_ticks, no_ticks,
			volume_micros, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			question      = EXCLUDED.question,
			slug          = EXCLUDED.slug,
			category      = EXCLUDED.category,
			yes_ticks     = EXCLUDED.yes_ticks,
			no_ticks      = EXCLUDED.no_ticks,
			volume_micros = EXCLUDED.volume_micros,
			status        = EXCLUDED.status,
			updated_at    = NOW()`

	_, err := s.pool.Exec(ctx, query,
		m.ID, m.Question, m.Slug, m.Category,
		m.YesTicks, m.NoTicks, m.VolumeMicros, string(m.Status),
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert market %d: %w", m.ID, err)
	}
	return nil
}

// GetByID retrieves a market by ID.
func (s *MarketStore) GetByID(ctx context.Context, id int64) (domain.Market, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+marketSelectCols+` FROM markets WHERE id = $1`, id)

	m, err := scanMarketRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %d: %w", id, err)
	}
	return m, nil
}

// ListActive returns active markets, optionally filtered by category.
func (s *MarketStore) ListActive(ctx context.Context, category string, opts domain.ListOpts) ([]domain.Market, error) {
	query := `SELECT ` + marketSelectCols + ` FROM markets WHERE status = 'active'`
	args := []any{}
	argIdx := 1

	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}

	query += " ORDER BY id"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active markets: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		m, err := scanMarketRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan market: %w", err)
		}
		markets = append(markets, m)
	}
	return markets, rows.Err()
}

// UpdatePrices sets the YES/NO pair for a market.
func (s *MarketStore) UpdatePrices(ctx context.Context, id int64, yesTicks, noTicks int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE markets SET yes_ticks = $2, no_ticks = $3, updated_at = NOW() WHERE id = $1`,
		id, yesTicks, noTicks)
	if err != nil {
		return fmt.Errorf("postgres: update prices for market %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddVolume adds the traded notional to the market's running volume.
func (s *MarketStore) AddVolume(ctx context.Context, id int64, amountMicros int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE markets SET volume_micros = volume_micros + $2, updated_at = NOW() WHERE id = $1`,
		id, amountMicros)
	if err != nil {
		return fmt.Errorf("postgres: add volume for market %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of markets.
func (s *MarketStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM markets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count markets: %w", err)
	}
	return count, nil
}

// Compile-time interface check.
var _ domain.MarketStore = (*MarketStore)(nil)
