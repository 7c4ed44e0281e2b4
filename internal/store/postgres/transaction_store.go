package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patrickmak/papertrader/internal/domain"
)

// TransactionStore implements domain.TransactionStore using PostgreSQL.
// The table is append-only; there is no update or delete path.
type TransactionStore struct {
	pool *pgxpool.Pool
}

// NewTransactionStore creates a new TransactionStore backed by the given pool.
func NewTransactionStore(pool *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Append inserts a transaction record.
func (s *TransactionStore) Append(ctx context.Context, tx domain.Transaction) error {
	const query = `
		INSERT INTO transactions (id, user_id, type, amount_micros, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		tx.ID, tx.UserID, string(tx.Type), tx.AmountMicros, tx.Details, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append transaction %s: %w", tx.ID, err)
	}
	return nil
}

// ListByUser returns a user's transactions, newest first.
func (s *TransactionStore) ListByUser(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Transaction, error) {
	query := `SELECT id, user_id, type, amount_micros, details, created_at
		FROM transactions WHERE user_id = $1 ORDER BY created_at DESC, id`
	args := []any{userID}
	argIdx := 2

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
		return nil, fmt.Errorf("postgres: list transactions for %q: %w", userID, err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var txType string
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &txType, &tx.AmountMicros, &tx.Details, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan transaction: %w", err)
		}
		tx.Type = domain.TransactionType(txType)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Compile-time interface check.
var _ domain.TransactionStore = (*TransactionStore)(nil)
