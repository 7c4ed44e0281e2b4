package memory

import (
	"context"
	"sync"

	"github.com/patrickmak/papertrader/internal/domain"
)

// TransactionStore implements domain.TransactionStore in memory. The log is
// append-only; entries are never mutated or removed.
type TransactionStore struct {
	mu  sync.RWMutex
	log []domain.Transaction
}

// NewTransactionStore creates an empty TransactionStore.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

// Append adds a transaction to the log.
func (s *TransactionStore) Append(_ context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, tx)
	return nil
}

// ListByUser returns a user's transactions, newest first.
func (s *TransactionStore) ListByUser(_ context.Context, userID string, opts domain.ListOpts) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transaction
	for i := len(s.log) - 1; i >= 0; i-- {
		if s.log[i].UserID == userID {
			out = append(out, s.log[i])
		}
	}
	return paginate(out, opts), nil
}

// Compile-time interface check.
var _ domain.TransactionStore = (*TransactionStore)(nil)
