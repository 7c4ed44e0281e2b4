package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmak/papertrader/internal/domain"
)

// TransactionLister reads a user's transaction history, newest first.
type TransactionLister interface {
	ListByUser(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	transactions TransactionLister
	accounts     SessionAccounts
}

func NewTransactionHandler(transactions TransactionLister, accounts SessionAccounts) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, accounts: accounts}
}

type transactionResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// List handles GET /api/transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	txs, err := h.transactions.ListByUser(r.Context(), user.ID, parseListOpts(r))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse{
			ID:        tx.ID,
			Type:      string(tx.Type),
			Amount:    tx.Amount(),
			Details:   tx.Details,
			CreatedAt: tx.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}
