package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/patrickmak/papertrader/internal/domain"
)

// AccountManager exposes the account operations the HTTP layer needs.
type AccountManager interface {
	Current(ctx context.Context) (domain.User, error)
	Deposit(ctx context.Context, userID string, amountMicros int64) (domain.User, error)
	Withdraw(ctx context.Context, userID string, amountMicros int64) (domain.User, error)
}

type AccountHandler struct {
	accounts AccountManager
}

func NewAccountHandler(accounts AccountManager) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type accountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(u domain.User) accountResponse {
	return accountResponse{
		ID:        u.ID,
		Name:      u.Name,
		Balance:   u.Balance(),
		CreatedAt: u.CreatedAt,
	}
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

// Get handles GET /api/account.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(user))
}

// Deposit handles POST /api/account/deposit.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.accounts.Deposit)
}

// Withdraw handles POST /api/account/withdraw.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.accounts.Withdraw)
}

func (h *AccountHandler) adjust(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, userID string, amountMicros int64) (domain.User, error),
) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		badRequest(w, "amount must be positive")
		return
	}

	user, err := h.accounts.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := op(r.Context(), user.ID, domain.MicrosFromDollars(req.Amount))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(updated))
}
