package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/patrickmak/papertrader/internal/domain"
)

// TradeExecutor executes validated buys against the shared engine.
type TradeExecutor interface {
	ExecuteTrade(ctx context.Context, userID string, marketID int64, side domain.Side, investmentMicros int64) (domain.TradeResult, error)
}

// SessionAccounts resolves the logged-in demo account and keeps its session
// snapshot in sync after balance changes.
type SessionAccounts interface {
	Current(ctx context.Context) (domain.User, error)
	SyncSession(ctx context.Context, userID string)
}

type TradeHandler struct {
	engine   TradeExecutor
	accounts SessionAccounts
}

func NewTradeHandler(engine TradeExecutor, accounts SessionAccounts) *TradeHandler {
	return &TradeHandler{engine: engine, accounts: accounts}
}

type placeTradeRequest struct {
	MarketID int64   `json:"market_id"`
	Side     string  `json:"side"`
	Amount   float64 `json:"amount"`
}

type tradeResponse struct {
	TransactionID string  `json:"transaction_id"`
	PositionID    string  `json:"position_id"`
	MarketID      int64   `json:"market_id"`
	Side          string  `json:"side"`
	Price         float64 `json:"price"`
	Shares        float64 `json:"shares"`
	Cost          float64 `json:"cost"`
	NewBalance    float64 `json:"new_balance"`
}

// Place handles POST /api/trades.
func (h *TradeHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeTradeRequest
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

	result, err := h.engine.ExecuteTrade(
		r.Context(),
		user.ID,
		req.MarketID,
		domain.Side(req.Side),
		domain.MicrosFromDollars(req.Amount),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	h.accounts.SyncSession(r.Context(), user.ID)

	writeJSON(w, http.StatusCreated, tradeResponse{
		TransactionID: result.TransactionID,
		PositionID:    result.PositionID,
		MarketID:      result.MarketID,
		Side:          string(result.Side),
		Price:         result.Price(),
		Shares:        result.Shares(),
		Cost:          result.Cost(),
		NewBalance:    result.NewBalance(),
	})
}
