package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmak/papertrader/internal/portfolio"
)

// PortfolioValuator revalues a user's open positions at current prices.
type PortfolioValuator interface {
	Valuate(ctx context.Context, userID string) (portfolio.Valuation, error)
}

type PortfolioHandler struct {
	valuator PortfolioValuator
	accounts SessionAccounts
}

func NewPortfolioHandler(valuator PortfolioValuator, accounts SessionAccounts) *PortfolioHandler {
	return &PortfolioHandler{valuator: valuator, accounts: accounts}
}

type positionResponse struct {
	ID           string    `json:"id"`
	MarketID     int64     `json:"market_id"`
	Side         string    `json:"side"`
	Shares       float64   `json:"shares"`
	AvgPrice     float64   `json:"avg_price"`
	Invested     float64   `json:"invested"`
	CurrentPrice *float64  `json:"current_price"`
	CurrentValue *float64  `json:"current_value"`
	PnL          *float64  `json:"pnl"`
	PurchasedAt  time.Time `json:"purchased_at"`
}

type portfolioResponse struct {
	Balance       float64            `json:"balance"`
	TotalValue    float64            `json:"total_value"`
	TotalInvested float64            `json:"total_invested"`
	PnL           float64            `json:"pnl"`
	PnLPercent    float64            `json:"pnl_percent"`
	Positions     []positionResponse `json:"positions"`
}

// Get handles GET /api/portfolio. Positions whose market data is missing are
// included with null valuation fields rather than dropped.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	val, err := h.valuator.Valuate(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	positions := make([]positionResponse, 0, len(val.Rows)+len(val.Unpriced))
	for _, row := range val.Rows {
		price, value, pnl := row.CurrentPrice(), row.CurrentValue(), row.PnL()
		positions = append(positions, positionResponse{
			ID:           row.Position.ID,
			MarketID:     row.Position.MarketID,
			Side:         string(row.Position.Side),
			Shares:       row.Position.Shares(),
			AvgPrice:     row.Position.AvgPrice(),
			Invested:     row.Position.Invested(),
			CurrentPrice: &price,
			CurrentValue: &value,
			PnL:          &pnl,
			PurchasedAt:  row.Position.PurchasedAt,
		})
	}
	for _, pos := range val.Unpriced {
		positions = append(positions, positionResponse{
			ID:          pos.ID,
			MarketID:    pos.MarketID,
			Side:        string(pos.Side),
			Shares:      pos.Shares(),
			AvgPrice:    pos.AvgPrice(),
			Invested:    pos.Invested(),
			PurchasedAt: pos.PurchasedAt,
		})
	}

	writeJSON(w, http.StatusOK, portfolioResponse{
		Balance:       user.Balance(),
		TotalValue:    val.TotalValue(),
		TotalInvested: val.TotalInvested(),
		PnL:           val.PnL(),
		PnLPercent:    val.PnLPercent,
		Positions:     positions,
	})
}
