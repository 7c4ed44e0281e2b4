package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmak/papertrader/internal/domain"
)

// MarketReader is the slice of the market service the HTTP layer needs.
type MarketReader interface {
	Get(ctx context.Context, id int64) (domain.Market, error)
	ListActive(ctx context.Context, category string, opts domain.ListOpts) ([]domain.Market, error)
}

type MarketHandler struct {
	markets MarketReader
}

func NewMarketHandler(markets MarketReader) *MarketHandler {
	return &MarketHandler{markets: markets}
}

type marketResponse struct {
	ID          int64     `json:"id"`
	Question    string    `json:"question"`
	Slug        string    `json:"slug"`
	Category    string    `json:"category"`
	YesPrice    float64   `json:"yes_price"`
	NoPrice     float64   `json:"no_price"`
	TotalVolume float64   `json:"total_volume"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMarketResponse(m domain.Market) marketResponse {
	return marketResponse{
		ID:          m.ID,
		Question:    m.Question,
		Slug:        m.Slug,
		Category:    m.Category,
		YesPrice:    m.YesPrice(),
		NoPrice:     m.NoPrice(),
		TotalVolume: domain.DollarsFromMicros(m.VolumeMicros),
		Status:      string(m.Status),
		UpdatedAt:   m.UpdatedAt,
	}
}

// List handles GET /api/markets with optional category, limit and offset
// query parameters.
func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	opts := parseListOpts(r)

	markets, err := h.markets.ListActive(r.Context(), category, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]marketResponse, 0, len(markets))
	for _, m := range markets {
		out = append(out, toMarketResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"markets": out})
}

// Get handles GET /api/markets/{id}.
func (h *MarketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid market id")
		return
	}

	market, err := h.markets.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketResponse(market))
}
