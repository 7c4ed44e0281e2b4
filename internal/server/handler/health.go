package handler

import (
	"context"
	"net/http"
	"time"
)

// MarketCounter reports how many markets are known. The health endpoint uses
// it as a cheap liveness probe for the storage backend.
type MarketCounter interface {
	Count(ctx context.Context) (int64, error)
}

type HealthHandler struct {
	markets MarketCounter
	started time.Time
}

func NewHealthHandler(markets MarketCounter) *HealthHandler {
	return &HealthHandler{markets: markets, started: time.Now()}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.markets.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"error":  "storage unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"markets": count,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
