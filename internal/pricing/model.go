// Package pricing simulates live market movement for the demo. Each refresh
// applies a bounded random walk to every active market's YES/NO pair, then
// renormalizes so the two sides always sum to exactly one dollar at cent
// precision.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/patrickmak/papertrader/internal/domain"
)

// Config bounds the random walk.
type Config struct {
	// MaxStepTicks is the largest single-refresh move per side.
	MaxStepTicks int64
	// MinTicks and MaxTicks clamp each side before renormalization.
	MinTicks int64
	MaxTicks int64
}

// withDefaults fills zero fields with the standard demo bounds: a one-cent
// max step and a [0.01, 0.99] price corridor.
func (c Config) withDefaults() Config {
	if c.MaxStepTicks <= 0 {
		c.MaxStepTicks = domain.CentTicks
	}
	if c.MinTicks <= 0 {
		c.MinTicks = domain.CentTicks
	}
	if c.MaxTicks <= 0 {
		c.MaxTicks = domain.PriceScale - domain.CentTicks
	}
	return c
}

// Perturb applies one random-walk step to a YES/NO pair. Each side moves by
// its delta, is clamped into [cfg.MinTicks, cfg.MaxTicks], and the pair is
// then renormalized so yes+no equals domain.PriceScale exactly, rounded to
// cent precision.
func Perturb(yesTicks, noTicks, deltaYes, deltaNo int64, cfg Config) (int64, int64) {
	cfg = cfg.withDefaults()

	yes := clamp(yesTicks+deltaYes, cfg.MinTicks, cfg.MaxTicks)
	no := clamp(noTicks+deltaNo, cfg.MinTicks, cfg.MaxTicks)

	// Renormalize: yes' = round(yes / (yes+no)) at cent precision, then the
	// NO side is whatever completes the dollar.
	yes = roundToCent(yes * domain.PriceScale / (yes + no))
	yes = clamp(yes, cfg.MinTicks, cfg.MaxTicks)
	no = domain.PriceScale - yes

	return yes, no
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundToCent(t int64) int64 {
	return (t + domain.CentTicks/2) / domain.CentTicks * domain.CentTicks
}

// Model drives the random walk against the market store, mirrors fresh
// pairs into the price cache, and announces every move on the signal bus.
type Model struct {
	markets domain.MarketStore
	prices  domain.PriceCache
	bus     domain.SignalBus
	rng     *rand.Rand
	cfg     Config
	logger  *slog.Logger
}

// NewModel creates a Model over the given store, cache, and bus.
func NewModel(
	markets domain.MarketStore,
	prices domain.PriceCache,
	bus domain.SignalBus,
	cfg Config,
	logger *slog.Logger,
) *Model {
	now := time.Now()
	return &Model{
		markets: markets,
		prices:  prices,
		bus:     bus,
		rng:     rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))),
		cfg:     cfg.withDefaults(),
		logger:  logger.With(slog.String("component", "pricing")),
	}
}

// GetPrice returns the current YES/NO pair for a market. It returns
// domain.ErrMarketNotFound when the id is unknown.
func (m *Model) GetPrice(ctx context.Context, marketID int64) (domain.PricePair, error) {
	mkt, err := m.markets.GetByID(ctx, marketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PricePair{}, domain.ErrMarketNotFound
		}
		return domain.PricePair{}, fmt.Errorf("pricing: get market %d: %w", marketID, err)
	}
	return domain.PricePair{
		YesTicks:  mkt.YesTicks,
		NoTicks:   mkt.NoTicks,
		UpdatedAt: mkt.UpdatedAt,
	}, nil
}

// RefreshAll perturbs every active market once, persists the new pair, and
// publishes a price_updated event per market. Cache and bus failures are
// logged and non-fatal; the store is authoritative.
func (m *Model) RefreshAll(ctx context.Context) error {
	markets, err := m.markets.ListActive(ctx, "", domain.ListOpts{})
	if err != nil {
		return fmt.Errorf("pricing: list active markets: %w", err)
	}

	now := time.Now().UTC()
	for _, mkt := range markets {
		yes, no := Perturb(mkt.YesTicks, mkt.NoTicks, m.step(), m.step(), m.cfg)
		if err := m.markets.UpdatePrices(ctx, mkt.ID, yes, no); err != nil {
			return fmt.Errorf("pricing: update prices for market %d: %w", mkt.ID, err)
		}

		pair := domain.PricePair{YesTicks: yes, NoTicks: no, UpdatedAt: now}
		if cacheErr := m.prices.SetPair(ctx, mkt.ID, pair); cacheErr != nil {
			m.logger.WarnContext(ctx, "price cache set failed",
				slog.Int64("market_id", mkt.ID),
				slog.String("error", cacheErr.Error()),
			)
		}

		evt, _ := json.Marshal(map[string]any{
			"event":     domain.EventPriceUpdated,
			"market_id": mkt.ID,
			"yes":       domain.PriceFromTicks(yes),
			"no":        domain.PriceFromTicks(no),
			"timestamp": now.Format(time.RFC3339),
		})
		if pubErr := m.bus.Publish(ctx, domain.ChannelPrices, evt); pubErr != nil {
			m.logger.WarnContext(ctx, "price event publish failed",
				slog.Int64("market_id", mkt.ID),
				slog.String("error", pubErr.Error()),
			)
		}
	}

	m.logger.DebugContext(ctx, "refreshed market prices",
		slog.Int("count", len(markets)),
	)
	return nil
}

// Run refreshes all active markets on the given interval until the context
// is cancelled.
func (m *Model) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.RefreshAll(ctx); err != nil {
				m.logger.ErrorContext(ctx, "price refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// step draws a uniform delta in [-MaxStepTicks, +MaxStepTicks].
func (m *Model) step() int64 {
	return m.rng.Int64N(2*m.cfg.MaxStepTicks+1) - m.cfg.MaxStepTicks
}
