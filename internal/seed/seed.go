// Package seed loads the demo dataset: a starter account and a set of
// binary-outcome markets with plausible opening prices.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/patrickmak/papertrader/internal/domain"
)

// DefaultBalanceMicros is the opening balance of the demo account: $1,000.
const DefaultBalanceMicros = 1_000 * domain.MoneyScale

type seedMarket struct {
	id       int64
	question string
	slug     string
	category string
	yes      float64
}

// markets is the demo catalogue. Prices open between 0.01 and 0.99 and the
// no side is always the complement of yes.
var markets = []seedMarket{
	{1, "Will the Fed cut rates at the next FOMC meeting?", "fed-rate-cut-next-fomc", "economics", 0.62},
	{2, "Will Bitcoin close above $100k this quarter?", "btc-above-100k-quarter", "crypto", 0.45},
	{3, "Will the S&P 500 end the month higher?", "spx-month-higher", "economics", 0.55},
	{4, "Will it rain in Seattle on Saturday?", "seattle-rain-saturday", "weather", 0.71},
	{5, "Will the home team win the championship final?", "home-team-championship", "sports", 0.38},
	{6, "Will a new flagship phone be announced this month?", "flagship-phone-announcement", "tech", 0.27},
	{7, "Will turnout exceed 60% in the upcoming election?", "election-turnout-over-60", "politics", 0.49},
	{8, "Will the next major game release slip past its date?", "game-release-delay", "tech", 0.66},
	{9, "Will oil trade above $90 a barrel this week?", "oil-above-90-week", "economics", 0.18},
	{10, "Will the record heat streak continue through Sunday?", "heat-streak-through-sunday", "weather", 0.83},
}

// Seeder populates empty stores with the demo dataset.
type Seeder struct {
	markets  domain.MarketStore
	users    domain.UserStore
	sessions domain.SessionStore
	logger   *slog.Logger
}

func New(
	marketStore domain.MarketStore,
	userStore domain.UserStore,
	sessionStore domain.SessionStore,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		markets:  marketStore,
		users:    userStore,
		sessions: sessionStore,
		logger:   logger.With(slog.String("component", "seed")),
	}
}

// Run seeds markets and the demo account. It is idempotent: existing markets
// are refreshed in place and an existing session keeps its user and balance.
func (s *Seeder) Run(ctx context.Context, userName string) error {
	now := time.Now().UTC()

	for _, m := range markets {
		yesTicks := domain.TicksFromPrice(m.yes)
		market := domain.Market{
			ID:        m.id,
			Question:  m.question,
			Slug:      m.slug,
			Category:  m.category,
			YesTicks:  yesTicks,
			NoTicks:   domain.PriceScale - yesTicks,
			Status:    domain.MarketStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.markets.Upsert(ctx, market); err != nil {
			return fmt.Errorf("seed: market %d: %w", m.id, err)
		}
	}
	s.logger.InfoContext(ctx, "markets seeded", slog.Int("count", len(markets)))

	// Reuse the session's user when one already exists so restarts don't
	// reset the demo balance.
	if user, err := s.sessions.Current(ctx); err == nil {
		if _, err := s.users.GetByID(ctx, user.ID); err == nil {
			s.logger.InfoContext(ctx, "existing session kept",
				slog.String("user_id", user.ID),
			)
			return nil
		}
	}

	user := domain.User{
		ID:            uuid.NewString(),
		Name:          userName,
		BalanceMicros: DefaultBalanceMicros,
		CreatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("seed: user: %w", err)
	}
	if err := s.sessions.Persist(ctx, user); err != nil {
		return fmt.Errorf("seed: session: %w", err)
	}

	s.logger.InfoContext(ctx, "demo account created",
		slog.String("user_id", user.ID),
		slog.Float64("balance", user.Balance()),
	)
	return nil
}
