package seed

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmak/papertrader/internal/domain"
	"github.com/patrickmak/papertrader/internal/store/memory"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	markets := memory.NewMarketStore()
	users := memory.NewUserStore()
	sessions := memory.NewSessionStore()
	s := New(markets, users, sessions, slog.New(slog.DiscardHandler))

	require.NoError(t, s.Run(ctx, "Demo Trader"))

	count, err := markets.Count(ctx)
	require.NoError(t, err)
	assert.Positive(t, count)

	active, err := markets.ListActive(ctx, "", domain.ListOpts{})
	require.NoError(t, err)
	for _, m := range active {
		assert.Equal(t, domain.PriceScale, m.YesTicks+m.NoTicks, "market %d", m.ID)
		assert.GreaterOrEqual(t, m.YesTicks, domain.CentTicks, "market %d", m.ID)
		assert.LessOrEqual(t, m.YesTicks, domain.PriceScale-domain.CentTicks, "market %d", m.ID)
		assert.NotEmpty(t, m.Question)
		assert.NotEmpty(t, m.Category)
	}

	user, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo Trader", user.Name)
	assert.Equal(t, DefaultBalanceMicros, user.BalanceMicros)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultBalanceMicros, stored.BalanceMicros)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	markets := memory.NewMarketStore()
	users := memory.NewUserStore()
	sessions := memory.NewSessionStore()
	s := New(markets, users, sessions, slog.New(slog.DiscardHandler))

	require.NoError(t, s.Run(ctx, "Demo Trader"))
	first, err := sessions.Current(ctx)
	require.NoError(t, err)

	// A spent balance survives the reseed.
	require.NoError(t, users.UpdateBalance(ctx, first.ID, domain.MicrosFromDollars(10)))
	require.NoError(t, s.Run(ctx, "Demo Trader"))

	again, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	stored, err := users.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MicrosFromDollars(10), stored.BalanceMicros)
}
