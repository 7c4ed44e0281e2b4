package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmak/papertrader/internal/bus"
	"github.com/patrickmak/papertrader/internal/domain"
	"github.com/patrickmak/papertrader/internal/engine"
	"github.com/patrickmak/papertrader/internal/ledger"
	"github.com/patrickmak/papertrader/internal/store/memory"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func seedMarket(t *testing.T, store *memory.MarketStore, id int64, category string, yes float64) {
	t.Helper()
	yesTicks := domain.TicksFromPrice(yes)
	err := store.Upsert(context.Background(), domain.Market{
		ID:       id,
		Question: "test market",
		Category: category,
		YesTicks: yesTicks,
		NoTicks:  domain.PriceScale - yesTicks,
		Status:   domain.MarketStatusActive,
	})
	require.NoError(t, err)
}

func TestMarketServiceGet(t *testing.T) {
	ctx := context.Background()
	markets := memory.NewMarketStore()
	prices := memory.NewPriceCache()
	svc := NewMarketService(markets, prices, discard())
	seedMarket(t, markets, 1, "economics", 0.65)

	m, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.65, m.YesPrice(), 1e-9)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrMarketNotFound)
}

func TestMarketServiceGetOverlaysFresherCache(t *testing.T) {
	ctx := context.Background()
	markets := memory.NewMarketStore()
	prices := memory.NewPriceCache()
	svc := NewMarketService(markets, prices, discard())
	seedMarket(t, markets, 1, "economics", 0.65)

	fresh := domain.PricePair{
		YesTicks:  domain.TicksFromPrice(0.70),
		NoTicks:   domain.TicksFromPrice(0.30),
		UpdatedAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, prices.SetPair(ctx, 1, fresh))

	m, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, fresh.YesTicks, m.YesTicks)
	assert.Equal(t, fresh.NoTicks, m.NoTicks)
}

func TestMarketServiceGetIgnoresStaleCache(t *testing.T) {
	ctx := context.Background()
	markets := memory.NewMarketStore()
	prices := memory.NewPriceCache()
	svc := NewMarketService(markets, prices, discard())

	stale := domain.PricePair{
		YesTicks:  domain.TicksFromPrice(0.10),
		NoTicks:   domain.TicksFromPrice(0.90),
		UpdatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, prices.SetPair(ctx, 1, stale))
	seedMarket(t, markets, 1, "economics", 0.65)

	m, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.65, m.YesPrice(), 1e-9)
}

func TestMarketServiceListActive(t *testing.T) {
	ctx := context.Background()
	markets := memory.NewMarketStore()
	svc := NewMarketService(markets, memory.NewPriceCache(), discard())
	seedMarket(t, markets, 1, "economics", 0.65)
	seedMarket(t, markets, 2, "crypto", 0.45)
	seedMarket(t, markets, 3, "economics", 0.55)

	all, err := svc.ListActive(ctx, "", domain.ListOpts{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	econ, err := svc.ListActive(ctx, "economics", domain.ListOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, econ, 2)
	assert.Equal(t, int64(1), econ[0].ID)
	assert.Equal(t, int64(3), econ[1].ID)

	paged, err := svc.ListActive(ctx, "", domain.ListOpts{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, int64(3), paged[0].ID)
}

func newAccountFixture(t *testing.T) (*AccountService, *memory.UserStore, *memory.SessionStore) {
	t.Helper()
	users := memory.NewUserStore()
	sessions := memory.NewSessionStore()
	eng := engine.New(
		memory.NewMarketStore(),
		users,
		memory.NewTransactionStore(),
		ledger.New(memory.NewPositionStore(), discard()),
		bus.New(),
		memory.NewAuditStore(),
		discard(),
	)
	return NewAccountService(users, sessions, eng, discard()), users, sessions
}

func TestAccountServiceCurrent(t *testing.T) {
	ctx := context.Background()
	svc, users, sessions := newAccountFixture(t)

	_, err := svc.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)

	user := domain.User{ID: "u1", Name: "Tester", BalanceMicros: domain.MicrosFromDollars(1000)}
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, sessions.Persist(ctx, user))

	// Current reflects the store, not the session snapshot.
	require.NoError(t, users.UpdateBalance(ctx, "u1", domain.MicrosFromDollars(900)))

	got, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.InDelta(t, 900.0, got.Balance(), 1e-9)
}

func TestAccountServiceDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	svc, users, sessions := newAccountFixture(t)

	user := domain.User{ID: "u1", Name: "Tester", BalanceMicros: domain.MicrosFromDollars(100)}
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, sessions.Persist(ctx, user))

	after, err := svc.Deposit(ctx, "u1", domain.MicrosFromDollars(25))
	require.NoError(t, err)
	assert.InDelta(t, 125.0, after.Balance(), 1e-9)

	// The session snapshot follows the balance.
	sess, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, after.BalanceMicros, sess.BalanceMicros)

	after, err = svc.Withdraw(ctx, "u1", domain.MicrosFromDollars(50))
	require.NoError(t, err)
	assert.InDelta(t, 75.0, after.Balance(), 1e-9)

	_, err = svc.Withdraw(ctx, "u1", domain.MicrosFromDollars(500))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestPortfolioServiceValuate(t *testing.T) {
	ctx := context.Background()
	markets := memory.NewMarketStore()
	positions := memory.NewPositionStore()
	svc := NewPortfolioService(positions, markets, discard())

	seedMarket(t, markets, 1, "economics", 0.80)
	require.NoError(t, positions.Upsert(ctx, domain.Position{
		ID:             "p1",
		UserID:         "u1",
		MarketID:       1,
		Side:           domain.SideYes,
		SizeUnits:      domain.UnitsFromShares(25),
		AvgPriceTicks:  domain.TicksFromPrice(0.65),
		InvestedMicros: domain.MicrosFromDollars(16.25),
	}))
	// A position whose market is gone must surface as unpriced, not fail.
	require.NoError(t, positions.Upsert(ctx, domain.Position{
		ID:             "p2",
		UserID:         "u1",
		MarketID:       99,
		Side:           domain.SideYes,
		SizeUnits:      domain.UnitsFromShares(10),
		InvestedMicros: domain.MicrosFromDollars(5),
	}))

	v, err := svc.Valuate(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, v.Rows, 1)
	assert.Len(t, v.Unpriced, 1)
	assert.InDelta(t, 20.00, v.TotalValue(), 1e-9)
	assert.InDelta(t, 3.75, v.PnL(), 1e-9)
}
