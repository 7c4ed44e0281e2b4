package engine

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmak/papertrader/internal/bus"
	"github.com/patrickmak/papertrader/internal/domain"
	"github.com/patrickmak/papertrader/internal/ledger"
	"github.com/patrickmak/papertrader/internal/store/memory"
)

type fixture struct {
	engine    *Engine
	markets   *memory.MarketStore
	users     *memory.UserStore
	txs       *memory.TransactionStore
	positions *memory.PositionStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	markets := memory.NewMarketStore()
	users := memory.NewUserStore()
	txs := memory.NewTransactionStore()
	positions := memory.NewPositionStore()
	audit := memory.NewAuditStore()

	eng := New(markets, users, txs, ledger.New(positions, logger), bus.New(), audit, logger)
	return &fixture{
		engine:    eng,
		markets:   markets,
		users:     users,
		txs:       txs,
		positions: positions,
	}
}

func (f *fixture) seedMarket(t *testing.T, id int64, yes float64, status domain.MarketStatus) {
	t.Helper()
	yesTicks := domain.TicksFromPrice(yes)
	err := f.markets.Upsert(context.Background(), domain.Market{
		ID:        id,
		Question:  "test market",
		YesTicks:  yesTicks,
		NoTicks:   domain.PriceScale - yesTicks,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func (f *fixture) seedUser(t *testing.T, id string, balance float64) {
	t.Helper()
	err := f.users.Create(context.Background(), domain.User{
		ID:            id,
		Name:          "Tester",
		BalanceMicros: domain.MicrosFromDollars(balance),
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)
}

func TestComputeTrade(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		investment float64
		wantShares float64
		wantCost   float64
		wantErr    error
	}{
		{
			name:       "exact division",
			price:      0.65,
			investment: 16.25,
			wantShares: 25.00,
			wantCost:   16.25,
		},
		{
			name:       "truncates to two decimals",
			price:      0.33,
			investment: 10.00,
			wantShares: 30.30,
			wantCost:   9.999,
		},
		{
			name:       "one cent buys a whole share at a penny",
			price:      0.01,
			investment: 0.01,
			wantShares: 1.00,
			wantCost:   0.01,
		},
		{
			name:       "investment too small for a hundredth of a share",
			price:      0.99,
			investment: 0.005,
			wantErr:    domain.ErrInvalidAmount,
		},
		{
			name:       "zero investment",
			price:      0.50,
			investment: 0,
			wantErr:    domain.ErrInvalidAmount,
		},
		{
			name:       "negative investment",
			price:      0.50,
			investment: -5,
			wantErr:    domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ComputeTrade(
				domain.TicksFromPrice(tt.price),
				domain.MicrosFromDollars(tt.investment),
			)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantShares, plan.Shares(), 1e-9)
			assert.InDelta(t, tt.wantCost, plan.Cost(), 1e-9)
		})
	}
}

func TestComputeTradeCostNeverExceedsInvestment(t *testing.T) {
	investments := []float64{0.01, 0.37, 1, 16.25, 99.99, 500, 1000}
	for cents := int64(1); cents <= 99; cents++ {
		price := cents * domain.CentTicks
		for _, inv := range investments {
			investment := domain.MicrosFromDollars(inv)
			plan, err := ComputeTrade(price, investment)
			require.NoError(t, err)
			assert.LessOrEqual(t, plan.CostMicros, investment,
				"price %d ticks, investment %d micros", price, investment)
			assert.Positive(t, plan.SizeUnits)
		}
	}
}

func TestExecuteTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedMarket(t, 1, 0.65, domain.MarketStatusActive)
	f.seedUser(t, "u1", 1000)

	result, err := f.engine.ExecuteTrade(ctx, "u1", 1, domain.SideYes, domain.MicrosFromDollars(16.25))
	require.NoError(t, err)

	assert.InDelta(t, 25.00, result.Shares(), 1e-9)
	assert.InDelta(t, 0.65, result.Price(), 1e-9)
	assert.InDelta(t, 16.25, result.Cost(), 1e-9)
	assert.InDelta(t, 983.75, result.NewBalance(), 1e-9)

	user, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.MicrosFromDollars(983.75), user.BalanceMicros)

	pos, err := f.positions.GetByKey(ctx, "u1", 1, domain.SideYes)
	require.NoError(t, err)
	assert.InDelta(t, 25.00, pos.Shares(), 1e-9)
	assert.InDelta(t, 0.65, pos.AvgPrice(), 1e-9)
	assert.InDelta(t, 16.25, pos.Invested(), 1e-9)

	txs, err := f.txs.ListByUser(ctx, "u1", domain.ListOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionTypeTrade, txs[0].Type)
	assert.InDelta(t, -16.25, txs[0].Amount(), 1e-9)

	mkt, err := f.markets.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.MicrosFromDollars(16.25), mkt.VolumeMicros)
}

func TestExecuteTradeMergesRepeatedBuys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedMarket(t, 1, 0.65, domain.MarketStatusActive)
	f.seedUser(t, "u1", 1000)

	first, err := f.engine.ExecuteTrade(ctx, "u1", 1, domain.SideYes, domain.MicrosFromDollars(16.25))
	require.NoError(t, err)
	_, err = f.engine.ExecuteTrade(ctx, "u1", 1, domain.SideYes, domain.MicrosFromDollars(6.50))
	require.NoError(t, err)

	pos, err := f.positions.GetByKey(ctx, "u1", 1, domain.SideYes)
	require.NoError(t, err)
	assert.InDelta(t, 35.00, pos.Shares(), 1e-9)
	assert.InDelta(t, 22.75, pos.Invested(), 1e-9)
	assert.InDelta(t, 0.65, pos.AvgPrice(), 1e-9)
	assert.Equal(t, first.PositionID, pos.ID)

	positions, err := f.positions.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, positions, 1)
}

func TestExecuteTradeSidesAreSeparatePositions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedMarket(t, 1, 0.60, domain.MarketStatusActive)
	f.seedUser(t, "u1", 1000)

	_, err := f.engine.ExecuteTrade(ctx, "u1", 1, domain.SideYes, domain.MicrosFromDollars(6))
	require.NoError(t, err)
	_, err = f.engine.ExecuteTrade(ctx, "u1", 1, domain.SideNo, domain.MicrosFromDollars(4))
	require.NoError(t, err)

	positions, err := f.positions.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}

func TestExecuteTradeInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedMarket(t, 1, 0.65, domain.MarketStatusActive)
	f.seedUser(t, "u1", 10)

	_, err := f.engine.ExecuteTrade(ctx, "u1", 1, domain.SideYes, domain.MicrosFromDollars(10.01))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// Nothing may have been mutated by the rejected trade.
	user, err := f.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.MicrosFromDollars(10), user.BalanceMicros)

	_, err = f.positions.GetByKey(ctx, "u1", 1, domain.SideYes)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	txs, err := f.txs.ListByUser(ctx, "u1", domain.ListOpts{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestExecuteTradeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedMarket(t, 1, 0.65, domain.MarketStatusActive)
	f.seedMarket(t, 2, 0.50, domain.MarketStatusResolved)
	f.seedUser(t, "u1", 1000)

	_, err := f.engine.ExecuteTrade(ctx, "u1", 99, domain.SideYes, domain.MicrosFromDollars(10))
	assert.ErrorIs(t, err, domain.ErrMarketNotFound)

	_, err = f.engine.ExecuteTrade(ctx, "u1", 2, domain.SideYes, domain.MicrosFromDollars(10))
	assert.ErrorIs(t, err, domain.ErrMarketInactive)

	_, err = f.engine.ExecuteTrade(ctx, "u1", 1, domain.Side("maybe"), domain.MicrosFromDollars(10))
	assert.ErrorIs(t, err, domain.ErrInvalidSide)

	_, err = f.engine.ExecuteTrade(ctx, "u1", 1, domain.SideYes, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDeposit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "u1", 100)

	balance, err := f.engine.Deposit(ctx, "u1", domain.MicrosFromDollars(50))
	require.NoError(t, err)
	assert.Equal(t, domain.MicrosFromDollars(150), balance)

	txs, err := f.txs.ListByUser(ctx, "u1", domain.ListOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionTypeDeposit, txs[0].Type)
	assert.InDelta(t, 50.0, txs[0].Amount(), 1e-9)

	_, err = f.engine.Deposit(ctx, "u1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "u1", 100)

	balance, err := f.engine.Withdraw(ctx, "u1", domain.MicrosFromDollars(30))
	require.NoError(t, err)
	assert.Equal(t, domain.MicrosFromDollars(70), balance)

	_, err = f.engine.Withdraw(ctx, "u1", domain.MicrosFromDollars(70.01))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	txs, err := f.txs.ListByUser(ctx, "u1", domain.ListOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.InDelta(t, -30.0, txs[0].Amount(), 1e-9)
}
