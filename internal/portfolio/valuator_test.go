package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickmak/papertrader/internal/domain"
)

func mkMarket(id int64, yes float64) domain.Market {
	yesTicks := domain.TicksFromPrice(yes)
	return domain.Market{
		ID:       id,
		YesTicks: yesTicks,
		NoTicks:  domain.PriceScale - yesTicks,
		Status:   domain.MarketStatusActive,
	}
}

func mkPosition(marketID int64, side domain.Side, shares, invested float64) domain.Position {
	return domain.Position{
		ID:             "pos",
		UserID:         "u1",
		MarketID:       marketID,
		Side:           side,
		SizeUnits:      domain.UnitsFromShares(shares),
		InvestedMicros: domain.MicrosFromDollars(invested),
	}
}

func TestValuate(t *testing.T) {
	// 25 YES shares bought for $16.25, now priced at 0.80, and 10 NO shares
	// bought for $4.50, now priced at 0.30.
	positions := []domain.Position{
		mkPosition(1, domain.SideYes, 25, 16.25),
		mkPosition(2, domain.SideNo, 10, 4.50),
	}
	markets := map[int64]domain.Market{
		1: mkMarket(1, 0.80),
		2: mkMarket(2, 0.70),
	}

	v := Valuate(positions, markets)

	assert.Len(t, v.Rows, 2)
	assert.Empty(t, v.Unpriced)

	assert.InDelta(t, 20.00, v.Rows[0].CurrentValue(), 1e-9)
	assert.InDelta(t, 3.75, v.Rows[0].PnL(), 1e-9)
	assert.InDelta(t, 3.00, v.Rows[1].CurrentValue(), 1e-9)
	assert.InDelta(t, -1.50, v.Rows[1].PnL(), 1e-9)

	assert.InDelta(t, 23.00, v.TotalValue(), 1e-9)
	assert.InDelta(t, 20.75, v.TotalInvested(), 1e-9)
	assert.InDelta(t, 2.25, v.PnL(), 1e-9)
	assert.InDelta(t, 2.25/20.75*100, v.PnLPercent, 1e-9)
}

func TestValuateIsIdempotent(t *testing.T) {
	positions := []domain.Position{mkPosition(1, domain.SideYes, 25, 16.25)}
	markets := map[int64]domain.Market{1: mkMarket(1, 0.80)}

	first := Valuate(positions, markets)
	second := Valuate(positions, markets)

	assert.Equal(t, first, second)
}

func TestValuateMissingMarket(t *testing.T) {
	positions := []domain.Position{
		mkPosition(1, domain.SideYes, 25, 16.25),
		mkPosition(99, domain.SideYes, 10, 5.00),
	}
	markets := map[int64]domain.Market{1: mkMarket(1, 0.80)}

	v := Valuate(positions, markets)

	// The unpriced position is reported but excluded from every total.
	assert.Len(t, v.Rows, 1)
	assert.Len(t, v.Unpriced, 1)
	assert.Equal(t, int64(99), v.Unpriced[0].MarketID)
	assert.InDelta(t, 20.00, v.TotalValue(), 1e-9)
	assert.InDelta(t, 16.25, v.TotalInvested(), 1e-9)
}

func TestValuateEmptyPortfolio(t *testing.T) {
	v := Valuate(nil, map[int64]domain.Market{})

	assert.Empty(t, v.Rows)
	assert.Empty(t, v.Unpriced)
	assert.Zero(t, v.TotalValueMicros)
	assert.Zero(t, v.PnLPercent)
}

func TestValuateFractionalShares(t *testing.T) {
	// 30.30 shares at 0.33 cost $9.999; revalued at 0.50 they are worth
	// $15.15 exactly.
	positions := []domain.Position{mkPosition(1, domain.SideYes, 30.30, 9.999)}
	markets := map[int64]domain.Market{1: mkMarket(1, 0.50)}

	v := Valuate(positions, markets)

	assert.InDelta(t, 15.15, v.TotalValue(), 1e-9)
	assert.InDelta(t, 5.151, v.PnL(), 1e-9)
}
