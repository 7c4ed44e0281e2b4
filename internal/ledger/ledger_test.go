package ledger

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmak/papertrader/internal/domain"
	"github.com/patrickmak/papertrader/internal/store/memory"
)

func TestMerge(t *testing.T) {
	// 25 shares @ 0.65 ($16.25), then 10 more shares for $6.50.
	pos := domain.Position{
		SizeUnits:      25 * domain.ShareScale,
		AvgPriceTicks:  domain.TicksFromPrice(0.65),
		InvestedMicros: domain.MicrosFromDollars(16.25),
	}

	merged := Merge(pos, 10*domain.ShareScale, domain.MicrosFromDollars(6.50))

	assert.InDelta(t, 35.00, merged.Shares(), 1e-9)
	assert.InDelta(t, 22.75, merged.Invested(), 1e-9)
	assert.InDelta(t, 0.65, merged.AvgPrice(), 1e-9)
}

func TestMergeRecomputesWeightedAverage(t *testing.T) {
	// 10 shares @ 0.40, then 10 shares @ 0.60: average lands at 0.50.
	pos := domain.Position{
		SizeUnits:      10 * domain.ShareScale,
		AvgPriceTicks:  domain.TicksFromPrice(0.40),
		InvestedMicros: domain.MicrosFromDollars(4.00),
	}

	merged := Merge(pos, 10*domain.ShareScale, domain.MicrosFromDollars(6.00))

	assert.InDelta(t, 20.00, merged.Shares(), 1e-9)
	assert.InDelta(t, 0.50, merged.AvgPrice(), 1e-9)

	// The invariant avg = invested / shares holds after any merge.
	assert.InDelta(t, merged.Invested()/merged.Shares(), merged.AvgPrice(), 1e-9)
}

func TestUpsertCreatesThenMerges(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPositionStore()
	l := New(store, slog.New(slog.DiscardHandler))

	firstAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created, err := l.Upsert(ctx, "u1", 7, domain.SideNo,
		25*domain.ShareScale, domain.MicrosFromDollars(16.25), firstAt)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, firstAt, created.PurchasedAt)
	assert.InDelta(t, 0.65, created.AvgPrice(), 1e-9)

	laterAt := firstAt.Add(48 * time.Hour)
	merged, err := l.Upsert(ctx, "u1", 7, domain.SideNo,
		10*domain.ShareScale, domain.MicrosFromDollars(6.50), laterAt)
	require.NoError(t, err)

	// Same position row, original purchase date, accumulated size.
	assert.Equal(t, created.ID, merged.ID)
	assert.Equal(t, firstAt, merged.PurchasedAt)
	assert.InDelta(t, 35.00, merged.Shares(), 1e-9)

	positions, err := l.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, positions, 1)
}

func TestUpsertDistinctKeys(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPositionStore()
	l := New(store, slog.New(slog.DiscardHandler))
	now := time.Now().UTC()

	_, err := l.Upsert(ctx, "u1", 1, domain.SideYes, domain.ShareScale, domain.MicrosFromDollars(0.50), now)
	require.NoError(t, err)
	_, err = l.Upsert(ctx, "u1", 1, domain.SideNo, domain.ShareScale, domain.MicrosFromDollars(0.50), now)
	require.NoError(t, err)
	_, err = l.Upsert(ctx, "u1", 2, domain.SideYes, domain.ShareScale, domain.MicrosFromDollars(0.50), now)
	require.NoError(t, err)

	positions, err := l.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, positions, 3)
}
