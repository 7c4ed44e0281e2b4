package domain

import "math"

// Fixed-point scales. Money is carried as int64 micro-USD, prices as int64
// ticks (price * 1e6), and share counts as int64 units (shares * 1e6).
// Share counts are truncated to two decimal places at trade time, so stored
// SizeUnits are always multiples of CentTicks.
const (
	// PriceScale is the number of ticks per $1.00 of price.
	PriceScale int64 = 1_000_000

	// ShareScale is the number of units per whole share.
	ShareScale int64 = 1_000_000

	// MoneyScale is the number of micros per $1.00.
	MoneyScale int64 = 1_000_000

	// CentTicks is one cent expressed in price ticks.
	CentTicks int64 = PriceScale / 100
)

// TicksFromPrice converts a display price to fixed-point ticks.
func TicksFromPrice(p float64) int64 {
	return int64(math.Round(p * float64(PriceScale)))
}

// PriceFromTicks converts fixed-point ticks to a display price.
func PriceFromTicks(t int64) float64 {
	return float64(t) / float64(PriceScale)
}

// MicrosFromDollars converts a display dollar amount to micro-USD.
func MicrosFromDollars(d float64) int64 {
	return int64(math.Round(d * float64(MoneyScale)))
}

// DollarsFromMicros converts micro-USD to a display dollar amount.
func DollarsFromMicros(m int64) float64 {
	return float64(m) / float64(MoneyScale)
}

// UnitsFromShares converts a display share count to fixed-point units.
func UnitsFromShares(s float64) int64 {
	return int64(math.Round(s * float64(ShareScale)))
}

// SharesFromUnits converts fixed-point units to a display share count.
func SharesFromUnits(u int64) float64 {
	return float64(u) / float64(ShareScale)
}
