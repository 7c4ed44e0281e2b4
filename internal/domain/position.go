package domain

import "time"

// Position represents open share inventory for one (user, market, side) key.
// Repeated trades into the same key are merged: SizeUnits and InvestedMicros
// accumulate and AvgPriceTicks is recomputed as the cost-weighted average.
// PurchasedAt is the first-trade date and is never updated on merges.
type Position struct {
	ID             string
	UserID         string
	MarketID       int64
	Side           Side
	SizeUnits      int64
	AvgPriceTicks  int64
	InvestedMicros int64
	PurchasedAt    time.Time
}

// Shares returns the display share count.
func (p Position) Shares() float64 {
	return SharesFromUnits(p.SizeUnits)
}

// AvgPrice returns the display cost-weighted average price per share.
func (p Position) AvgPrice() float64 {
	return PriceFromTicks(p.AvgPriceTicks)
}

// Invested returns the display invested capital.
func (p Position) Invested() float64 {
	return DollarsFromMicros(p.InvestedMicros)
}
