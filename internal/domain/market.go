package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusActive    MarketStatus = "active"
	MarketStatusClosed    MarketStatus = "closed"
	MarketStatusResolved  MarketStatus = "resolved"
	MarketStatusCancelled MarketStatus = "cancelled"
)

// Side is the binary outcome a position backs.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Valid reports whether s is one of the two recognized sides.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Market represents a binary-outcome prediction market. The YES and NO
// prices are fixed-point ticks and always sum to one dollar after a refresh;
// both sides stay strictly inside (0, 1).
type Market struct {
	ID           int64
	Question     string
	Slug         string
	Category     string
	YesTicks     int64
	NoTicks      int64
	VolumeMicros int64
	Status       MarketStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PriceTicks returns the current price for the given side.
func (m Market) PriceTicks(side Side) int64 {
	if side == SideYes {
		return m.YesTicks
	}
	return m.NoTicks
}

// YesPrice returns the display YES price.
func (m Market) YesPrice() float64 {
	return PriceFromTicks(m.YesTicks)
}

// NoPrice returns the display NO price.
func (m Market) NoPrice() float64 {
	return PriceFromTicks(m.NoTicks)
}

// Tradable reports whether the market accepts new trades.
func (m Market) Tradable() bool {
	return m.Status == MarketStatusActive
}
