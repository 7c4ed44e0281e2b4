package domain

// TradePlan is the pure pricing result of a trade computation, before any
// balance or position mutation. Shares are truncated to two decimal places,
// never rounded up, so CostMicros never exceeds the requested investment.
type TradePlan struct {
	PriceTicks int64
	SizeUnits  int64
	CostMicros int64
}

// Shares returns the display share count of the plan.
func (p TradePlan) Shares() float64 {
	return SharesFromUnits(p.SizeUnits)
}

// Cost returns the display actual cost of the plan.
func (p TradePlan) Cost() float64 {
	return DollarsFromMicros(p.CostMicros)
}

// Price returns the display execution price of the plan.
func (p TradePlan) Price() float64 {
	return PriceFromTicks(p.PriceTicks)
}

// TradeResult describes a completed trade execution.
type TradeResult struct {
	TransactionID    string
	PositionID       string
	MarketID         int64
	Side             Side
	PriceTicks       int64
	SizeUnits        int64
	CostMicros       int64
	NewBalanceMicros int64
}

// Shares returns the display share count bought.
func (r TradeResult) Shares() float64 {
	return SharesFromUnits(r.SizeUnits)
}

// Cost returns the display actual cost deducted from the balance.
func (r TradeResult) Cost() float64 {
	return DollarsFromMicros(r.CostMicros)
}

// Price returns the display execution price.
func (r TradeResult) Price() float64 {
	return PriceFromTicks(r.PriceTicks)
}

// NewBalance returns the display post-trade balance.
func (r TradeResult) NewBalance() float64 {
	return DollarsFromMicros(r.NewBalanceMicros)
}
