// Package portfolio revalues open positions against current market prices.
// Valuate is a pure function of its inputs: no state, no side effects, safe
// to call any number of times.
package portfolio

import "github.com/patrickmak/papertrader/internal/domain"

// Row is one valued position.
type Row struct {
	Position           domain.Position
	CurrentPriceTicks  int64
	CurrentValueMicros int64
	PnLMicros          int64
}

// CurrentPrice returns the display current price of the row's side.
func (r Row) CurrentPrice() float64 {
	return domain.PriceFromTicks(r.CurrentPriceTicks)
}

// CurrentValue returns the display current value.
func (r Row) CurrentValue() float64 {
	return domain.DollarsFromMicros(r.CurrentValueMicros)
}

// PnL returns the display profit or loss for the row.
func (r Row) PnL() float64 {
	return domain.DollarsFromMicros(r.PnLMicros)
}

// Valuation aggregates the portfolio. Positions whose market is absent from
// the input are excluded from all totals and listed in Unpriced so the
// caller can render them as unavailable.
type Valuation struct {
	TotalValueMicros    int64
	TotalInvestedMicros int64
	PnLMicros           int64
	PnLPercent          float64
	Rows                []Row
	Unpriced            []domain.Position
}

// TotalValue returns the display total current value.
func (v Valuation) TotalValue() float64 {
	return domain.DollarsFromMicros(v.TotalValueMicros)
}

// TotalInvested returns the display total invested capital.
func (v Valuation) TotalInvested() float64 {
	return domain.DollarsFromMicros(v.TotalInvestedMicros)
}

// PnL returns the display aggregate profit or loss.
func (v Valuation) PnL() float64 {
	return domain.DollarsFromMicros(v.PnLMicros)
}

// Valuate computes the current value, invested capital, and P&L of the
// given positions against the given markets, keyed by market ID.
func Valuate(positions []domain.Position, markets map[int64]domain.Market) Valuation {
	var v Valuation

	for _, pos := range positions {
		mkt, ok := markets[pos.MarketID]
		if !ok {
			v.Unpriced = append(v.Unpriced, pos)
			continue
		}

		price := mkt.PriceTicks(pos.Side)
		value := valueMicros(pos.SizeUnits, price)
		row := Row{
			Position:           pos,
			CurrentPriceTicks:  price,
			CurrentValueMicros: value,
			PnLMicros:          value - pos.InvestedMicros,
		}
		v.Rows = append(v.Rows, row)
		v.TotalValueMicros += value
		v.TotalInvestedMicros += pos.InvestedMicros
	}

	v.PnLMicros = v.TotalValueMicros - v.TotalInvestedMicros
	if v.TotalInvestedMicros > 0 {
		v.PnLPercent = float64(v.PnLMicros) / float64(v.TotalInvestedMicros) * 100
	}
	return v
}

// valueMicros computes shares * price without overflowing on large share
// counts: whole shares and the fractional remainder are priced separately.
func valueMicros(sizeUnits, priceTicks int64) int64 {
	whole := sizeUnits / domain.ShareScale * priceTicks
	if rem := sizeUnits % domain.ShareScale; rem != 0 {
		whole += rem * priceTicks / domain.ShareScale
	}
	return whole
}
