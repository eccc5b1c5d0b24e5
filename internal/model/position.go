package model

// PositionSide is the direction of open exposure.
type PositionSide string

const (
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// Epsilon is the quantity below which a position counts as closed. Absorbs
// float rounding across repeated weighted-average recomputations.
const Epsilon = 1e-4

// Position represents the aggregated exposure of one portfolio in one symbol.
// At most one position exists per symbol; opposite-direction fills reduce it.
type Position struct {
	Symbol        string       `json:"symbol"`
	Side          PositionSide `json:"side"`
	Qty           float64      `json:"qty"`
	EntryPrice    float64      `json:"entry_price"`   // volume-weighted average
	CurrentPrice  float64      `json:"current_price"` // latest mark price
	UnrealizedPnL float64      `json:"unrealized_pnl"`
	RealizedPnL   float64      `json:"realized_pnl"` // cumulative for this symbol
	Commission    float64      `json:"commission"`   // cumulative for this symbol
}

// UnrealizedAt computes unrealized P&L against the given mark price.
func (p *Position) UnrealizedAt(price float64) float64 {
	if p.Side == PositionShort {
		return (p.EntryPrice - price) * p.Qty
	}
	return (price - p.EntryPrice) * p.Qty
}

// MarketValue returns the mark value of the position. Used for equity on the
// long side only; shorts contribute unrealized P&L instead.
func (p *Position) MarketValue() float64 {
	return p.CurrentPrice * p.Qty
}

// Closed reports whether the remaining quantity is effectively zero.
func (p *Position) Closed() bool {
	return p.Qty <= Epsilon
}
