package engine

import "papertrade-systemv1/internal/model"

// UpdatePrices marks open positions against the latest prices and recomputes
// unrealized P&L and equity. Symbols absent from either the price map or the
// position store are skipped. Cash, orders, and realized P&L are never
// touched here.
func (a *Account) UpdatePrices(prices map[string]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for symbol, pos := range a.positions {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		pos.CurrentPrice = price
		pos.UnrealizedPnL = pos.UnrealizedAt(price)
	}
	a.recomputeEquityLocked()
}

// recomputeEquityLocked derives equity as cash plus the mark value of long
// positions plus the unrealized P&L of short positions. Shorts never
// credited cash on open, so only their paper P&L contributes. Caller holds
// a.mu.
func (a *Account) recomputeEquityLocked() {
	equity := a.cash
	for _, pos := range a.positions {
		if pos.Side == model.PositionLong {
			equity += pos.MarketValue()
		} else {
			equity += pos.UnrealizedPnL
		}
	}
	a.equity = equity
}
