package engine

import (
	"sort"

	"papertrade-systemv1/internal/model"
)

// Summary is an aggregate snapshot of one portfolio.
type Summary struct {
	PortfolioID    string  `json:"portfolio_id"`
	InitialCapital float64 `json:"initial_capital"`
	Cash           float64 `json:"cash"`
	Equity         float64 `json:"equity"`
	TotalReturn    float64 `json:"total_return"`
	TotalReturnPct float64 `json:"total_return_pct"`
	RealizedPnL    float64 `json:"realized_pnl"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	Commission     float64 `json:"commission"`
	OpenPositions  int     `json:"open_positions"`
	OpenOrders     int     `json:"open_orders"`
	TotalOrders    int     `json:"total_orders"`
}

// PositionDetail is a per-position view with percentage P&L.
type PositionDetail struct {
	model.Position
	PnLPct float64 `json:"pnl_pct"`
}

// Summary returns the aggregate portfolio snapshot.
func (a *Account) Summary() Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var unrealized float64
	for _, pos := range a.positions {
		unrealized += pos.UnrealizedPnL
	}

	s := Summary{
		PortfolioID:    a.id,
		InitialCapital: a.initialCapital,
		Cash:           a.cash,
		Equity:         a.equity,
		TotalReturn:    a.equity - a.initialCapital,
		RealizedPnL:    a.realizedPnL,
		UnrealizedPnL:  unrealized,
		Commission:     a.commission,
		OpenPositions:  len(a.positions),
		OpenOrders:     len(a.openOrders),
		TotalOrders:    len(a.history) + len(a.openOrders),
	}
	if a.initialCapital != 0 {
		s.TotalReturnPct = s.TotalReturn / a.initialCapital * 100
	}
	return s
}

// Positions returns a snapshot of all open positions sorted by symbol.
func (a *Account) Positions() []PositionDetail {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]PositionDetail, 0, len(a.positions))
	for _, pos := range a.positions {
		d := PositionDetail{Position: *pos}
		if cost := pos.EntryPrice * pos.Qty; cost != 0 {
			d.PnLPct = pos.UnrealizedPnL / cost * 100
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Symbol < result[j].Symbol })
	return result
}

// History returns terminal orders, newest first. limit <= 0 returns all.
func (a *Account) History(limit int) []model.Order {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := len(a.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	result := make([]model.Order, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, *a.history[i])
	}
	return result
}

// OpenOrders returns a snapshot of pending orders sorted by creation time.
func (a *Account) OpenOrders() []model.Order {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]model.Order, 0, len(a.openOrders))
	for _, o := range a.openOrders {
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}
