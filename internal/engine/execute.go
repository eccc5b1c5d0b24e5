package engine

import (
	"papertrade-systemv1/internal/model"
)

// ExecuteOrder settles an open order at fillPrice as a single transaction
// across cash, the symbol's position, and the order ledger.
//
// Returns false without any state change when the order id is unknown or the
// fill price fails the limit-crossing check (the order stays open so the
// caller may retry at a different price). A buy that exceeds available cash
// is terminal: the order moves to history as rejected and false is returned.
func (a *Account) ExecuteOrder(orderID string, fillPrice float64) bool {
	a.mu.Lock()
	o, ok := a.openOrders[orderID]
	if !ok {
		a.mu.Unlock()
		return false
	}

	if o.LimitPrice != nil {
		limit := *o.LimitPrice
		if (o.Side == model.SideBuy && fillPrice > limit) ||
			(o.Side == model.SideSell && fillPrice < limit) {
			// Not crossed — leave the order open.
			a.mu.Unlock()
			return false
		}
	}

	notional := o.Notional(fillPrice)
	fee := notional * a.commissionRate

	var realized float64
	if o.Side == model.SideBuy {
		if a.cash < notional+fee {
			a.finalizeLocked(o, model.StatusRejected)
			res := Result{PortfolioID: a.id, Order: *o}
			a.mu.Unlock()
			a.emit(res)
			return false
		}
		a.cash -= notional + fee
		realized = a.applyBuyLocked(o.Symbol, o.Qty, fillPrice, fee)
	} else {
		realized = a.applySellLocked(o.Symbol, o.Qty, fillPrice, fee)
	}

	a.realizedPnL += realized
	a.commission += fee

	now := a.now().UTC()
	o.FillPrice = fillPrice
	o.FilledQty = o.Qty
	o.Commission = fee
	o.FilledAt = &now
	a.finalizeLocked(o, model.StatusFilled)
	a.recomputeEquityLocked()

	res := Result{PortfolioID: a.id, Order: *o, Realized: realized}
	a.mu.Unlock()

	a.emit(res)
	return true
}

// applyBuyLocked upserts the symbol's position for a buy fill. Cash has
// already been debited. A buy against an existing short reduces it, realizing
// (entry - fill) * closed qty; any excess beyond the short's quantity flips
// into a fresh long at the fill price. Returns realized P&L.
func (a *Account) applyBuyLocked(symbol string, qty, fillPrice, fee float64) float64 {
	pos, ok := a.positions[symbol]
	if !ok || pos.Side == model.PositionLong {
		a.extendLocked(symbol, model.PositionLong, qty, fillPrice, fee)
		return 0
	}

	realized, excess := a.reduceLocked(pos, qty, fillPrice, fee)
	if excess > model.Epsilon {
		a.extendLocked(symbol, model.PositionLong, excess, fillPrice, 0)
	}
	return realized
}

// applySellLocked upserts the symbol's position for a sell fill. A sell
// against an existing long reduces it, realizing (fill - entry) * closed qty
// and crediting the proceeds minus commission to cash; any excess flips into
// a fresh short. With no long open, the sell opens or extends a short at the
// fill price with no cash credited and no margin withheld. Returns realized
// P&L.
func (a *Account) applySellLocked(symbol string, qty, fillPrice, fee float64) float64 {
	pos, ok := a.positions[symbol]
	if !ok || pos.Side == model.PositionShort {
		a.extendLocked(symbol, model.PositionShort, qty, fillPrice, fee)
		return 0
	}

	closeQty := qty
	if closeQty > pos.Qty {
		closeQty = pos.Qty
	}
	a.cash += closeQty*fillPrice - fee

	realized, excess := a.reduceLocked(pos, qty, fillPrice, fee)
	if excess > model.Epsilon {
		a.extendLocked(symbol, model.PositionShort, excess, fillPrice, 0)
	}
	return realized
}

// extendLocked opens the symbol's position or extends it on the same side,
// recomputing the volume-weighted entry price.
func (a *Account) extendLocked(symbol string, side model.PositionSide, qty, fillPrice, fee float64) {
	pos, ok := a.positions[symbol]
	if !ok {
		pos = &model.Position{
			Symbol:     symbol,
			Side:       side,
			Qty:        qty,
			EntryPrice: fillPrice,
		}
		a.positions[symbol] = pos
	} else {
		total := pos.Qty + qty
		if total != 0 {
			pos.EntryPrice = (pos.Qty*pos.EntryPrice + qty*fillPrice) / total
		}
		pos.Qty = total
	}
	pos.Commission += fee
	pos.CurrentPrice = fillPrice
	pos.UnrealizedPnL = pos.UnrealizedAt(fillPrice)
}

// reduceLocked closes up to the open quantity of pos against fillPrice,
// realizing P&L on the closed amount and leaving the entry price unchanged.
// Deletes the position once its quantity falls within epsilon of zero.
// Returns the realized P&L and the unfilled excess quantity.
func (a *Account) reduceLocked(pos *model.Position, qty, fillPrice, fee float64) (realized, excess float64) {
	closeQty := qty
	if closeQty > pos.Qty {
		closeQty = pos.Qty
	}
	excess = qty - closeQty

	if pos.Side == model.PositionLong {
		realized = (fillPrice - pos.EntryPrice) * closeQty
	} else {
		realized = (pos.EntryPrice - fillPrice) * closeQty
	}

	pos.Qty -= closeQty
	pos.RealizedPnL += realized
	pos.Commission += fee
	pos.CurrentPrice = fillPrice
	pos.UnrealizedPnL = pos.UnrealizedAt(fillPrice)

	if pos.Closed() {
		delete(a.positions, pos.Symbol)
	}
	return realized, excess
}
