// Package engine implements the virtual-capital trade execution and ledger
// engine: order lifecycle, per-symbol position accounting, and portfolio
// valuation.
//
// Every mutating operation (place, execute, cancel, price update) touches
// cash, a position, and the order ledger together, so each is applied as one
// atomic unit under the account mutex. The account is the serialization
// boundary; readers take snapshots and never observe a partial update.
package engine

import (
	"fmt"
	"sync"
	"time"

	"papertrade-systemv1/internal/model"
)

// Account holds one portfolio's cash, positions, and order ledger.
type Account struct {
	mu sync.RWMutex

	id             string
	initialCapital float64
	commissionRate float64

	cash        float64
	equity      float64
	positions   map[string]*model.Position // key = symbol
	openOrders  map[string]*model.Order    // key = order id
	history     []*model.Order             // terminal orders, oldest first
	realizedPnL float64
	commission  float64

	orderSeq int64
	notify   func(Result)
	now      func() time.Time
}

// NewAccount creates an account funded with initialCapital.
func NewAccount(id string, initialCapital, commissionRate float64) *Account {
	return &Account{
		id:             id,
		initialCapital: initialCapital,
		commissionRate: commissionRate,
		cash:           initialCapital,
		equity:         initialCapital,
		positions:      make(map[string]*model.Position),
		openOrders:     make(map[string]*model.Order),
		now:            time.Now,
	}
}

// ID returns the portfolio id.
func (a *Account) ID() string { return a.id }

// PlaceOrder queues a pending order. No funds check happens here — funds are
// checked at execution time. Quantity and limit price are passed through
// unvalidated, matching the permissive ledger contract.
func (a *Account) PlaceOrder(symbol string, side model.Side, qty float64, limit *float64) model.Order {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.orderSeq++
	o := &model.Order{
		OrderID:    fmt.Sprintf("PAPER-%d", a.orderSeq),
		Symbol:     symbol,
		Side:       side,
		Qty:        qty,
		LimitPrice: limit,
		Status:     model.StatusPending,
		CreatedAt:  a.now().UTC(),
	}
	a.openOrders[o.OrderID] = o
	return *o
}

// CancelOrder moves an open order to history as cancelled. Returns false and
// changes nothing if the id is not currently open.
func (a *Account) CancelOrder(orderID string) bool {
	a.mu.Lock()
	o, ok := a.openOrders[orderID]
	if !ok {
		a.mu.Unlock()
		return false
	}
	a.finalizeLocked(o, model.StatusCancelled)
	res := Result{PortfolioID: a.id, Order: *o}
	a.mu.Unlock()

	a.emit(res)
	return true
}

// Reset restores cash to the initial capital and clears all positions,
// orders, and history.
func (a *Account) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cash = a.initialCapital
	a.equity = a.initialCapital
	a.positions = make(map[string]*model.Position)
	a.openOrders = make(map[string]*model.Order)
	a.history = nil
	a.realizedPnL = 0
	a.commission = 0
	a.orderSeq = 0
}

// finalizeLocked moves an open order to the history sequence with a terminal
// status. Caller holds a.mu.
func (a *Account) finalizeLocked(o *model.Order, status model.Status) {
	o.Status = status
	delete(a.openOrders, o.OrderID)
	a.history = append(a.history, o)
}

func (a *Account) emit(res Result) {
	if a.notify != nil {
		a.notify(res)
	}
}
