package model

import "time"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Status tracks an order through its lifecycle. Transitions are one-way:
// PENDING -> FILLED | CANCELLED | REJECTED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
	StatusRejected  Status = "REJECTED"
)

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusRejected
}

// Order represents a paper order. LimitPrice nil means a market order.
// FilledQty is set only on a filled order and always equals Qty — partial
// fills are not supported.
type Order struct {
	OrderID    string     `json:"order_id"`
	Symbol     string     `json:"symbol"`
	Side       Side       `json:"side"`
	Qty        float64    `json:"qty"`
	LimitPrice *float64   `json:"limit_price,omitempty"`
	FillPrice  float64    `json:"fill_price"`
	FilledQty  float64    `json:"filled_qty"`
	Status     Status     `json:"status"`
	Commission float64    `json:"commission"`
	CreatedAt  time.Time  `json:"created_at"`
	FilledAt   *time.Time `json:"filled_at,omitempty"`
}

// Notional returns the order value at the given price.
func (o *Order) Notional(price float64) float64 {
	return o.Qty * price
}
