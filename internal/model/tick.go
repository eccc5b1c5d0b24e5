package model

import "time"

// Tick is one price observation from the feed.
type Tick struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	TickTS time.Time `json:"tick_ts"`
}
