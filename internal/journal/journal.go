// Package journal persists terminal orders to SQLite for analysis and audit.
package journal

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"papertrade-systemv1/internal/engine"
)

// Journal writes every terminal order (filled, cancelled, rejected) to a
// SQLite database.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// New opens (or creates) the journal database at dbPath.
func New(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		portfolio_id  TEXT NOT NULL,
		order_id      TEXT NOT NULL,
		symbol        TEXT NOT NULL,
		side          TEXT NOT NULL,
		status        TEXT NOT NULL,
		qty           REAL NOT NULL,
		limit_price   REAL,
		fill_price    REAL NOT NULL DEFAULT 0,
		commission    REAL NOT NULL DEFAULT 0,
		realized_pnl  REAL NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL,
		closed_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_orders_portfolio ON orders(portfolio_id);
	CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened order journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// Record persists one terminal order event.
func (j *Journal) Record(res engine.Result) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	o := res.Order
	var limit any
	if o.LimitPrice != nil {
		limit = *o.LimitPrice
	}
	_, err := j.db.Exec(
		`INSERT INTO orders (portfolio_id, order_id, symbol, side, status, qty,
		                     limit_price, fill_price, commission, realized_pnl, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.PortfolioID,
		o.OrderID,
		o.Symbol,
		string(o.Side),
		string(o.Status),
		o.Qty,
		limit,
		o.FillPrice,
		o.Commission,
		res.Realized,
		o.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// Record is a row from the orders table.
type Record struct {
	ID          int64   `json:"id"`
	PortfolioID string  `json:"portfolio_id"`
	OrderID     string  `json:"order_id"`
	Symbol      string  `json:"symbol"`
	Side        string  `json:"side"`
	Status      string  `json:"status"`
	Qty         float64 `json:"qty"`
	FillPrice   float64 `json:"fill_price"`
	Commission  float64 `json:"commission"`
	RealizedPnL float64 `json:"realized_pnl"`
	CreatedAt   string  `json:"created_at"`
}

// Recent returns the last N journalled orders, newest first.
func (j *Journal) Recent(limit int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, portfolio_id, order_id, symbol, side, status, qty, fill_price, commission, realized_pnl, created_at
		 FROM orders ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.PortfolioID, &r.OrderID, &r.Symbol, &r.Side,
			&r.Status, &r.Qty, &r.FillPrice, &r.Commission, &r.RealizedPnL, &r.CreatedAt); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
