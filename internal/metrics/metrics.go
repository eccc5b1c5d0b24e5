// Package metrics exposes Prometheus metrics for the paper trading engine.
package metrics

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine service.
type Metrics struct {
	OrdersPlaced    prometheus.Counter
	OrdersFilled    prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrdersRejected  prometheus.Counter
	PriceUpdates    prometheus.Counter
	FeedReconnects  prometheus.Counter
	ExecutionDur    prometheus.Histogram
	PortfolioEquity *prometheus.GaugeVec
	RealizedPnL     *prometheus.GaugeVec
}

// NewMetrics registers and returns all engine metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_placed_total",
			Help: "Orders accepted into the open set",
		}),
		OrdersFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_filled_total",
			Help: "Orders settled by the execution engine",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_cancelled_total",
			Help: "Orders cancelled while open",
		}),
		OrdersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_rejected_total",
			Help: "Buy orders rejected for insufficient funds",
		}),
		PriceUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_price_updates_total",
			Help: "Mark-to-market price snapshots applied",
		}),
		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_feed_reconnects_total",
			Help: "Websocket feed reconnection attempts",
		}),
		ExecutionDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "papertrade_execution_duration_seconds",
			Help:    "Time to settle one order",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		PortfolioEquity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "papertrade_portfolio_equity",
			Help: "Latest equity per portfolio",
		}, []string{"portfolio"}),
		RealizedPnL: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "papertrade_portfolio_realized_pnl",
			Help: "Cumulative realized P&L per portfolio",
		}, []string{"portfolio"}),
	}

	prometheus.MustRegister(
		m.OrdersPlaced,
		m.OrdersFilled,
		m.OrdersCancelled,
		m.OrdersRejected,
		m.PriceUpdates,
		m.FeedReconnects,
		m.ExecutionDur,
		m.PortfolioEquity,
		m.RealizedPnL,
	)

	return m
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates the metrics server.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
