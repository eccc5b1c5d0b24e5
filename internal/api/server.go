// Package api exposes the paper trading engine over HTTP. It translates
// requests into the engine's four mutating calls (place, execute, cancel,
// price update) and its read-only projections; all trading semantics live in
// the engine itself.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"papertrade-systemv1/internal/engine"
	"papertrade-systemv1/internal/journal"
	"papertrade-systemv1/internal/metrics"
	redisstore "papertrade-systemv1/internal/store/redis"
)

// Server holds the HTTP handler dependencies. journal, cache, and metrics
// are optional; nil disables the corresponding side effects.
type Server struct {
	registry       *engine.Registry
	journal        *journal.Journal
	cache          *redisstore.Cache
	metrics        *metrics.Metrics
	log            *slog.Logger
	defaultCapital float64
}

// NewServer wires the API server.
func NewServer(
	registry *engine.Registry,
	j *journal.Journal,
	cache *redisstore.Cache,
	m *metrics.Metrics,
	log *slog.Logger,
	defaultCapital float64,
) *Server {
	return &Server{
		registry:       registry,
		journal:        j,
		cache:          cache,
		metrics:        m,
		log:            log,
		defaultCapital: defaultCapital,
	}
}

// Router returns the HTTP routes.
func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	mux.HandleFunc("GET /api/v1/portfolios", s.handleListPortfolios)
	mux.HandleFunc("POST /api/v1/portfolios", s.handleCreatePortfolio)
	mux.HandleFunc("POST /api/v1/portfolios/{id}/reset", s.handleReset)
	mux.HandleFunc("DELETE /api/v1/portfolios/{id}", s.handleDeletePortfolio)

	mux.HandleFunc("POST /api/v1/portfolios/{id}/orders", s.handlePlaceOrder)
	mux.HandleFunc("GET /api/v1/portfolios/{id}/orders", s.handleOpenOrders)
	mux.HandleFunc("POST /api/v1/portfolios/{id}/orders/{oid}/execute", s.handleExecuteOrder)
	mux.HandleFunc("DELETE /api/v1/portfolios/{id}/orders/{oid}", s.handleCancelOrder)

	mux.HandleFunc("GET /api/v1/portfolios/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/portfolios/{id}/positions", s.handlePositions)
	mux.HandleFunc("GET /api/v1/portfolios/{id}/history", s.handleHistory)

	mux.HandleFunc("POST /api/v1/prices", s.handleUpdatePrices)
	mux.HandleFunc("GET /api/v1/journal", s.handleJournal)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
