package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"papertrade-systemv1/internal/engine"
	"papertrade-systemv1/internal/journal"
	"papertrade-systemv1/internal/logger"
	"papertrade-systemv1/internal/model"
)

type createPortfolioRequest struct {
	ID             string   `json:"id"`
	InitialCapital *float64 `json:"initial_capital,omitempty"`
}

type placeOrderRequest struct {
	Symbol     string   `json:"symbol"`
	Side       string   `json:"side"`
	Qty        *float64 `json:"qty"`
	LimitPrice *float64 `json:"limit_price,omitempty"`
}

type executeOrderRequest struct {
	Price *float64 `json:"price"`
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	capital := s.defaultCapital
	if req.InitialCapital != nil {
		capital = *req.InitialCapital
	}
	a := s.registry.GetOrCreate(req.ID, capital)
	writeJSON(w, http.StatusCreated, a.Summary())
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"portfolios": s.registry.List()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.registry.Reset(id) {
		writeError(w, http.StatusNotFound, "unknown portfolio")
		return
	}
	s.log.Info("portfolio reset", "portfolio", id)
	a, _ := s.registry.Get(id)
	writeJSON(w, http.StatusOK, a.Summary())
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.registry.Delete(id) {
		writeError(w, http.StatusNotFound, "unknown portfolio")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID(id, time.Now()))

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Symbol == "" || req.Qty == nil {
		writeError(w, http.StatusBadRequest, "symbol and qty are required")
		return
	}
	side, ok := parseSide(req.Side)
	if !ok {
		writeError(w, http.StatusBadRequest, "side must be BUY or SELL")
		return
	}

	a := s.registry.GetOrCreate(id, s.defaultCapital)
	o := a.PlaceOrder(req.Symbol, side, *req.Qty, req.LimitPrice)
	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}
	s.log.InfoContext(ctx, "order placed",
		"portfolio", id, "order_id", o.OrderID,
		"symbol", o.Symbol, "side", o.Side, "qty", o.Qty)

	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleExecuteOrder(w http.ResponseWriter, r *http.Request) {
	id, oid := r.PathValue("id"), r.PathValue("oid")

	var req executeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Price == nil {
		writeError(w, http.StatusBadRequest, "price is required")
		return
	}
	a, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown portfolio")
		return
	}

	start := time.Now()
	executed := a.ExecuteOrder(oid, *req.Price)
	if s.metrics != nil {
		s.metrics.ExecutionDur.Observe(time.Since(start).Seconds())
	}
	s.log.Info("order execution",
		"portfolio", id, "order_id", oid, "price", *req.Price, "executed", executed)

	writeJSON(w, http.StatusOK, map[string]bool{"executed": executed})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, oid := r.PathValue("id"), r.PathValue("oid")
	a, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown portfolio")
		return
	}
	cancelled := a.CancelOrder(oid)
	s.log.Info("order cancel", "portfolio", id, "order_id", oid, "cancelled", cancelled)
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func (s *Server) handleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	var prices map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&prices); err != nil {
		writeError(w, http.StatusBadRequest, "invalid price map")
		return
	}
	s.registry.UpdateAll(prices)
	if s.metrics != nil {
		s.metrics.PriceUpdates.Inc()
	}
	if s.cache != nil {
		if err := s.cache.SetPrices(r.Context(), prices); err != nil {
			s.log.Warn("price cache write failed", "err", err)
		}
	}
	setCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	a, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown portfolio")
		return
	}
	writeJSON(w, http.StatusOK, a.Summary())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	a, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown portfolio")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]engine.PositionDetail{"positions": a.Positions()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	a, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown portfolio")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string][]model.Order{"orders": a.History(limit)})
}

func (s *Server) handleOpenOrders(w http.ResponseWriter, r *http.Request) {
	a, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown portfolio")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Order{"orders": a.OpenOrders()})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := s.journal.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "journal read failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]journal.Record{"records": records})
}

func parseSide(s string) (model.Side, bool) {
	switch strings.ToUpper(s) {
	case string(model.SideBuy):
		return model.SideBuy, true
	case string(model.SideSell):
		return model.SideSell, true
	default:
		return "", false
	}
}
