package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"papertrade-systemv1/internal/engine"
	"papertrade-systemv1/internal/model"
)

func newTestServer() (*Server, http.Handler) {
	reg := engine.NewRegistry(0.001)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(reg, nil, nil, nil, log, 100000)
	return s, s.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlaceExecuteSummaryFlow(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders", map[string]any{
		"symbol": "TCS", "side": "buy", "qty": 10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("place: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var order model.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Status != model.StatusPending {
		t.Fatalf("expected pending order, got %v", order.Status)
	}

	rec = doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders/"+order.OrderID+"/execute",
		map[string]any{"price": 100})
	if rec.Code != http.StatusOK {
		t.Fatalf("execute: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var res map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &res)
	if !res["executed"] {
		t.Fatal("expected executed=true")
	}

	rec = doJSON(t, h, "GET", "/api/v1/portfolios/p1/summary", nil)
	var s engine.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if s.Cash != 98999 {
		t.Fatalf("expected cash=98999, got %v", s.Cash)
	}
	if s.OpenPositions != 1 {
		t.Fatalf("expected 1 position, got %d", s.OpenPositions)
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders", map[string]any{
		"symbol": "TCS", "side": "buy",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing qty must 400, got %d", rec.Code)
	}

	rec = doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders", map[string]any{
		"symbol": "TCS", "side": "hold", "qty": 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad side must 400, got %d", rec.Code)
	}

	// negative qty is passed through unvalidated
	rec = doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders", map[string]any{
		"symbol": "TCS", "side": "sell", "qty": -5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("negative qty is accepted, got %d: %s", rec.Code, rec.Body)
	}
}

func TestExecute_Failures(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, "POST", "/api/v1/portfolios/nope/orders/PAPER-1/execute",
		map[string]any{"price": 100})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown portfolio must 404, got %d", rec.Code)
	}

	doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders", map[string]any{
		"symbol": "TCS", "side": "buy", "qty": 1,
	})
	rec = doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders/PAPER-404/execute",
		map[string]any{"price": 100})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res["executed"] {
		t.Fatal("unknown order must not execute")
	}
}

func TestCancelAndHistory(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders", map[string]any{
		"symbol": "TCS", "side": "buy", "qty": 1,
	})
	var order model.Order
	json.Unmarshal(rec.Body.Bytes(), &order)

	rec = doJSON(t, h, "DELETE", "/api/v1/portfolios/p1/orders/"+order.OrderID, nil)
	var res map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &res)
	if !res["cancelled"] {
		t.Fatal("expected cancelled=true")
	}

	rec = doJSON(t, h, "GET", "/api/v1/portfolios/p1/history?limit=10", nil)
	var hist map[string][]model.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	orders := hist["orders"]
	if len(orders) != 1 || orders[0].Status != model.StatusCancelled {
		t.Fatalf("unexpected history: %+v", orders)
	}
}

func TestUpdatePrices(t *testing.T) {
	srv, h := newTestServer()

	doJSON(t, h, "POST", "/api/v1/portfolios/p1/orders", map[string]any{
		"symbol": "TCS", "side": "buy", "qty": 10,
	})
	a, _ := srv.registry.Get("p1")
	if !a.ExecuteOrder("PAPER-1", 100) {
		t.Fatal("execute failed")
	}

	rec := doJSON(t, h, "POST", "/api/v1/prices", map[string]float64{"TCS": 120})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, h, "GET", "/api/v1/portfolios/p1/positions", nil)
	var body map[string][]engine.PositionDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode positions: %v", err)
	}
	p := body["positions"][0]
	if p.CurrentPrice != 120 || p.UnrealizedPnL != 200 {
		t.Fatalf("position not marked: %+v", p)
	}
}

func TestCreateAndResetPortfolio(t *testing.T) {
	_, h := newTestServer()

	rec := doJSON(t, h, "POST", "/api/v1/portfolios", map[string]any{
		"id": "alpha", "initial_capital": 50000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var s engine.Summary
	json.Unmarshal(rec.Body.Bytes(), &s)
	if s.InitialCapital != 50000 || s.Cash != 50000 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	rec = doJSON(t, h, "POST", "/api/v1/portfolios/alpha/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, h, "POST", "/api/v1/portfolios/missing/reset", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("reset unknown: expected 404, got %d", rec.Code)
	}
}
