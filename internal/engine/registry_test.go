package engine

import (
	"testing"
	"time"

	"papertrade-systemv1/internal/model"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry(0.001)

	a1 := r.GetOrCreate("alpha", 100000)
	a2 := r.GetOrCreate("alpha", 5) // capital of an existing id is ignored
	if a1 != a2 {
		t.Fatal("GetOrCreate must return the same account for the same id")
	}
	if s := a2.Summary(); !approx(s.InitialCapital, 100000) {
		t.Fatalf("second GetOrCreate must not refund the account: %+v", s)
	}

	if _, ok := r.Get("beta"); ok {
		t.Fatal("Get must not create accounts")
	}
}

func TestRegistry_ResetAndDelete(t *testing.T) {
	r := NewRegistry(0.001)
	a := r.GetOrCreate("alpha", 100000)
	fill(t, a, model.SideBuy, 10, 100)

	if r.Reset("missing") {
		t.Fatal("reset of unknown id must fail")
	}
	if !r.Reset("alpha") {
		t.Fatal("reset failed")
	}
	if s := a.Summary(); !approx(s.Cash, 100000) || s.OpenPositions != 0 {
		t.Fatalf("reset did not restore the account: %+v", s)
	}

	if !r.Delete("alpha") || r.Delete("alpha") {
		t.Fatal("delete must succeed once and then fail")
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry(0.001)
	r.GetOrCreate("zeta", 1)
	r.GetOrCreate("alpha", 1)

	ids := r.List()
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "zeta" {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
}

func TestRegistry_UpdateAll(t *testing.T) {
	r := NewRegistry(0)
	a := r.GetOrCreate("alpha", 100000)
	b := r.GetOrCreate("beta", 100000)
	fill(t, a, model.SideBuy, 10, 100)
	fill(t, b, model.SideBuy, 5, 100)

	r.UpdateAll(map[string]float64{"TCS": 120})

	if !approx(a.Positions()[0].UnrealizedPnL, 200) {
		t.Fatalf("alpha not marked: %+v", a.Positions()[0])
	}
	if !approx(b.Positions()[0].UnrealizedPnL, 100) {
		t.Fatalf("beta not marked: %+v", b.Positions()[0])
	}
}

func TestRegistry_ResultsChannel(t *testing.T) {
	r := NewRegistry(0.001)
	a := r.GetOrCreate("alpha", 100000)

	o := a.PlaceOrder("TCS", model.SideBuy, 10, nil)
	if !a.ExecuteOrder(o.OrderID, 100) {
		t.Fatal("execute failed")
	}

	select {
	case res := <-r.Results():
		if res.PortfolioID != "alpha" || res.Order.Status != model.StatusFilled {
			t.Fatalf("unexpected result: %+v", res)
		}
		if !approx(res.Order.FillPrice, 100) {
			t.Fatalf("unexpected fill price: %v", res.Order.FillPrice)
		}
	case <-time.After(time.Second):
		t.Fatal("no result emitted for a fill")
	}

	// cancels are reported too
	o2 := a.PlaceOrder("TCS", model.SideSell, 1, nil)
	a.CancelOrder(o2.OrderID)
	select {
	case res := <-r.Results():
		if res.Order.Status != model.StatusCancelled {
			t.Fatalf("expected cancel event, got %+v", res)
		}
	case <-time.After(time.Second):
		t.Fatal("no result emitted for a cancel")
	}
}
