package engine

import (
	"testing"

	"papertrade-systemv1/internal/model"
)

func TestUpdatePrices_LongSlope(t *testing.T) {
	a := NewAccount("p1", 100000, 0)
	fill(t, a, model.SideBuy, 10, 100)

	prev := a.Positions()[0].UnrealizedPnL
	for _, price := range []float64{101, 105, 120} {
		a.UpdatePrices(map[string]float64{"TCS": price})
		p := a.Positions()[0]
		if p.UnrealizedPnL <= prev {
			t.Fatalf("long unrealized must increase with price, got %v -> %v", prev, p.UnrealizedPnL)
		}
		if !approx(p.UnrealizedPnL, (price-100)*10) {
			t.Fatalf("slope must equal +qty: price=%v pnl=%v", price, p.UnrealizedPnL)
		}
		prev = p.UnrealizedPnL
	}
}

func TestUpdatePrices_ShortSlope(t *testing.T) {
	a := NewAccount("p1", 100000, 0)
	fill(t, a, model.SideSell, 10, 100)

	for _, price := range []float64{95, 90, 110} {
		a.UpdatePrices(map[string]float64{"TCS": price})
		p := a.Positions()[0]
		if !approx(p.UnrealizedPnL, (100-price)*10) {
			t.Fatalf("short slope must equal -qty: price=%v pnl=%v", price, p.UnrealizedPnL)
		}
	}
}

func TestUpdatePrices_NeverTouchesCashOrOrders(t *testing.T) {
	a := NewAccount("p1", 100000, 0.001)
	fill(t, a, model.SideBuy, 10, 100)
	a.PlaceOrder("TCS", model.SideSell, 5, nil)
	before := a.Summary()

	a.UpdatePrices(map[string]float64{"TCS": 250, "INFY": 10})

	after := a.Summary()
	if after.Cash != before.Cash {
		t.Fatalf("price update moved cash: %v -> %v", before.Cash, after.Cash)
	}
	if after.RealizedPnL != before.RealizedPnL {
		t.Fatal("price update must not realize P&L")
	}
	if after.OpenOrders != before.OpenOrders || after.TotalOrders != before.TotalOrders {
		t.Fatal("price update must not touch orders")
	}
}

func TestUpdatePrices_SkipsUnknownSymbols(t *testing.T) {
	a := NewAccount("p1", 100000, 0)
	fill(t, a, model.SideBuy, 10, 100)

	a.UpdatePrices(map[string]float64{"INFY": 999})

	p := a.Positions()[0]
	if !approx(p.CurrentPrice, 100) {
		t.Fatalf("unrelated symbol must not mark the position, got %v", p.CurrentPrice)
	}
}

func TestEquity_LongMarkValueShortUnrealized(t *testing.T) {
	a := NewAccount("p1", 100000, 0)
	buy := a.PlaceOrder("TCS", model.SideBuy, 10, nil)
	if !a.ExecuteOrder(buy.OrderID, 100) {
		t.Fatal("buy failed")
	}
	sell := a.PlaceOrder("INFY", model.SideSell, 5, nil)
	if !a.ExecuteOrder(sell.OrderID, 200) {
		t.Fatal("sell failed")
	}

	a.UpdatePrices(map[string]float64{"TCS": 110, "INFY": 190})

	s := a.Summary()
	// cash 99000 + long mark 10*110 + short unrealized (200-190)*5
	want := 99000.0 + 1100 + 50
	if !approx(s.Equity, want) {
		t.Fatalf("expected equity=%v, got %v", want, s.Equity)
	}
}
