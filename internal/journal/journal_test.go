package journal

import (
	"path/filepath"
	"testing"
	"time"

	"papertrade-systemv1/internal/engine"
	"papertrade-systemv1/internal/model"
)

func testResult(portfolio, orderID string, status model.Status) engine.Result {
	return engine.Result{
		PortfolioID: portfolio,
		Order: model.Order{
			OrderID:    orderID,
			Symbol:     "TCS",
			Side:       model.SideBuy,
			Qty:        10,
			FillPrice:  100,
			Commission: 1,
			Status:     status,
			CreatedAt:  time.Now().UTC(),
		},
		Realized: 0,
	}
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	if err := j.Record(testResult("p1", "PAPER-1", model.StatusFilled)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := j.Record(testResult("p1", "PAPER-2", model.StatusCancelled)); err != nil {
		t.Fatalf("record: %v", err)
	}

	records, err := j.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// newest first
	if records[0].OrderID != "PAPER-2" || records[1].OrderID != "PAPER-1" {
		t.Fatalf("unexpected order: %+v", records)
	}
	if records[1].Status != string(model.StatusFilled) || records[1].FillPrice != 100 {
		t.Fatalf("unexpected record: %+v", records[1])
	}
}

func TestJournal_RecentLimit(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	for i := 0; i < 5; i++ {
		if err := j.Record(testResult("p1", "PAPER-1", model.StatusFilled)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	records, err := j.Recent(3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}
