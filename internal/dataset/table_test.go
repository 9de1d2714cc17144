package dataset

import (
	"testing"
	"time"

	"helios/internal/domain"
)

func tableDay(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func TestFromRowsSortsAndIndexes(t *testing.T) {
	rows := []domain.FeatureRow{
		{Ticker: "B", Date: tableDay(3), AdjClose: 30},
		{Ticker: "A", Date: tableDay(1), AdjClose: 10},
		{Ticker: "B", Date: tableDay(1), AdjClose: 20},
		{Ticker: "A", Date: tableDay(2), AdjClose: 11},
	}

	table := FromRows(rows)
	if table.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", table.Len())
	}

	sorted := table.Rows()
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Before(sorted[i-1].Date) {
			t.Errorf("rows not date-sorted at index %d", i)
		}
	}

	// Universe order is first-seen in the date sort: A's day-1 row comes
	// before B's day-1 row because the sort is stable on input order.
	tickers := table.Tickers()
	if len(tickers) != 2 || tickers[0] != "A" || tickers[1] != "B" {
		t.Errorf("Tickers() = %v, want [A B]", tickers)
	}
}

func TestFromRowsNormalizesDates(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	rows := []domain.FeatureRow{
		{Ticker: "A", Date: time.Date(2024, 1, 5, 16, 0, 0, 0, loc), AdjClose: 10},
	}
	table := FromRows(rows)

	got := table.RowsOn(tableDay(5))
	if len(got) != 1 {
		t.Fatalf("RowsOn after normalization returned %d rows, want 1", len(got))
	}
}

func TestBounds(t *testing.T) {
	table := FromRows([]domain.FeatureRow{
		{Ticker: "A", Date: tableDay(7), AdjClose: 1},
		{Ticker: "A", Date: tableDay(2), AdjClose: 1},
		{Ticker: "A", Date: tableDay(5), AdjClose: 1},
	})
	start, end, ok := table.Bounds()
	if !ok {
		t.Fatal("Bounds() ok = false for non-empty table")
	}
	if !start.Equal(tableDay(2)) || !end.Equal(tableDay(7)) {
		t.Errorf("Bounds() = %v..%v, want %v..%v", start, end, tableDay(2), tableDay(7))
	}

	if _, _, ok := FromRows(nil).Bounds(); ok {
		t.Error("Bounds() ok = true for empty table")
	}
}

func TestRowsOnSparseDay(t *testing.T) {
	table := FromRows([]domain.FeatureRow{
		{Ticker: "A", Date: tableDay(1), AdjClose: 10},
	})
	if rows := table.RowsOn(tableDay(2)); rows != nil {
		t.Errorf("RowsOn(empty day) = %v, want nil", rows)
	}
}

func TestRowFor(t *testing.T) {
	table := FromRows([]domain.FeatureRow{
		{Ticker: "A", Date: tableDay(1), AdjClose: 10},
		{Ticker: "B", Date: tableDay(1), AdjClose: 20},
	})
	row := table.RowFor("B", tableDay(1))
	if row == nil || row.AdjClose != 20 {
		t.Errorf("RowFor(B, day 1) = %+v, want AdjClose 20", row)
	}
	if row := table.RowFor("C", tableDay(1)); row != nil {
		t.Errorf("RowFor(unknown ticker) = %+v, want nil", row)
	}
}

func TestFirstPrices(t *testing.T) {
	table := FromRows([]domain.FeatureRow{
		{Ticker: "A", Date: tableDay(3), AdjClose: 12},
		{Ticker: "A", Date: tableDay(1), AdjClose: 10},
		{Ticker: "B", Date: tableDay(2), AdjClose: 50},
	})
	prices := table.FirstPrices()
	if len(prices) != 2 {
		t.Fatalf("FirstPrices() has %d entries, want 2", len(prices))
	}
	if prices["A"] != 10 {
		t.Errorf("FirstPrices()[A] = %v, want 10 (earliest row)", prices["A"])
	}
	if prices["B"] != 50 {
		t.Errorf("FirstPrices()[B] = %v, want 50", prices["B"])
	}
}

func TestRestrict(t *testing.T) {
	table := FromRows([]domain.FeatureRow{
		{Ticker: "A", Date: tableDay(1), AdjClose: 1},
		{Ticker: "A", Date: tableDay(5), AdjClose: 2},
		{Ticker: "A", Date: tableDay(10), AdjClose: 3},
	})

	sub := table.Restrict(tableDay(5), tableDay(10))
	if sub.Len() != 2 {
		t.Fatalf("Restrict kept %d rows, want 2", sub.Len())
	}
	start, end, _ := sub.Bounds()
	if !start.Equal(tableDay(5)) || !end.Equal(tableDay(10)) {
		t.Errorf("restricted Bounds() = %v..%v", start, end)
	}

	// Original table is untouched.
	if table.Len() != 3 {
		t.Errorf("Restrict mutated the source table: Len() = %d", table.Len())
	}
}
