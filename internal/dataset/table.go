// Package dataset provides the typed feature table consumed by the
// backtesting engine: rows keyed by (ticker, date), a stable ticker
// universe, calendar bounds, and a per-day row index.
package dataset

import (
	"sort"
	"time"

	"helios/internal/domain"
	"helios/internal/util"
)

// Table is an immutable feature table restricted to some date window. Rows
// are held sorted by date; the ticker universe preserves first-seen order in
// that sort, which keeps runs deterministic for identical inputs.
type Table struct {
	rows    []domain.FeatureRow
	tickers []string
	byDay   map[time.Time][]int // row indices per calendar day
	start   time.Time
	end     time.Time
}

// FromRows builds a Table from feature rows. The input is copied and sorted
// by date with a stable sort, so ties keep their input order. Dates are
// normalized to midnight UTC.
func FromRows(rows []domain.FeatureRow) *Table {
	t := &Table{
		rows:  make([]domain.FeatureRow, len(rows)),
		byDay: make(map[time.Time][]int),
	}
	copy(t.rows, rows)
	for i := range t.rows {
		t.rows[i].Date = util.Day(t.rows[i].Date)
	}
	sort.SliceStable(t.rows, func(i, j int) bool {
		return t.rows[i].Date.Before(t.rows[j].Date)
	})

	seen := make(map[string]bool)
	for i := range t.rows {
		r := &t.rows[i]
		if !seen[r.Ticker] {
			seen[r.Ticker] = true
			t.tickers = append(t.tickers, r.Ticker)
		}
		t.byDay[r.Date] = append(t.byDay[r.Date], i)
		if t.start.IsZero() || r.Date.Before(t.start) {
			t.start = r.Date
		}
		if r.Date.After(t.end) {
			t.end = r.Date
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the date-sorted rows. Callers must not mutate the result.
func (t *Table) Rows() []domain.FeatureRow { return t.rows }

// Tickers returns the ticker universe in first-seen (date-sorted) order.
// Callers must not mutate the result.
func (t *Table) Tickers() []string { return t.tickers }

// Bounds returns the minimum and maximum date present. ok is false for an
// empty table.
func (t *Table) Bounds() (start, end time.Time, ok bool) {
	if len(t.rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.start, t.end, true
}

// RowsOn returns the rows for the given calendar day, in table order. A day
// with no data yields nil; that is the expected sparse-data case, not an
// error.
func (t *Table) RowsOn(day time.Time) []*domain.FeatureRow {
	indices := t.byDay[util.Day(day)]
	if len(indices) == 0 {
		return nil
	}
	rows := make([]*domain.FeatureRow, len(indices))
	for i, idx := range indices {
		rows[i] = &t.rows[idx]
	}
	return rows
}

// RowFor returns the first row for the given ticker on the given day, or
// nil when the ticker has no row that day.
func (t *Table) RowFor(ticker string, day time.Time) *domain.FeatureRow {
	for _, idx := range t.byDay[util.Day(day)] {
		if t.rows[idx].Ticker == ticker {
			return &t.rows[idx]
		}
	}
	return nil
}

// FirstPrices returns each ticker's adjusted close from its first row in
// date order. Tickers with no rows are absent from the map.
func (t *Table) FirstPrices() map[string]float64 {
	prices := make(map[string]float64, len(t.tickers))
	for i := range t.rows {
		r := &t.rows[i]
		if _, ok := prices[r.Ticker]; !ok {
			prices[r.Ticker] = r.AdjClose
		}
	}
	return prices
}

// Restrict returns a new Table containing only rows within [start, end]
// inclusive.
func (t *Table) Restrict(start, end time.Time) *Table {
	start, end = util.Day(start), util.Day(end)
	var rows []domain.FeatureRow
	for i := range t.rows {
		d := t.rows[i].Date
		if !d.Before(start) && !d.After(end) {
			rows = append(rows, t.rows[i])
		}
	}
	return FromRows(rows)
}
