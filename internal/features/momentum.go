// Package features derives the per-ticker numeric features consumed by the
// classifier and the backtester: price momentum over trailing windows,
// daily sentiment aggregates and the sentiment-volume-change composite,
// insider buy/sell pressure ratios, and the realized next-day target class.
package features

import (
	"sort"

	"helios/internal/domain"
)

// Momentum windows, in trading rows (not calendar days): the trailing
// offsets the research pipeline uses for 1 day, 1 week, 1 month, 3/6/9
// months, and 1 year.
const (
	windowDay   = 1
	windowWeek  = 5
	windowMonth = 21
	window3Mo   = 63
	window6Mo   = 126
	window9Mo   = 189
	window1Yr   = 252
)

// Momentum holds the fractional adjusted-close changes for one bar over
// every trailing window. Complete is false until the bar has a full year of
// history behind it.
type Momentum struct {
	ChangeDay   float64
	ChangeWeek  float64
	ChangeMonth float64
	Change3Mo   float64
	Change6Mo   float64
	Change9Mo   float64
	Change1Yr   float64
	Complete    bool
}

// ComputeMomentum computes trailing changes for a single ticker's bars. The
// input is sorted by date in place; the result aligns to the sorted order.
func ComputeMomentum(bars []domain.Bar) []Momentum {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	out := make([]Momentum, len(bars))
	for i := range bars {
		m := &out[i]
		m.ChangeDay = trailingChange(bars, i, windowDay)
		m.ChangeWeek = trailingChange(bars, i, windowWeek)
		m.ChangeMonth = trailingChange(bars, i, windowMonth)
		m.Change3Mo = trailingChange(bars, i, window3Mo)
		m.Change6Mo = trailingChange(bars, i, window6Mo)
		m.Change9Mo = trailingChange(bars, i, window9Mo)
		m.Change1Yr = trailingChange(bars, i, window1Yr)
		m.Complete = i >= window1Yr
	}
	return out
}

// trailingChange returns the fractional change of adjusted close from
// `window` rows back to row i, or 0 when the history is too short or the
// base price is 0.
func trailingChange(bars []domain.Bar, i, window int) float64 {
	j := i - window
	if j < 0 {
		return 0
	}
	base := bars[j].AdjClose
	if base == 0 {
		return 0
	}
	return (bars[i].AdjClose - base) / base
}

// NextDayChange returns the fractional change from row i to row i+1, with
// ok=false on the final row. It feeds the target class: what the price does
// the next trading day.
func NextDayChange(bars []domain.Bar, i int) (float64, bool) {
	if i+1 >= len(bars) {
		return 0, false
	}
	base := bars[i].AdjClose
	if base == 0 {
		return 0, false
	}
	return (bars[i+1].AdjClose - base) / base, true
}
