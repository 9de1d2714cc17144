package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics summarizes one strategy's completed daily-value series.
type Metrics struct {
	FinalValue     float64
	Profit         float64
	TotalReturnPct float64
	RiskPct        float64
	SharpeRatio    float64
}

// ComputeMetrics derives summary statistics from a daily total-value series
// (seed value first). numTickers counts every ticker passed into the run,
// traded or not; the original value is notional * numTickers. Risk is the
// sample standard deviation of day-over-day percentage changes (the first
// change is defined as 0), and Sharpe annualizes mean/risk by
// sqrt(annualDays), falling back to 0 when risk is 0 rather than dividing
// by zero. Degenerate inputs (no values, no tickers) produce a zeroed
// record, never an error.
func ComputeMetrics(values []float64, numTickers int, notional, annualDays float64) Metrics {
	var m Metrics

	if len(values) > 0 {
		m.FinalValue = values[len(values)-1]
	}

	original := notional * float64(numTickers)
	m.Profit = m.FinalValue - original
	if original > 0 {
		m.TotalReturnPct = m.Profit / original
	}

	changes := pctChanges(values)
	if len(changes) > 1 {
		m.RiskPct = stat.StdDev(changes, nil)
		if m.RiskPct > 0 {
			m.SharpeRatio = stat.Mean(changes, nil) / m.RiskPct * math.Sqrt(annualDays)
		}
	}

	return m
}

// pctChanges returns the day-over-day fractional changes of the series,
// with the first element pinned to 0 so the result has the same length as
// the input. A zero previous value yields a 0 change rather than infinity.
func pctChanges(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	changes := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev != 0 {
			changes[i] = (values[i] - prev) / prev
		}
	}
	return changes
}
