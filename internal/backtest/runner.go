package backtest

import (
	"log/slog"
	"time"

	"helios/internal/dataset"
	"helios/internal/domain"
	"helios/internal/util"
)

// Config carries the run-level tunables. Nothing in the engine reads
// package-level state; two runs with equal Config and input are identical.
type Config struct {
	// InitialNotional is the starting cash allotted to each ticker.
	InitialNotional float64

	// AnnualTradingDays annualizes the Sharpe ratio.
	AnnualTradingDays float64
}

// DefaultConfig returns the research pipeline's defaults: 100 units per
// ticker and 252 trading days per year.
func DefaultConfig() Config {
	return Config{InitialNotional: 100.0, AnnualTradingDays: 252}
}

// Result is one strategy's flat output row, ready for comparison tables and
// the result store.
type Result struct {
	Strategy string
	Metrics
}

// TradeTrace records one ticker's stock-value change across a trade step.
type TradeTrace struct {
	Ticker string
	Before float64
	After  float64
}

// Action classifies the trace as "buy", "sell", or "hold" by the sign of
// the stock-value delta.
func (t TradeTrace) Action() string {
	switch {
	case t.After > t.Before:
		return "buy"
	case t.After < t.Before:
		return "sell"
	default:
		return "hold"
	}
}

// Tracer observes each day's trade step. Tracing is read-only: attaching a
// tracer never changes a run's outcome.
type Tracer interface {
	// TradeDay is called after the day's trades with every ticker's
	// stock-value delta, in portfolio order.
	TradeDay(day time.Time, trades []TradeTrace)
}

// LogTracer logs each day's non-hold trades through slog at debug level.
type LogTracer struct {
	Log *slog.Logger
}

// TradeDay implements Tracer.
func (lt LogTracer) TradeDay(day time.Time, trades []TradeTrace) {
	for _, tr := range trades {
		if tr.Action() == "hold" {
			continue
		}
		lt.Log.Debug("trade",
			"day", day.Format("2006-01-02"),
			"ticker", tr.Ticker,
			"action", tr.Action(),
			"before", tr.Before,
			"after", tr.After,
		)
	}
}

// Runner drives one policy across the test window: for every calendar day
// between the table's bounds (dense — weekends and holidays included, they
// simply carry no rows) it marks present tickers to market, records the
// portfolio value, and then dispatches the day's trades.
type Runner struct {
	cfg    Config
	policy Policy
	tracer Tracer
}

// NewRunner creates a Runner for the given policy.
func NewRunner(cfg Config, policy Policy) *Runner {
	return &Runner{cfg: cfg, policy: policy}
}

// SetTracer attaches a Tracer to the runner. A nil tracer disables tracing.
func (r *Runner) SetTracer(t Tracer) { r.tracer = t }

// Run executes the simulation over the table and returns the strategy's
// result. A single pass, fully deterministic for identical inputs: no
// retries, no partial-failure recovery. An empty table yields a zeroed
// result rather than an error so that batch comparisons survive one
// pathological input.
func (r *Runner) Run(table *dataset.Table) Result {
	tickers := table.Tickers()
	portfolio := NewPortfolio(tickers, r.cfg.InitialNotional, table.FirstPrices())

	start, end, ok := table.Bounds()
	if !ok {
		return Result{
			Strategy: r.policy.Name(),
			Metrics:  ComputeMetrics(nil, len(tickers), r.cfg.InitialNotional, r.cfg.AnnualTradingDays),
		}
	}

	// Seed value: the portfolio before day one.
	portfolio.RecordValue()

	for _, day := range util.DaysBetween(start, end) {
		rows := table.RowsOn(day)

		// Mark-to-market always precedes the trade step.
		portfolio.MarkToMarket(rows)
		portfolio.RecordValue()

		var before []float64
		if r.tracer != nil {
			before = stockValues(portfolio)
		}

		r.tradeDay(portfolio, rows)

		if r.tracer != nil {
			r.tracer.TradeDay(day, traces(portfolio, before))
		}
	}

	return Result{
		Strategy: r.policy.Name(),
		Metrics:  ComputeMetrics(portfolio.Values(), len(tickers), r.cfg.InitialNotional, r.cfg.AnnualTradingDays),
	}
}

// tradeDay dispatches the day's trades: day-atomic policies get the whole
// day at once, everything else trades ticker by ticker. Only tickers with a
// row today are touched.
func (r *Runner) tradeDay(portfolio *Portfolio, rows []*domain.FeatureRow) {
	if dt, ok := r.policy.(DayTrader); ok {
		dt.TradeDay(portfolio, rows)
		return
	}
	for _, row := range rows {
		h := portfolio.Holding(row.Ticker)
		if h == nil {
			continue
		}
		h.Cash, h.StockValue = r.policy.TradeStock(row, h.Cash, h.StockValue)
	}
}

func stockValues(p *Portfolio) []float64 {
	values := make([]float64, len(p.tickers))
	for i, ticker := range p.tickers {
		values[i] = p.holdings[ticker].StockValue
	}
	return values
}

func traces(p *Portfolio, before []float64) []TradeTrace {
	out := make([]TradeTrace, len(p.tickers))
	for i, ticker := range p.tickers {
		out[i] = TradeTrace{
			Ticker: ticker,
			Before: before[i],
			After:  p.holdings[ticker].StockValue,
		}
	}
	return out
}
