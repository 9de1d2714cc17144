// Package backtest implements the portfolio backtesting engine: a
// per-ticker, day-stepped simulation that converts classifier signals into
// position changes and summarizes the resulting value series into risk and
// return metrics.
package backtest

import (
	"helios/internal/domain"
)

// Holding is one ticker's slice of the portfolio: uninvested cash, the
// dollar value of the stock position, and the share price it was last
// marked at. Trades move value between Cash and StockValue and never create
// or destroy it; only MarkToMarket changes the total, through price moves.
type Holding struct {
	Cash       float64
	StockValue float64
	SharePrice float64
	priced     bool
}

// Portfolio is the mutable state of a single backtest run: one Holding per
// ticker plus the recorded daily total-value series. It is exclusively
// owned by the run that created it.
type Portfolio struct {
	tickers  []string
	holdings map[string]*Holding
	values   []float64
}

// NewPortfolio allocates a portfolio with notional cash and no stock per
// ticker. firstPrices seeds each ticker's mark price from its first
// available row; tickers absent from the map stay unpriced and are simply
// never updated (they hold their cash untouched for the whole run).
func NewPortfolio(tickers []string, notional float64, firstPrices map[string]float64) *Portfolio {
	p := &Portfolio{
		tickers:  tickers,
		holdings: make(map[string]*Holding, len(tickers)),
	}
	for _, ticker := range tickers {
		h := &Holding{Cash: notional}
		if price, ok := firstPrices[ticker]; ok {
			h.SharePrice = price
			h.priced = true
		}
		p.holdings[ticker] = h
	}
	return p
}

// Tickers returns the portfolio's ticker universe in its fixed order.
func (p *Portfolio) Tickers() []string { return p.tickers }

// Holding returns the state for one ticker, or nil for an unknown ticker.
func (p *Portfolio) Holding(ticker string) *Holding {
	return p.holdings[ticker]
}

// MarkToMarket revalues every ticker that has a row today: the share count
// implied by the previous mark is held constant and the position is
// rescaled to the row's adjusted close, which then becomes the new mark
// price. Tickers without a row keep their previous values unchanged.
func (p *Portfolio) MarkToMarket(rows []*domain.FeatureRow) {
	for _, row := range rows {
		h := p.holdings[row.Ticker]
		if h == nil {
			continue
		}
		if h.priced && h.SharePrice > 0 {
			shares := h.StockValue / h.SharePrice
			h.StockValue = shares * row.AdjClose
		}
		h.SharePrice = row.AdjClose
		h.priced = true
	}
}

// TotalValue returns the sum of cash and stock value across all tickers.
func (p *Portfolio) TotalValue() float64 {
	total := 0.0
	for _, ticker := range p.tickers {
		h := p.holdings[ticker]
		total += h.Cash + h.StockValue
	}
	return total
}

// RecordValue appends the current total value to the daily series. The
// runner records once before day one (the seed value) and once per day
// after mark-to-market.
func (p *Portfolio) RecordValue() {
	p.values = append(p.values, p.TotalValue())
}

// Values returns the recorded daily total-value series, seed first.
func (p *Portfolio) Values() []float64 { return p.values }
