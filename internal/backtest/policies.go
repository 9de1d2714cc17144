package backtest

import (
	"fmt"
	"math"

	"helios/internal/domain"
	"helios/internal/model"
)

// Compile-time interface checks.
var _ Policy = (*SignalPolicy)(nil)
var _ Policy = (*BuyAndHoldPolicy)(nil)
var _ Policy = (*ScorePolicy)(nil)
var _ Policy = (*SoftmaxPolicy)(nil)
var _ DayTrader = (*SoftmaxPolicy)(nil)

// ---------------------------------------------------------------------------
// SignalPolicy — trade on the classifier's discrete class label
// ---------------------------------------------------------------------------

// SignalPolicy trades a fraction of the position on the classifier's signed
// class label. Class 0 holds. Otherwise the label's magnitude selects a bid
// fraction from Bids (index |class|-1, clamped to the last entry): positive
// classes move that fraction of cash into stock, negative classes move it
// out.
type SignalPolicy struct {
	// Bids holds the trade fraction per severity tier. The research
	// pipeline's defaults are 10% for |class| == 1 and 20% beyond.
	Bids []float64
}

// NewSignalPolicy creates a SignalPolicy with the given per-tier bids.
func NewSignalPolicy(bids []float64) *SignalPolicy {
	return &SignalPolicy{Bids: bids}
}

// Name returns "signal-tier".
func (p *SignalPolicy) Name() string { return "signal-tier" }

// TradeStock applies the tiered signal rule.
func (p *SignalPolicy) TradeStock(row *domain.FeatureRow, cash, stockValue float64) (float64, float64) {
	signal := row.Signal
	if signal == 0 || len(p.Bids) == 0 {
		return cash, stockValue
	}

	severity := signal
	if severity < 0 {
		severity = -severity
	}
	if severity > len(p.Bids) {
		severity = len(p.Bids)
	}
	bid := p.Bids[severity-1]

	if signal > 0 {
		trade := cash * bid
		return cash - trade, stockValue + trade
	}
	trade := stockValue * bid
	return cash + trade, stockValue - trade
}

// ---------------------------------------------------------------------------
// BuyAndHoldPolicy — the passive benchmark
// ---------------------------------------------------------------------------

// BuyAndHoldPolicy moves all available cash into stock on the first day a
// ticker has data and never trades again. It is the baseline every other
// policy is compared against.
type BuyAndHoldPolicy struct{}

// Name returns "buy-and-hold".
func (p *BuyAndHoldPolicy) Name() string { return "buy-and-hold" }

// TradeStock invests any remaining cash; once cash is zero the position is
// untouched regardless of signals.
func (p *BuyAndHoldPolicy) TradeStock(_ *domain.FeatureRow, cash, stockValue float64) (float64, float64) {
	if cash > 0 {
		return 0, stockValue + cash
	}
	return cash, stockValue
}

// ---------------------------------------------------------------------------
// ScorePolicy — trade on the raw composite score
// ---------------------------------------------------------------------------

// ScorePolicy trades on the continuous sentiment-volume-change score
// directly, bypassing the classifier: above BuyThreshold it moves Fraction
// of cash into stock, below SellThreshold it moves Fraction of stock into
// cash, otherwise it holds. Thresholds are independent; the defaults are
// symmetric at +0.5/-0.5.
type ScorePolicy struct {
	BuyThreshold  float64
	SellThreshold float64
	Fraction      float64
}

// NewScorePolicy creates a ScorePolicy with the given thresholds and trade
// fraction.
func NewScorePolicy(buy, sell, fraction float64) *ScorePolicy {
	return &ScorePolicy{BuyThreshold: buy, SellThreshold: sell, Fraction: fraction}
}

// Name returns "raw-svc".
func (p *ScorePolicy) Name() string { return "raw-svc" }

// TradeStock applies the score-threshold rule.
func (p *ScorePolicy) TradeStock(row *domain.FeatureRow, cash, stockValue float64) (float64, float64) {
	switch {
	case row.SVC > p.BuyThreshold:
		trade := cash * p.Fraction
		return cash - trade, stockValue + trade
	case row.SVC < p.SellThreshold:
		trade := stockValue * p.Fraction
		return cash + trade, stockValue - trade
	default:
		return cash, stockValue
	}
}

// ---------------------------------------------------------------------------
// SoftmaxPolicy — pooled probability-weighted reallocation
// ---------------------------------------------------------------------------

// SoftmaxPolicy reallocates the pooled value of every ticker present on a
// day in proportion to exp(beta * expected-return), where the expected
// return folds the classifier's per-class probabilities against the growth
// table. It is a full liquidation-and-redistribution step: present tickers'
// cash and stock are swept into one pool and redistributed entirely into
// stock positions. Absent tickers keep their standing allocation.
type SoftmaxPolicy struct {
	Beta       float64
	Growth     GrowthTable
	Classifier model.RowClassifier
}

// NewSoftmaxPolicy creates a SoftmaxPolicy with the given inverse
// temperature, growth table, and probability source.
func NewSoftmaxPolicy(beta float64, growth GrowthTable, classifier model.RowClassifier) *SoftmaxPolicy {
	return &SoftmaxPolicy{Beta: beta, Growth: growth, Classifier: classifier}
}

// Name returns "softmax-beta<beta>".
func (p *SoftmaxPolicy) Name() string { return fmt.Sprintf("softmax-beta%g", p.Beta) }

// TradeStock is unused; SoftmaxPolicy trades whole days via TradeDay.
func (p *SoftmaxPolicy) TradeStock(_ *domain.FeatureRow, cash, stockValue float64) (float64, float64) {
	return cash, stockValue
}

// TradeDay performs the pooled reallocation. The read phase computes every
// present ticker's weight and pool contribution; only once the total weight
// is known to be usable does the write phase touch any holding, so the step
// is atomic with respect to the day. A zero total weight (degenerate
// probabilities, or none available) leaves the day untraded.
func (p *SoftmaxPolicy) TradeDay(portfolio *Portfolio, rows []*domain.FeatureRow) {
	type entry struct {
		holding *Holding
		weight  float64
	}

	// One row per ticker: the first row wins when a day carries duplicates.
	seen := make(map[string]bool, len(rows))

	var entries []entry
	totalWeight := 0.0
	pool := 0.0
	for _, row := range rows {
		if seen[row.Ticker] {
			continue
		}
		seen[row.Ticker] = true

		h := portfolio.Holding(row.Ticker)
		if h == nil {
			continue
		}
		probs, ok := p.Classifier.RowProba(row)
		if !ok {
			// No probabilities for this row: treat the ticker as absent
			// today rather than guessing a weight.
			continue
		}

		weight := math.Exp(p.Growth.ExpectedReturnFactor(probs) * p.Beta)
		entries = append(entries, entry{holding: h, weight: weight})
		totalWeight += weight
		pool += h.Cash + h.StockValue
	}

	if totalWeight == 0 {
		return
	}

	for _, e := range entries {
		e.holding.Cash = 0
		e.holding.StockValue = pool * e.weight / totalWeight
	}
}
