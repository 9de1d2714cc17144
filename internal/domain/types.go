// Package domain defines the core data types shared across the helios
// platform: price bars, sentiment aggregates, insider transaction records,
// and the merged feature rows consumed by the backtester.
package domain

import "time"

// Bar represents one daily OHLCV price bar for a single ticker.
type Bar struct {
	Symbol   string
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// SentimentDay holds the per-day sentiment aggregate for a ticker, derived
// from scored social-media comments.
type SentimentDay struct {
	Ticker          string
	Date            time.Time
	MeanSentiment   float64
	CommentCount    int64
	SentimentChange float64 // day-over-day change of MeanSentiment
	VolumeChange    float64 // absolute day-over-day change of CommentCount
	SVC             float64 // SentimentChange * VolumeChange
}

// InsiderDay holds the per-day insider-trading aggregate for a ticker.
// Value is the signed net dollar amount (sells negative), Volume the sum of
// absolute dollar amounts, and Remaining the dollar value of shares the
// insiders still hold after their trades.
type InsiderDay struct {
	Ticker    string
	Date      time.Time
	Value     float64
	Volume    float64
	Remaining float64
}

// InsiderFeatures are the derived insider-pressure features for a ticker on
// a given day. BuyerChange is remaining-holdings over net traded value and
// TradeDirection is net value over gross volume, each computed over the
// trailing day, week (7d), month (30d), and tri-month (91d) windows.
type InsiderFeatures struct {
	BuyerChangeDay         float64
	BuyerChangeWeek        float64
	BuyerChangeMonth       float64
	BuyerChangeTriMonth    float64
	TradeDirectionDay      float64
	TradeDirectionWeek     float64
	TradeDirectionMonth    float64
	TradeDirectionTriMonth float64
}

// FeatureRow is one row of the merged feature table: everything known about
// a ticker on a calendar day, plus the classifier's output for that row.
type FeatureRow struct {
	Ticker   string
	Date     time.Time
	AdjClose float64

	// Price momentum: fractional change of AdjClose over trailing windows.
	ChangeDay   float64
	ChangeWeek  float64
	ChangeMonth float64
	Change3Mo   float64
	Change6Mo   float64
	Change9Mo   float64
	Change1Yr   float64

	// Sentiment features.
	MeanSentiment   float64
	CommentCount    float64
	SentimentChange float64
	VolumeChange    float64
	SVC             float64

	// Insider features.
	Insider InsiderFeatures

	// Target is the realized next-day return class (training label).
	Target int

	// Signal is the classifier's predicted class for this row. Zero means
	// hold; positive classes are buys, negative sells, with magnitude
	// indicating the predicted move size tier.
	Signal int

	// Probs holds the classifier's per-class probabilities aligned to the
	// class ordering [-K..K] where K is the number of tiers. Nil when the
	// table carries discrete signals only.
	Probs []float64
}

// FeatureVector returns the row's feature columns in the canonical order
// given by FeatureColumns.
func (r *FeatureRow) FeatureVector() []float64 {
	return []float64{
		r.ChangeDay, r.ChangeWeek, r.ChangeMonth, r.Change3Mo,
		r.Change6Mo, r.Change9Mo, r.Change1Yr,
		r.MeanSentiment, r.CommentCount, r.SentimentChange, r.VolumeChange, r.SVC,
		r.Insider.BuyerChangeDay, r.Insider.BuyerChangeWeek,
		r.Insider.BuyerChangeMonth, r.Insider.BuyerChangeTriMonth,
		r.Insider.TradeDirectionDay, r.Insider.TradeDirectionWeek,
		r.Insider.TradeDirectionMonth, r.Insider.TradeDirectionTriMonth,
	}
}

// FeatureColumns is the canonical ordered list of feature column names used
// by the classifier and the CSV interchange format.
var FeatureColumns = []string{
	"change_day", "change_week", "change_month", "change_3mo",
	"change_6mo", "change_9mo", "change_1yr",
	"mean_sentiment", "comment_count", "sentiment_change", "volume_change", "svc",
	"Buyer Change Day", "Buyer Change Week", "Buyer Change Month", "Buyer Change TriMonth",
	"Trade Direction Day", "Trade Direction Week", "Trade Direction Month", "Trade Direction TriMonth",
}

// Tier is one named magnitude cutoff in the move-size ladder. A next-day
// move whose absolute fractional change exceeds Threshold counts as passing
// this tier.
type Tier struct {
	Name      string
	Threshold float64
}

// DefaultTiers is the move-size ladder used to bucket next-day returns into
// classes. A return is classified by the signed count of tiers it passes.
var DefaultTiers = []Tier{
	{"Small", 0.025},
	{"Mid", 0.05},
	{"Great", 0.1},
	{"Huge", 0.2},
	{"Tremendous", 0.4},
	{"Absurd", 0.8},
}

// ClassifyReturn buckets a fractional next-day change into a signed class:
// the number of tier thresholds its magnitude passes, negative for drops.
func ClassifyReturn(change float64, tiers []Tier) int {
	passed := 0
	abs := change
	if abs < 0 {
		abs = -abs
	}
	for _, t := range tiers {
		if abs > t.Threshold {
			passed++
		}
	}
	if change < 0 {
		return -passed
	}
	return passed
}
