// Package store defines storage interfaces for persisting and retrieving
// domain objects: price bars, feature tables, sentiment and insider
// aggregates, and backtest results.
package store

import (
	"context"
	"time"

	"helios/internal/domain"
)

// BarStore persists and retrieves daily price bars.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end].
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols with stored bars.
	ListSymbols(ctx context.Context) ([]string, error)
}

// FeatureStore persists and retrieves feature-table snapshots.
type FeatureStore interface {
	// WriteFeatures persists a complete feature table under the given name.
	WriteFeatures(ctx context.Context, name string, rows []domain.FeatureRow) error

	// ReadFeatures returns the feature table stored under the given name.
	ReadFeatures(ctx context.Context, name string) ([]domain.FeatureRow, error)
}

// SentimentStore persists and retrieves daily sentiment aggregates.
type SentimentStore interface {
	// SaveSentiment inserts or replaces daily sentiment rows.
	SaveSentiment(ctx context.Context, days []domain.SentimentDay) error

	// ReadSentiment returns sentiment rows for a ticker within [start, end],
	// ordered by date.
	ReadSentiment(ctx context.Context, ticker string, start, end time.Time) ([]domain.SentimentDay, error)
}

// InsiderStore persists and retrieves daily insider-trading aggregates.
type InsiderStore interface {
	// SaveInsiderDays inserts or replaces insider aggregate rows.
	SaveInsiderDays(ctx context.Context, days []domain.InsiderDay) error

	// ReadInsiderDays returns insider rows for a ticker within [start, end],
	// ordered by date.
	ReadInsiderDays(ctx context.Context, ticker string, start, end time.Time) ([]domain.InsiderDay, error)

	// ListInsiderTickers returns all tickers with stored insider rows.
	ListInsiderTickers(ctx context.Context) ([]string, error)
}

// ResultRow is one persisted backtest result.
type ResultRow struct {
	Strategy       string
	FinalValue     float64
	Profit         float64
	TotalReturnPct float64
	RiskPct        float64
	SharpeRatio    float64
	RunAt          time.Time
}

// ResultStore persists and retrieves backtest results.
type ResultStore interface {
	// SaveResult appends a backtest result row.
	SaveResult(ctx context.Context, row ResultRow) error

	// ListResults returns the most recent results, newest first, up to limit.
	ListResults(ctx context.Context, limit int) ([]ResultRow, error)

	// ResultsForStrategy returns results for one strategy, newest first.
	ResultsForStrategy(ctx context.Context, strategy string, limit int) ([]ResultRow, error)
}
