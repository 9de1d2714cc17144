package features

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"helios/internal/domain"
	"helios/internal/store"
	"helios/internal/util"
)

// historyCalendarDays is how far before the requested window bars are read
// so that the one-year momentum window is complete on the first emitted
// row. 252 trading rows span roughly 365 calendar days; the margin covers
// market closures.
const historyCalendarDays = 550

// Builder merges price bars, sentiment aggregates, and insider aggregates
// into the flat feature table. The merge mirrors the research pipeline: a
// row is emitted for a (ticker, day) only when a bar and a sentiment
// aggregate both exist, momentum history is complete, and insider features
// are known (forward-filled from the most recent insider activity).
type Builder struct {
	Bars      store.BarStore
	Sentiment store.SentimentStore
	Insider   store.InsiderStore
	Tiers     []domain.Tier
	Log       *slog.Logger
}

// Build produces feature rows for the given tickers within [start, end].
func (b *Builder) Build(ctx context.Context, tickers []string, start, end time.Time) ([]domain.FeatureRow, error) {
	log := b.Log
	if log == nil {
		log = slog.Default()
	}
	tiers := b.Tiers
	if len(tiers) == 0 {
		tiers = domain.DefaultTiers
	}

	start, end = util.Day(start), util.Day(end)
	historyStart := start.AddDate(0, 0, -historyCalendarDays)

	var rows []domain.FeatureRow
	for _, ticker := range tickers {
		tickerRows, err := b.buildTicker(ctx, ticker, historyStart, start, end, tiers)
		if err != nil {
			return nil, fmt.Errorf("building features for %s: %w", ticker, err)
		}
		if len(tickerRows) == 0 {
			log.Debug("no feature rows", "ticker", ticker)
			continue
		}
		rows = append(rows, tickerRows...)
	}

	log.Info("feature table built", "tickers", len(tickers), "rows", len(rows))
	return rows, nil
}

func (b *Builder) buildTicker(ctx context.Context, ticker string, historyStart, start, end time.Time, tiers []domain.Tier) ([]domain.FeatureRow, error) {
	bars, err := b.Bars.ReadBars(ctx, ticker, historyStart, end)
	if err != nil {
		return nil, fmt.Errorf("reading bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, nil
	}

	momentum := ComputeMomentum(bars) // sorts bars by date

	sentiment, err := b.Sentiment.ReadSentiment(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("reading sentiment: %w", err)
	}
	sentimentByDay := make(map[time.Time]*domain.SentimentDay, len(sentiment))
	for i := range sentiment {
		sentimentByDay[util.Day(sentiment[i].Date)] = &sentiment[i]
	}

	insiderDays, err := b.Insider.ReadInsiderDays(ctx, ticker, historyStart, end)
	if err != nil {
		return nil, fmt.Errorf("reading insider days: %w", err)
	}
	insiderByDay := ComputeInsiderFeatures(insiderDays)

	var rows []domain.FeatureRow
	var lastInsider *domain.InsiderFeatures
	for i := range bars {
		bar := &bars[i]
		day := util.Day(bar.Date)

		// Forward-fill insider features from the latest activity on or
		// before this bar.
		if feat, ok := insiderByDay[day]; ok {
			f := feat
			lastInsider = &f
		}

		if day.Before(start) || day.After(end) {
			continue
		}
		if !momentum[i].Complete {
			continue
		}
		sent, ok := sentimentByDay[day]
		if !ok {
			continue
		}
		if lastInsider == nil {
			continue
		}
		nextChange, ok := NextDayChange(bars, i)
		if !ok {
			continue
		}

		m := momentum[i]
		rows = append(rows, domain.FeatureRow{
			Ticker:   ticker,
			Date:     day,
			AdjClose: bar.AdjClose,

			ChangeDay:   m.ChangeDay,
			ChangeWeek:  m.ChangeWeek,
			ChangeMonth: m.ChangeMonth,
			Change3Mo:   m.Change3Mo,
			Change6Mo:   m.Change6Mo,
			Change9Mo:   m.Change9Mo,
			Change1Yr:   m.Change1Yr,

			MeanSentiment:   sent.MeanSentiment,
			CommentCount:    float64(sent.CommentCount),
			SentimentChange: sent.SentimentChange,
			VolumeChange:    sent.VolumeChange,
			SVC:             sent.SVC,

			Insider: *lastInsider,

			Target: domain.ClassifyReturn(nextChange, tiers),
		})
	}
	return rows, nil
}
