package features

import (
	"math"
	"sort"
	"time"

	"helios/internal/domain"
	"helios/internal/util"
)

// ScoredComment is one social-media comment with its externally-produced
// sentiment score. Scoring is upstream; features only aggregates.
type ScoredComment struct {
	Ticker    string
	Timestamp time.Time
	Score     float64
}

// AggregateSentiment folds scored comments into per (ticker, day)
// aggregates and derives the day-over-day composite: sentiment change,
// absolute comment-volume change, and svc = sentiment_change *
// volume_change. Non-finite intermediate values are zeroed. Results are
// ordered by ticker, then date.
func AggregateSentiment(comments []ScoredComment) []domain.SentimentDay {
	type key struct {
		ticker string
		day    time.Time
	}
	sums := make(map[key]*domain.SentimentDay)
	for _, c := range comments {
		k := key{c.Ticker, util.Day(c.Timestamp)}
		d := sums[k]
		if d == nil {
			d = &domain.SentimentDay{Ticker: c.Ticker, Date: k.day}
			sums[k] = d
		}
		// MeanSentiment accumulates the raw sum until the divide below.
		d.MeanSentiment += c.Score
		d.CommentCount++
	}

	days := make([]domain.SentimentDay, 0, len(sums))
	for _, d := range sums {
		d.MeanSentiment /= float64(d.CommentCount)
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].Ticker != days[j].Ticker {
			return days[i].Ticker < days[j].Ticker
		}
		return days[i].Date.Before(days[j].Date)
	})

	// Day-over-day diffs within each ticker. The first day of a ticker has
	// no previous day and keeps zero change.
	for i := 1; i < len(days); i++ {
		prev, cur := &days[i-1], &days[i]
		if prev.Ticker != cur.Ticker {
			continue
		}
		cur.SentimentChange = finiteOrZero(cur.MeanSentiment - prev.MeanSentiment)
		cur.VolumeChange = math.Abs(float64(cur.CommentCount - prev.CommentCount))
		cur.SVC = finiteOrZero(cur.SentimentChange * cur.VolumeChange)
	}
	return days
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
