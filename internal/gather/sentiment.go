package gather

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"helios/internal/features"
	"helios/internal/store"
)

var _ Gatherer = (*SentimentGatherer)(nil)

// SentimentGatherer ingests a CSV export of scored social-media comments,
// folds them into per-day sentiment aggregates, and saves the aggregates
// to the sentiment store. Comment scoring happens upstream; the CSV
// carries one row per comment: ticker, timestamp, score.
type SentimentGatherer struct {
	path  string
	store store.SentimentStore
	log   *slog.Logger
}

// NewSentimentGatherer creates a SentimentGatherer reading from the given
// CSV path.
func NewSentimentGatherer(path string, s store.SentimentStore) *SentimentGatherer {
	return &SentimentGatherer{
		path:  path,
		store: s,
		log:   slog.Default().With("gatherer", "sentiment"),
	}
}

// Name returns the gatherer identifier.
func (g *SentimentGatherer) Name() string { return "sentiment" }

// Run parses the comments, aggregates them per (ticker, day), and saves
// the result. A malformed row aborts the run before anything is written.
func (g *SentimentGatherer) Run(ctx context.Context) error {
	f, err := os.Open(g.path)
	if err != nil {
		return fmt.Errorf("opening comments csv: %w", err)
	}
	defer f.Close()

	comments, err := parseCommentsCSV(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", g.path, err)
	}
	if len(comments) == 0 {
		g.log.Warn("comments csv contained no rows", "path", g.path)
		return nil
	}

	days := features.AggregateSentiment(comments)
	if err := g.store.SaveSentiment(ctx, days); err != nil {
		return fmt.Errorf("saving sentiment days: %w", err)
	}
	g.log.Info("sentiment ingested", "comments", len(comments), "days", len(days))
	return nil
}

// parseCommentsCSV reads scored comments. The header must name the ticker,
// timestamp, and score columns (case-insensitive).
func parseCommentsCSV(r io.Reader) ([]features.ScoredComment, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"ticker", "timestamp", "score"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var comments []features.ScoredComment
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := parseDate(record[idx["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		score, err := strconv.ParseFloat(record[idx["score"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing score: %w", line, err)
		}

		comments = append(comments, features.ScoredComment{
			Ticker:    strings.ToUpper(strings.TrimSpace(record[idx["ticker"]])),
			Timestamp: ts,
			Score:     score,
		})
	}
	return comments, nil
}
