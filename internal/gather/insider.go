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
	"time"

	"helios/internal/domain"
	"helios/internal/store"
	"helios/internal/util"
)

var _ Gatherer = (*InsiderGatherer)(nil)

// InsiderGatherer ingests a CSV export of daily insider-trading aggregates
// into the insider store. The file carries one row per (ticker, day):
// ticker, date, net signed dollar value, gross dollar volume, and the
// dollar value of remaining insider holdings.
type InsiderGatherer struct {
	path  string
	store store.InsiderStore
	log   *slog.Logger
}

// NewInsiderGatherer creates an InsiderGatherer reading from the given CSV
// path.
func NewInsiderGatherer(path string, s store.InsiderStore) *InsiderGatherer {
	return &InsiderGatherer{
		path:  path,
		store: s,
		log:   slog.Default().With("gatherer", "insider"),
	}
}

// Name returns the gatherer identifier.
func (g *InsiderGatherer) Name() string { return "insider" }

// Run parses the CSV and saves every row. Ingestion is all-or-nothing: a
// malformed row aborts the run before anything is written.
func (g *InsiderGatherer) Run(ctx context.Context) error {
	f, err := os.Open(g.path)
	if err != nil {
		return fmt.Errorf("opening insider csv: %w", err)
	}
	defer f.Close()

	days, err := parseInsiderCSV(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", g.path, err)
	}
	if len(days) == 0 {
		g.log.Warn("insider csv contained no rows", "path", g.path)
		return nil
	}

	if err := g.store.SaveInsiderDays(ctx, days); err != nil {
		return fmt.Errorf("saving insider days: %w", err)
	}
	g.log.Info("insider rows ingested", "rows", len(days))
	return nil
}

// parseInsiderCSV reads insider aggregate rows. The header must name the
// ticker, date, value, volume, and remaining columns (case-insensitive).
func parseInsiderCSV(r io.Reader) ([]domain.InsiderDay, error) {
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
	for _, required := range []string{"ticker", "date", "value", "volume", "remaining"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var days []domain.InsiderDay
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(record[idx["date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		value, err := strconv.ParseFloat(record[idx["value"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing value: %w", line, err)
		}
		volume, err := strconv.ParseFloat(record[idx["volume"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing volume: %w", line, err)
		}
		remaining, err := strconv.ParseFloat(record[idx["remaining"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing remaining: %w", line, err)
		}

		days = append(days, domain.InsiderDay{
			Ticker:    strings.ToUpper(strings.TrimSpace(record[idx["ticker"]])),
			Date:      date,
			Value:     value,
			Volume:    volume,
			Remaining: remaining,
		})
	}
	return days, nil
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return util.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
