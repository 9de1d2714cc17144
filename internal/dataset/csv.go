package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"helios/internal/domain"
)

// Required columns. The price column accepts either the snake_case name or
// the legacy header produced by the research pipeline's CSV exports.
const (
	colTicker = "ticker"
	colDate   = "date"
)

var priceHeaders = []string{"adjusted_close", "adj_close", "Adj Close"}

// probPrefix marks per-class probability columns: prob_-2, prob_-1, prob_0...
const probPrefix = "prob_"

// Load reads a feature table from a CSV file. The header is validated once,
// up front: a missing required column fails immediately, before any row is
// parsed. Optional columns (signal, svc, target, momentum, sentiment,
// insider, probability columns) populate the corresponding fields when
// present and are zero otherwise.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// Read parses CSV feature rows from r. See Load.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	// Validate the schema before touching any row.
	for _, required := range []string{colTicker, colDate} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("required column %q missing", required)
		}
	}
	priceIdx := -1
	for _, h := range priceHeaders {
		if i, ok := cols[h]; ok {
			priceIdx = i
			break
		}
	}
	if priceIdx < 0 {
		return nil, fmt.Errorf("required price column missing (want one of %v)", priceHeaders)
	}

	// Probability columns, ordered by class.
	type probCol struct {
		class int
		idx   int
	}
	var probCols []probCol
	for name, i := range cols {
		if !strings.HasPrefix(name, probPrefix) {
			continue
		}
		class, err := strconv.Atoi(strings.TrimPrefix(name, probPrefix))
		if err != nil {
			return nil, fmt.Errorf("malformed probability column %q", name)
		}
		probCols = append(probCols, probCol{class: class, idx: i})
	}
	sort.Slice(probCols, func(i, j int) bool { return probCols[i].class < probCols[j].class })

	var rows []domain.FeatureRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}
		line++

		row := domain.FeatureRow{Ticker: strings.TrimSpace(record[cols[colTicker]])}

		row.Date, err = parseDate(record[cols[colDate]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		row.AdjClose, err = parseFloat(record[priceIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: adjusted close: %w", line, err)
		}

		if err := parseOptional(record, cols, &row); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		if len(probCols) > 0 {
			row.Probs = make([]float64, len(probCols))
			for i, pc := range probCols {
				row.Probs[i], err = parseFloat(record[pc.idx])
				if err != nil {
					return nil, fmt.Errorf("row %d: prob_%d: %w", line, pc.class, err)
				}
			}
		}

		rows = append(rows, row)
	}

	return FromRows(rows), nil
}

// parseOptional fills the optional numeric columns that happen to be
// present in the file.
func parseOptional(record []string, cols map[string]int, row *domain.FeatureRow) error {
	floats := map[string]*float64{
		"change_day":   &row.ChangeDay,
		"change_week":  &row.ChangeWeek,
		"change_month": &row.ChangeMonth,
		"change_3mo":   &row.Change3Mo,
		"change_6mo":   &row.Change6Mo,
		"change_9mo":   &row.Change9Mo,
		"change_1yr":   &row.Change1Yr,

		"mean_sentiment":   &row.MeanSentiment,
		"comment_count":    &row.CommentCount,
		"sentiment_change": &row.SentimentChange,
		"volume_change":    &row.VolumeChange,
		"svc":              &row.SVC,

		"Buyer Change Day":         &row.Insider.BuyerChangeDay,
		"Buyer Change Week":        &row.Insider.BuyerChangeWeek,
		"Buyer Change Month":       &row.Insider.BuyerChangeMonth,
		"Buyer Change TriMonth":    &row.Insider.BuyerChangeTriMonth,
		"Trade Direction Day":      &row.Insider.TradeDirectionDay,
		"Trade Direction Week":     &row.Insider.TradeDirectionWeek,
		"Trade Direction Month":    &row.Insider.TradeDirectionMonth,
		"Trade Direction TriMonth": &row.Insider.TradeDirectionTriMonth,
	}
	for name, dst := range floats {
		i, ok := cols[name]
		if !ok || record[i] == "" {
			continue
		}
		v, err := parseFloat(record[i])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = v
	}

	ints := map[string]*int{
		"signal": &row.Signal,
		"target": &row.Target,
	}
	for name, dst := range ints {
		i, ok := cols[name]
		if !ok || record[i] == "" {
			continue
		}
		v, err := parseFloat(record[i]) // classifiers export "1.0" style ints
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = int(v)
	}
	return nil
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
