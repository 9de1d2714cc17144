package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"helios/internal/domain"
)

// Compile-time interface checks.
var _ BarStore = (*ParquetStore)(nil)
var _ FeatureStore = (*ParquetStore)(nil)

// ParquetStore implements BarStore and FeatureStore using Parquet files on
// disk.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data
// directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// BarRecord is the Parquet schema for daily bar data.
type BarRecord struct {
	Symbol   string  `parquet:"symbol"`
	Date     int64   `parquet:"date,timestamp(millisecond)"` // Unix ms, midnight UTC
	Open     float64 `parquet:"open"`
	High     float64 `parquet:"high"`
	Low      float64 `parquet:"low"`
	Close    float64 `parquet:"close"`
	AdjClose float64 `parquet:"adj_close"`
	Volume   int64   `parquet:"volume"`
}

// FeatureRecord is the Parquet schema for merged feature rows.
type FeatureRecord struct {
	Ticker   string  `parquet:"ticker"`
	Date     int64   `parquet:"date,timestamp(millisecond)"`
	AdjClose float64 `parquet:"adj_close"`

	ChangeDay   float64 `parquet:"change_day"`
	ChangeWeek  float64 `parquet:"change_week"`
	ChangeMonth float64 `parquet:"change_month"`
	Change3Mo   float64 `parquet:"change_3mo"`
	Change6Mo   float64 `parquet:"change_6mo"`
	Change9Mo   float64 `parquet:"change_9mo"`
	Change1Yr   float64 `parquet:"change_1yr"`

	MeanSentiment   float64 `parquet:"mean_sentiment"`
	CommentCount    float64 `parquet:"comment_count"`
	SentimentChange float64 `parquet:"sentiment_change"`
	VolumeChange    float64 `parquet:"volume_change"`
	SVC             float64 `parquet:"svc"`

	BuyerChangeDay         float64 `parquet:"buyer_change_day"`
	BuyerChangeWeek        float64 `parquet:"buyer_change_week"`
	BuyerChangeMonth       float64 `parquet:"buyer_change_month"`
	BuyerChangeTriMonth    float64 `parquet:"buyer_change_trimonth"`
	TradeDirectionDay      float64 `parquet:"trade_direction_day"`
	TradeDirectionWeek     float64 `parquet:"trade_direction_week"`
	TradeDirectionMonth    float64 `parquet:"trade_direction_month"`
	TradeDirectionTriMonth float64 `parquet:"trade_direction_trimonth"`

	Target int       `parquet:"target"`
	Signal int       `parquet:"signal"`
	Probs  []float64 `parquet:"probs,list"`
}

// ---------------------------------------------------------------------------
// BarStore implementation
// ---------------------------------------------------------------------------

// WriteBars writes bar data to Parquet files organized by symbol and year.
// Each symbol+year combination produces a separate file at:
//
//	<DataDir>/bars/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) WriteBars(_ context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]BarRecord)
	for _, b := range bars {
		k := key{symbol: b.Symbol, year: b.Date.Year()}
		groups[k] = append(groups[k], BarRecord{
			Symbol:   b.Symbol,
			Date:     b.Date.UnixMilli(),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.AdjClose,
			Volume:   b.Volume,
		})
	}

	for k, records := range groups {
		path := s.barPath(k.symbol, k.year)

		// Read existing records to merge.
		existing, _ := readParquetFile[BarRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", k.symbol, k.year, err)
		}
	}
	return nil
}

// ReadBars reads bar data from Parquet files for the given symbol and time
// range.
func (s *ParquetStore) ReadBars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	for year := start.Year(); year <= end.Year(); year++ {
		path := s.barPath(symbol, year)

		records, err := readParquetFile[BarRecord](path)
		if err != nil {
			// File doesn't exist for this year — skip.
			continue
		}

		for _, r := range records {
			d := time.UnixMilli(r.Date).UTC()
			if (d.Equal(start) || d.After(start)) && (d.Equal(end) || d.Before(end)) {
				bars = append(bars, domain.Bar{
					Symbol:   r.Symbol,
					Date:     d,
					Open:     r.Open,
					High:     r.High,
					Low:      r.Low,
					Close:    r.Close,
					AdjClose: r.AdjClose,
					Volume:   r.Volume,
				})
			}
		}
	}
	return bars, nil
}

// ListSymbols lists all symbols that have bar data.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "bars")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// FeatureStore implementation
// ---------------------------------------------------------------------------

// WriteFeatures writes a complete feature table snapshot to
// <DataDir>/features/<name>.parquet, replacing any previous snapshot of the
// same name.
func (s *ParquetStore) WriteFeatures(_ context.Context, name string, rows []domain.FeatureRow) error {
	records := make([]FeatureRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, featureRecordFromRow(r))
	}
	if err := writeParquetFile(s.featurePath(name), records); err != nil {
		return fmt.Errorf("writing feature table %q: %w", name, err)
	}
	return nil
}

// ReadFeatures reads the feature table stored under the given name.
func (s *ParquetStore) ReadFeatures(_ context.Context, name string) ([]domain.FeatureRow, error) {
	records, err := readParquetFile[FeatureRecord](s.featurePath(name))
	if err != nil {
		return nil, fmt.Errorf("reading feature table %q: %w", name, err)
	}
	rows := make([]domain.FeatureRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.toRow())
	}
	return rows, nil
}

func featureRecordFromRow(r domain.FeatureRow) FeatureRecord {
	return FeatureRecord{
		Ticker:   r.Ticker,
		Date:     r.Date.UnixMilli(),
		AdjClose: r.AdjClose,

		ChangeDay:   r.ChangeDay,
		ChangeWeek:  r.ChangeWeek,
		ChangeMonth: r.ChangeMonth,
		Change3Mo:   r.Change3Mo,
		Change6Mo:   r.Change6Mo,
		Change9Mo:   r.Change9Mo,
		Change1Yr:   r.Change1Yr,

		MeanSentiment:   r.MeanSentiment,
		CommentCount:    r.CommentCount,
		SentimentChange: r.SentimentChange,
		VolumeChange:    r.VolumeChange,
		SVC:             r.SVC,

		BuyerChangeDay:         r.Insider.BuyerChangeDay,
		BuyerChangeWeek:        r.Insider.BuyerChangeWeek,
		BuyerChangeMonth:       r.Insider.BuyerChangeMonth,
		BuyerChangeTriMonth:    r.Insider.BuyerChangeTriMonth,
		TradeDirectionDay:      r.Insider.TradeDirectionDay,
		TradeDirectionWeek:     r.Insider.TradeDirectionWeek,
		TradeDirectionMonth:    r.Insider.TradeDirectionMonth,
		TradeDirectionTriMonth: r.Insider.TradeDirectionTriMonth,

		Target: r.Target,
		Signal: r.Signal,
		Probs:  r.Probs,
	}
}

func (rec FeatureRecord) toRow() domain.FeatureRow {
	return domain.FeatureRow{
		Ticker:   rec.Ticker,
		Date:     time.UnixMilli(rec.Date).UTC(),
		AdjClose: rec.AdjClose,

		ChangeDay:   rec.ChangeDay,
		ChangeWeek:  rec.ChangeWeek,
		ChangeMonth: rec.ChangeMonth,
		Change3Mo:   rec.Change3Mo,
		Change6Mo:   rec.Change6Mo,
		Change9Mo:   rec.Change9Mo,
		Change1Yr:   rec.Change1Yr,

		MeanSentiment:   rec.MeanSentiment,
		CommentCount:    rec.CommentCount,
		SentimentChange: rec.SentimentChange,
		VolumeChange:    rec.VolumeChange,
		SVC:             rec.SVC,

		Insider: domain.InsiderFeatures{
			BuyerChangeDay:         rec.BuyerChangeDay,
			BuyerChangeWeek:        rec.BuyerChangeWeek,
			BuyerChangeMonth:       rec.BuyerChangeMonth,
			BuyerChangeTriMonth:    rec.BuyerChangeTriMonth,
			TradeDirectionDay:      rec.TradeDirectionDay,
			TradeDirectionWeek:     rec.TradeDirectionWeek,
			TradeDirectionMonth:    rec.TradeDirectionMonth,
			TradeDirectionTriMonth: rec.TradeDirectionTriMonth,
		},

		Target: rec.Target,
		Signal: rec.Signal,
		Probs:  rec.Probs,
	}
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// barPath returns the filesystem path for a bar Parquet file.
// Layout: <dataDir>/bars/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) barPath(symbol string, year int) string {
	return filepath.Join(s.DataDir, "bars", strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

// featurePath returns the filesystem path for a feature table snapshot.
// Layout: <dataDir>/features/<name>.parquet
func (s *ParquetStore) featurePath(name string) string {
	return filepath.Join(s.DataDir, "features", name+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates bar records by (symbol, date), preferring new
// records over existing ones. Results are sorted by date.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	type key struct {
		symbol string
		date   int64
	}
	seen := make(map[key]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Date}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Date}] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})
	return merged
}
