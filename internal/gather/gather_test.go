package gather

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"helios/internal/domain"
)

func TestParseInsiderCSV(t *testing.T) {
	csv := `Ticker,Date,Value,Volume,Remaining
gme,2024-01-05,-50000,120000,900000
AMC,2024-01-05 00:00:00,25000,25000,400000
`
	days, err := parseInsiderCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseInsiderCSV() returned error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("got %d rows, want 2", len(days))
	}

	d := days[0]
	if d.Ticker != "GME" {
		t.Errorf("Ticker = %q, want %q (upper-cased)", d.Ticker, "GME")
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !d.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", d.Date, want)
	}
	if d.Value != -50000 || d.Volume != 120000 || d.Remaining != 900000 {
		t.Errorf("row = %+v", d)
	}
	if !days[1].Date.Equal(want) {
		t.Errorf("datetime layout parsed to %v, want %v", days[1].Date, want)
	}
}

func TestParseInsiderCSVMissingColumn(t *testing.T) {
	csv := "ticker,date,value,volume\nGME,2024-01-05,1,1\n"
	if _, err := parseInsiderCSV(strings.NewReader(csv)); err == nil {
		t.Error("parseInsiderCSV accepted a header without remaining, want error")
	}
}

func TestParseInsiderCSVBadRow(t *testing.T) {
	csv := `ticker,date,value,volume,remaining
GME,2024-01-05,1,1,1
GME,not-a-date,1,1,1
`
	if _, err := parseInsiderCSV(strings.NewReader(csv)); err == nil {
		t.Error("parseInsiderCSV accepted an unparseable date, want error")
	}
}

func TestParseCommentsCSV(t *testing.T) {
	csv := `ticker,timestamp,score
gme,2024-01-05T14:30:00Z,0.75
GME,2024-01-05,-0.25
`
	comments, err := parseCommentsCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseCommentsCSV() returned error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].Ticker != "GME" || comments[0].Score != 0.75 {
		t.Errorf("comments[0] = %+v", comments[0])
	}
	if comments[1].Score != -0.25 {
		t.Errorf("comments[1].Score = %v, want -0.25", comments[1].Score)
	}
}

func TestParseCommentsCSVMissingColumn(t *testing.T) {
	csv := "ticker,date,score\nGME,2024-01-05,0.5\n"
	if _, err := parseCommentsCSV(strings.NewReader(csv)); err == nil {
		t.Error("parseCommentsCSV accepted a header without timestamp, want error")
	}
}

func TestParseCommentsCSVBadScore(t *testing.T) {
	csv := "ticker,timestamp,score\nGME,2024-01-05,great\n"
	if _, err := parseCommentsCSV(strings.NewReader(csv)); err == nil {
		t.Error("parseCommentsCSV accepted an unparseable score, want error")
	}
}

// memInsiderStore records saved rows for asserting all-or-nothing ingest.
type memInsiderStore struct {
	saved []domain.InsiderDay
}

func (s *memInsiderStore) SaveInsiderDays(ctx context.Context, days []domain.InsiderDay) error {
	s.saved = append(s.saved, days...)
	return nil
}
func (s *memInsiderStore) ReadInsiderDays(ctx context.Context, ticker string, start, end time.Time) ([]domain.InsiderDay, error) {
	return nil, nil
}
func (s *memInsiderStore) ListInsiderTickers(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestInsiderGathererRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insider.csv")
	content := `ticker,date,value,volume,remaining
GME,2024-01-05,100,200,300
GME,2024-01-06,-100,100,200
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mem := &memInsiderStore{}
	g := NewInsiderGatherer(path, mem)
	if g.Name() != "insider" {
		t.Errorf("Name() = %q, want %q", g.Name(), "insider")
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(mem.saved) != 2 {
		t.Errorf("saved %d rows, want 2", len(mem.saved))
	}
}

func TestInsiderGathererAbortsOnBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insider.csv")
	content := `ticker,date,value,volume,remaining
GME,2024-01-05,100,200,300
GME,2024-01-06,not-a-number,100,200
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mem := &memInsiderStore{}
	if err := NewInsiderGatherer(path, mem).Run(context.Background()); err == nil {
		t.Fatal("Run() succeeded on malformed csv, want error")
	}
	if len(mem.saved) != 0 {
		t.Errorf("saved %d rows from an aborted run, want 0", len(mem.saved))
	}
}

// memSentimentStore records saved sentiment days.
type memSentimentStore struct {
	saved []domain.SentimentDay
}

func (s *memSentimentStore) SaveSentiment(ctx context.Context, days []domain.SentimentDay) error {
	s.saved = append(s.saved, days...)
	return nil
}
func (s *memSentimentStore) ReadSentiment(ctx context.Context, ticker string, start, end time.Time) ([]domain.SentimentDay, error) {
	return nil, nil
}

func TestSentimentGathererRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.csv")
	content := `ticker,timestamp,score
GME,2024-01-05T09:00:00Z,0.8
GME,2024-01-05T15:00:00Z,0.2
GME,2024-01-06T09:00:00Z,0.6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mem := &memSentimentStore{}
	if err := NewSentimentGatherer(path, mem).Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(mem.saved) != 2 {
		t.Fatalf("saved %d aggregate days, want 2", len(mem.saved))
	}
	if mem.saved[0].CommentCount != 2 || mem.saved[0].MeanSentiment != 0.5 {
		t.Errorf("first day = %+v, want 2 comments mean 0.5", mem.saved[0])
	}
}
