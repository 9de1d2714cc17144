// Package model defines the opaque classifier surface the backtester
// consumes. Training happens elsewhere (the research pipeline); helios only
// replays a trained model's class probabilities.
package model

import (
	"fmt"
	"time"

	"helios/internal/domain"
)

// Compile-time interface checks.
var _ Classifier = (*TableClassifier)(nil)
var _ RowClassifier = TableRowClassifier{}
var _ RowClassifier = InlineRowClassifier{}
var _ RowClassifier = LiveRowClassifier{}

// Classifier produces per-class probabilities for a feature vector. Classes
// are the signed move-size buckets [-K..K]; Proba results align to Classes
// by index.
type Classifier interface {
	// Classes returns the ordered class labels this classifier predicts.
	Classes() []int

	// Proba returns the probability of each class for the given scaled
	// feature vector, aligned to Classes.
	Proba(features []float64) ([]float64, error)
}

// ClassesForTiers returns the ordered class labels [-K..K] for a ladder of
// K tiers.
func ClassesForTiers(numTiers int) []int {
	classes := make([]int, 0, 2*numTiers+1)
	for c := -numTiers; c <= numTiers; c++ {
		classes = append(classes, c)
	}
	return classes
}

// ---------------------------------------------------------------------------
// TableClassifier — replays probabilities stored in the feature table
// ---------------------------------------------------------------------------

// TableClassifier is a Classifier backed by probabilities already present
// in the feature table, keyed by (ticker, date). It is the offline path:
// the research pipeline exports predict_proba output next to each row, and
// the backtester replays it without a live model.
type TableClassifier struct {
	classes []int
	probs   map[tableKey][]float64
}

type tableKey struct {
	ticker string
	date   time.Time
}

// NewTableClassifier indexes per-row probabilities from the given rows.
// Rows without probabilities are skipped. numTiers fixes the class
// ordering; every row's probability vector must have 2*numTiers+1 entries.
func NewTableClassifier(rows []domain.FeatureRow, numTiers int) (*TableClassifier, error) {
	want := 2*numTiers + 1
	tc := &TableClassifier{
		classes: ClassesForTiers(numTiers),
		probs:   make(map[tableKey][]float64),
	}
	for i := range rows {
		r := &rows[i]
		if r.Probs == nil {
			continue
		}
		if len(r.Probs) != want {
			return nil, fmt.Errorf("row %s/%s has %d probabilities, want %d",
				r.Ticker, r.Date.Format("2006-01-02"), len(r.Probs), want)
		}
		tc.probs[tableKey{r.Ticker, r.Date}] = r.Probs
	}
	return tc, nil
}

// Classes returns the ordered class labels.
func (tc *TableClassifier) Classes() []int { return tc.classes }

// Empty reports whether no row carried probabilities.
func (tc *TableClassifier) Empty() bool { return len(tc.probs) == 0 }

// Proba is unsupported on the table-backed classifier; use ProbaFor with
// the row identity instead.
func (tc *TableClassifier) Proba(_ []float64) ([]float64, error) {
	return nil, fmt.Errorf("table classifier requires row identity; use ProbaFor")
}

// ProbaFor returns the stored probabilities for a (ticker, date) row, or
// ok=false when the table carries none for it.
func (tc *TableClassifier) ProbaFor(ticker string, date time.Time) ([]float64, bool) {
	p, ok := tc.probs[tableKey{ticker, date}]
	return p, ok
}

// RowClassifier adapts any source of per-row probabilities for the
// probability-weighted policy. The backtester resolves probabilities through
// this interface so that both stored-table replay and live re-inference fit.
type RowClassifier interface {
	Classes() []int

	// RowProba returns the per-class probabilities for one feature row, or
	// ok=false when no probabilities are available for it.
	RowProba(row *domain.FeatureRow) (probs []float64, ok bool)
}

// TableRowClassifier wraps a TableClassifier as a RowClassifier.
type TableRowClassifier struct {
	*TableClassifier
}

// RowProba looks up the stored probabilities for the row.
func (t TableRowClassifier) RowProba(row *domain.FeatureRow) ([]float64, bool) {
	return t.ProbaFor(row.Ticker, row.Date)
}

// InlineRowClassifier reads the probabilities carried on the row itself,
// with no external index. NumTiers fixes the expected vector length; rows
// whose vector is missing or mis-sized report ok=false.
type InlineRowClassifier struct {
	NumTiers int
}

// Classes returns the ordered class labels.
func (c InlineRowClassifier) Classes() []int { return ClassesForTiers(c.NumTiers) }

// RowProba returns the row's own probability vector.
func (c InlineRowClassifier) RowProba(row *domain.FeatureRow) ([]float64, bool) {
	if len(row.Probs) != 2*c.NumTiers+1 {
		return nil, false
	}
	return row.Probs, true
}

// LiveRowClassifier scales a row's feature vector and queries a live
// Classifier, the online path for models served in-process.
type LiveRowClassifier struct {
	Model  Classifier
	Scaler *StandardScaler
}

// RowProba scales the row's features and asks the model for probabilities.
// Inference errors are treated as "no probabilities for this row".
func (l LiveRowClassifier) RowProba(row *domain.FeatureRow) ([]float64, bool) {
	features := row.FeatureVector()
	if l.Scaler != nil {
		features = l.Scaler.Transform(features)
	}
	probs, err := l.Model.Proba(features)
	if err != nil {
		return nil, false
	}
	return probs, true
}

// Classes returns the model's ordered class labels.
func (l LiveRowClassifier) Classes() []int { return l.Model.Classes() }
