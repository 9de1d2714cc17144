package model

import (
	"errors"
	"testing"
	"time"

	"helios/internal/domain"
)

func modelDay(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func TestClassesForTiers(t *testing.T) {
	classes := ClassesForTiers(2)
	want := []int{-2, -1, 0, 1, 2}
	if len(classes) != len(want) {
		t.Fatalf("ClassesForTiers(2) has %d entries, want %d", len(classes), len(want))
	}
	for i := range want {
		if classes[i] != want[i] {
			t.Errorf("classes[%d] = %d, want %d", i, classes[i], want[i])
		}
	}
}

func TestTableClassifierLookup(t *testing.T) {
	rows := []domain.FeatureRow{
		{Ticker: "GME", Date: modelDay(2), Probs: []float64{0.1, 0.2, 0.4, 0.2, 0.1}},
		{Ticker: "AMC", Date: modelDay(2)}, // no probabilities
	}
	tc, err := NewTableClassifier(rows, 2)
	if err != nil {
		t.Fatalf("NewTableClassifier() returned error: %v", err)
	}
	if tc.Empty() {
		t.Error("Empty() = true, want false")
	}

	probs, ok := tc.ProbaFor("GME", modelDay(2))
	if !ok {
		t.Fatal("ProbaFor(GME) ok = false")
	}
	if probs[2] != 0.4 {
		t.Errorf("probs[2] = %v, want 0.4", probs[2])
	}

	if _, ok := tc.ProbaFor("AMC", modelDay(2)); ok {
		t.Error("ProbaFor(row without probs) ok = true, want false")
	}
	if _, ok := tc.ProbaFor("GME", modelDay(3)); ok {
		t.Error("ProbaFor(unknown date) ok = true, want false")
	}
}

func TestTableClassifierWrongVectorLength(t *testing.T) {
	rows := []domain.FeatureRow{
		{Ticker: "GME", Date: modelDay(2), Probs: []float64{0.5, 0.5}},
	}
	if _, err := NewTableClassifier(rows, 2); err == nil {
		t.Error("NewTableClassifier accepted a 2-entry vector for 2 tiers, want error")
	}
}

func TestTableClassifierEmpty(t *testing.T) {
	tc, err := NewTableClassifier([]domain.FeatureRow{{Ticker: "GME", Date: modelDay(2)}}, 2)
	if err != nil {
		t.Fatalf("NewTableClassifier() returned error: %v", err)
	}
	if !tc.Empty() {
		t.Error("Empty() = false for a table with no probability rows")
	}
	if _, err := tc.Proba(nil); err == nil {
		t.Error("Proba() succeeded on table classifier, want error")
	}
}

func TestTableRowClassifier(t *testing.T) {
	rows := []domain.FeatureRow{
		{Ticker: "GME", Date: modelDay(2), Probs: []float64{0.3, 0.4, 0.3}},
	}
	tc, err := NewTableClassifier(rows, 1)
	if err != nil {
		t.Fatalf("NewTableClassifier() returned error: %v", err)
	}
	rc := TableRowClassifier{tc}

	probs, ok := rc.RowProba(&rows[0])
	if !ok || probs[1] != 0.4 {
		t.Errorf("RowProba = %v, %v; want mid prob 0.4, true", probs, ok)
	}
}

func TestInlineRowClassifier(t *testing.T) {
	rc := InlineRowClassifier{NumTiers: 1}

	classes := rc.Classes()
	if len(classes) != 3 || classes[0] != -1 {
		t.Errorf("Classes() = %v, want [-1 0 1]", classes)
	}

	row := &domain.FeatureRow{Probs: []float64{0.2, 0.5, 0.3}}
	probs, ok := rc.RowProba(row)
	if !ok || probs[1] != 0.5 {
		t.Errorf("RowProba = %v, %v; want inline vector, true", probs, ok)
	}

	if _, ok := rc.RowProba(&domain.FeatureRow{}); ok {
		t.Error("RowProba(no probs) ok = true, want false")
	}
	if _, ok := rc.RowProba(&domain.FeatureRow{Probs: []float64{1.0}}); ok {
		t.Error("RowProba(mis-sized vector) ok = true, want false")
	}
}

// fixedModel returns the same probabilities for every query, or an error.
type fixedModel struct {
	probs []float64
	err   error
}

func (m fixedModel) Classes() []int { return ClassesForTiers(1) }
func (m fixedModel) Proba(features []float64) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.probs, nil
}

func TestLiveRowClassifier(t *testing.T) {
	rc := LiveRowClassifier{Model: fixedModel{probs: []float64{0.1, 0.8, 0.1}}}
	probs, ok := rc.RowProba(&domain.FeatureRow{})
	if !ok || probs[1] != 0.8 {
		t.Errorf("RowProba = %v, %v; want model output, true", probs, ok)
	}
}

func TestLiveRowClassifierInferenceError(t *testing.T) {
	rc := LiveRowClassifier{Model: fixedModel{err: errors.New("model offline")}}
	if _, ok := rc.RowProba(&domain.FeatureRow{}); ok {
		t.Error("RowProba ok = true on inference error, want false")
	}
}
