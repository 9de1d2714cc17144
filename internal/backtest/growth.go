package backtest

import (
	"math"
	"sort"

	"helios/internal/domain"
)

// GrowthTable maps each signal class to its assumed representative next-day
// return. Class 0 is always 0; class +i (and its mirror -i) gets the
// geometric mean of the tier's lower and upper move-size bounds.
type GrowthTable struct {
	rates map[int]float64
}

// DeriveGrowth builds the expected-growth table from a tier ladder. The
// outermost tier has no upper bound; a synthetic one of threshold *
// outerFactor stands in for the geometric-mean calculation (the factor is a
// tunable approximation, not a derived constant).
func DeriveGrowth(tiers []domain.Tier, outerFactor float64) GrowthTable {
	rates := map[int]float64{0: 0}
	for i, tier := range tiers {
		upper := tier.Threshold * outerFactor
		if i+1 < len(tiers) {
			upper = tiers[i+1].Threshold
		}
		rate := math.Sqrt(tier.Threshold * upper)
		rates[i+1] = rate
		rates[-i-1] = -rate
	}
	return GrowthTable{rates: rates}
}

// Rate returns the representative return for a class; unknown classes are 0.
func (g GrowthTable) Rate(class int) float64 {
	return g.rates[class]
}

// Classes returns the table's class labels in ascending order.
func (g GrowthTable) Classes() []int {
	classes := make([]int, 0, len(g.rates))
	for c := range g.rates {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes
}

// ExpectedReturnFactor folds per-class probabilities into a single expected
// growth factor: sum over classes of probability * (1 + rate). probs aligns
// to Classes() by index.
func (g GrowthTable) ExpectedReturnFactor(probs []float64) float64 {
	classes := g.Classes()
	expected := 0.0
	for i, class := range classes {
		if i >= len(probs) {
			break
		}
		expected += probs[i] * (1.0 + g.rates[class])
	}
	return expected
}
