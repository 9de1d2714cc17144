package backtest

import (
	"helios/internal/domain"
	"helios/internal/model"
)

// RosterConfig collects the knobs for the standard comparison roster: the
// tiered signal policy, the passive benchmark, the raw-score policy, and one
// softmax policy per inverse temperature.
type RosterConfig struct {
	SignalBids []float64

	ScoreBuyThreshold  float64
	ScoreSellThreshold float64
	ScoreTradeFraction float64

	SoftmaxBetas []float64
	Tiers        []domain.Tier
	OuterBound   float64
}

// BuildRoster returns the standard roster of policies under comparison. The
// softmax entries share one growth table derived from the tier ladder and
// draw probabilities from the given classifier; they are omitted when the
// classifier is nil.
func BuildRoster(cfg RosterConfig, classifier model.RowClassifier) []Policy {
	policies := []Policy{
		NewSignalPolicy(cfg.SignalBids),
		&BuyAndHoldPolicy{},
		NewScorePolicy(cfg.ScoreBuyThreshold, cfg.ScoreSellThreshold, cfg.ScoreTradeFraction),
	}
	if classifier != nil {
		growth := DeriveGrowth(cfg.Tiers, cfg.OuterBound)
		for _, beta := range cfg.SoftmaxBetas {
			policies = append(policies, NewSoftmaxPolicy(beta, growth, classifier))
		}
	}
	return policies
}
