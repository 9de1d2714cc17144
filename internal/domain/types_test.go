package domain

import "testing"

func TestFeatureVectorAlignment(t *testing.T) {
	row := &FeatureRow{
		ChangeDay: 1, ChangeWeek: 2, ChangeMonth: 3, Change3Mo: 4,
		Change6Mo: 5, Change9Mo: 6, Change1Yr: 7,
		MeanSentiment: 8, CommentCount: 9, SentimentChange: 10, VolumeChange: 11, SVC: 12,
		Insider: InsiderFeatures{
			BuyerChangeDay: 13, BuyerChangeWeek: 14, BuyerChangeMonth: 15, BuyerChangeTriMonth: 16,
			TradeDirectionDay: 17, TradeDirectionWeek: 18, TradeDirectionMonth: 19, TradeDirectionTriMonth: 20,
		},
	}

	vec := row.FeatureVector()
	if len(vec) != len(FeatureColumns) {
		t.Fatalf("FeatureVector has %d entries, FeatureColumns has %d", len(vec), len(FeatureColumns))
	}
	for i, v := range vec {
		if v != float64(i+1) {
			t.Errorf("FeatureVector[%d] (%s) = %v, want %v", i, FeatureColumns[i], v, float64(i+1))
		}
	}
}

func TestClassifyReturn(t *testing.T) {
	tests := []struct {
		name   string
		change float64
		want   int
	}{
		{"zero", 0, 0},
		{"tiny up", 0.01, 0},
		{"at first threshold holds", 0.025, 0},
		{"just past first tier", 0.03, 1},
		{"past two tiers", 0.07, 2},
		{"past three tiers", 0.15, 3},
		{"past all tiers", 1.0, 6},
		{"tiny down", -0.01, 0},
		{"down past two tiers", -0.07, -2},
		{"down past all tiers", -1.0, -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyReturn(tt.change, DefaultTiers)
			if got != tt.want {
				t.Errorf("ClassifyReturn(%v) = %d, want %d", tt.change, got, tt.want)
			}
		})
	}
}

func TestClassifyReturnCustomLadder(t *testing.T) {
	tiers := []Tier{{"Only", 0.5}}
	if got := ClassifyReturn(0.6, tiers); got != 1 {
		t.Errorf("ClassifyReturn(0.6, single tier) = %d, want 1", got)
	}
	if got := ClassifyReturn(-0.6, tiers); got != -1 {
		t.Errorf("ClassifyReturn(-0.6, single tier) = %d, want -1", got)
	}
	if got := ClassifyReturn(0.4, tiers); got != 0 {
		t.Errorf("ClassifyReturn(0.4, single tier) = %d, want 0", got)
	}
}

func TestDefaultTiersLadder(t *testing.T) {
	if len(DefaultTiers) != 6 {
		t.Fatalf("DefaultTiers has %d entries, want 6", len(DefaultTiers))
	}
	// Each threshold doubles the previous.
	for i := 1; i < len(DefaultTiers); i++ {
		prev, cur := DefaultTiers[i-1].Threshold, DefaultTiers[i].Threshold
		if cur != prev*2 {
			t.Errorf("tier %q threshold = %v, want %v (double of %q)",
				DefaultTiers[i].Name, cur, prev*2, DefaultTiers[i-1].Name)
		}
	}
}
