package backtest

import (
	"strings"
	"testing"
	"time"

	"helios/internal/dataset"
	"helios/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func TestRunnerEndToEnd(t *testing.T) {
	// Ticker A trades on signals over three days; B has one signal-0 row
	// and stays frozen at its notional.
	rows := []domain.FeatureRow{
		featureRow("A", day(1), 10.0, 1),
		featureRow("A", day(2), 9.5, 0),
		featureRow("A", day(3), 9.69, -1),
		featureRow("B", day(1), 5.0, 0),
	}
	table := dataset.FromRows(rows)

	runner := NewRunner(DefaultConfig(), NewSignalPolicy([]float64{0.10, 0.20}))
	result := runner.Run(table)

	if result.Strategy != "signal-tier" {
		t.Errorf("Strategy = %q, want signal-tier", result.Strategy)
	}

	// Day 1: stock starts at 0, mark-to-market is a no-op; the buy moves
	// 10% of 100 cash into stock (cash 90, stock 10 at price 10).
	// Day 2: price 10 -> 9.5 rescales stock to 9.5; signal 0 holds.
	// Day 3: price 9.5 -> 9.69 rescales stock to 9.69, recorded before the
	// closing sell. B contributes a frozen 100 throughout, so the value
	// series runs [200, 200, 199.5, 199.69] with the seed first.
	if !almostEqual(result.FinalValue, 199.69) {
		t.Errorf("FinalValue = %v, want 199.69", result.FinalValue)
	}
	if !almostEqual(result.Profit, -0.31) {
		t.Errorf("Profit = %v, want -0.31 (original 200)", result.Profit)
	}
	if !almostEqual(result.TotalReturnPct, -0.31/200) {
		t.Errorf("TotalReturnPct = %v, want %v", result.TotalReturnPct, -0.31/200)
	}

	// Pin the whole recorded series: risk and Sharpe are functions of it,
	// so the metrics of the expected series must match the run's.
	want := ComputeMetrics([]float64{200, 200, 199.5, 199.69}, 2, 100.0, 252)
	if !almostEqual(result.RiskPct, want.RiskPct) {
		t.Errorf("RiskPct = %v, want %v", result.RiskPct, want.RiskPct)
	}
	if !almostEqual(result.SharpeRatio, want.SharpeRatio) {
		t.Errorf("SharpeRatio = %v, want %v", result.SharpeRatio, want.SharpeRatio)
	}
}

func TestRunnerDenseCalendarIteration(t *testing.T) {
	// Rows only on days 1 and 5; days 2-4 are iterated anyway and simply
	// carry the prior value forward.
	rows := []domain.FeatureRow{
		featureRow("A", day(1), 10, 0),
		featureRow("A", day(5), 11, 0),
	}
	table := dataset.FromRows(rows)

	runner := NewRunner(DefaultConfig(), &BuyAndHoldPolicy{})
	result := runner.Run(table)

	// All-in at 10 on day 1, remarked at 11 on day 5.
	if !almostEqual(result.FinalValue, 110) {
		t.Errorf("FinalValue = %v, want 110", result.FinalValue)
	}
}

func TestRunnerGapTolerance(t *testing.T) {
	// A has rows only on the first day of a long window; the run must
	// complete with A's value frozen after that day.
	rows := []domain.FeatureRow{
		featureRow("A", day(1), 10, 1),
		featureRow("B", day(1), 20, 0),
		featureRow("B", day(10), 30, 0),
	}
	table := dataset.FromRows(rows)

	runner := NewRunner(DefaultConfig(), NewSignalPolicy([]float64{0.10, 0.20}))
	result := runner.Run(table)

	// A: buys 10 on day 1, price never moves again -> 100 total.
	// B: holds 100 cash while its price moves -> 100 total.
	if !almostEqual(result.FinalValue, 200) {
		t.Errorf("FinalValue = %v, want 200", result.FinalValue)
	}
}

func TestRunnerEmptyTable(t *testing.T) {
	table := dataset.FromRows(nil)
	runner := NewRunner(DefaultConfig(), &BuyAndHoldPolicy{})
	result := runner.Run(table)

	if result.FinalValue != 0 || result.Profit != 0 || result.SharpeRatio != 0 {
		t.Errorf("empty table should zero the result: %+v", result)
	}
}

func TestRunnerBuyAndHoldTracksPrice(t *testing.T) {
	rows := []domain.FeatureRow{
		featureRow("A", day(1), 10, 0),
		featureRow("A", day(2), 12, 0),
		featureRow("A", day(3), 9, 0),
	}
	table := dataset.FromRows(rows)

	runner := NewRunner(DefaultConfig(), &BuyAndHoldPolicy{})
	result := runner.Run(table)

	// All-in at price 10 on day 1; final mark at 9 -> 90.
	if !almostEqual(result.FinalValue, 90) {
		t.Errorf("FinalValue = %v, want 90", result.FinalValue)
	}
}

// recordingTracer captures trade actions per day.
type recordingTracer struct {
	actions []string
}

func (rt *recordingTracer) TradeDay(_ time.Time, trades []TradeTrace) {
	for _, tr := range trades {
		rt.actions = append(rt.actions, tr.Ticker+":"+tr.Action())
	}
}

func TestRunnerTracerObservesWithoutAltering(t *testing.T) {
	rows := []domain.FeatureRow{
		featureRow("A", day(1), 10, 1),
		featureRow("A", day(2), 11, -1),
	}
	table := dataset.FromRows(rows)
	cfg := DefaultConfig()

	plain := NewRunner(cfg, NewSignalPolicy([]float64{0.10, 0.20})).Run(table)

	traced := NewRunner(cfg, NewSignalPolicy([]float64{0.10, 0.20}))
	tracer := &recordingTracer{}
	traced.SetTracer(tracer)
	tracedResult := traced.Run(table)

	if plain != tracedResult {
		t.Errorf("tracing changed the outcome: %+v vs %+v", plain, tracedResult)
	}
	if len(tracer.actions) != 2 {
		t.Fatalf("tracer saw %d actions, want 2", len(tracer.actions))
	}
	if tracer.actions[0] != "A:buy" || tracer.actions[1] != "A:sell" {
		t.Errorf("actions = %v, want [A:buy A:sell]", tracer.actions)
	}
}

func TestBuildRoster(t *testing.T) {
	cfg := RosterConfig{
		SignalBids:         []float64{0.10, 0.20},
		ScoreBuyThreshold:  0.5,
		ScoreSellThreshold: -0.5,
		ScoreTradeFraction: 0.10,
		SoftmaxBetas:       []float64{0.5, 1.0, 2.0},
		Tiers:              domain.DefaultTiers,
		OuterBound:         2.0,
	}

	classifier := stubClassifier{classes: []int{-1, 0, 1}}
	roster := BuildRoster(cfg, classifier)
	if len(roster) != 6 {
		t.Fatalf("roster size = %d, want 6 (3 fixed + 3 softmax)", len(roster))
	}
	if roster[3].Name() != "softmax-beta0.5" {
		t.Errorf("softmax name = %q, want softmax-beta0.5", roster[3].Name())
	}

	// Without a classifier the softmax strategies are omitted.
	roster = BuildRoster(cfg, nil)
	if len(roster) != 3 {
		t.Fatalf("roster without classifier = %d policies, want 3", len(roster))
	}
}

func TestFormatComparison(t *testing.T) {
	results := []Result{
		{Strategy: "buy-and-hold", Metrics: Metrics{FinalValue: 210, Profit: 10, TotalReturnPct: 0.05, RiskPct: 0.012, SharpeRatio: 0.8}},
		{Strategy: "signal-tier", Metrics: Metrics{FinalValue: 230, Profit: 30, TotalReturnPct: 0.15, RiskPct: 0.021, SharpeRatio: 1.1}},
	}
	out := FormatComparison(results)

	if !strings.Contains(out, "buy-and-hold") || !strings.Contains(out, "signal-tier") {
		t.Errorf("comparison missing strategies:\n%s", out)
	}
	if !strings.Contains(out, "STRATEGY") {
		t.Errorf("comparison missing header:\n%s", out)
	}
	if !strings.Contains(out, "5.00%") {
		t.Errorf("return should render as percent:\n%s", out)
	}
}
