package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"helios/internal/backtest"
	"helios/internal/config"
	"helios/internal/dataset"
	"helios/internal/model"
	"helios/internal/store"
	"helios/internal/util"
)

func main() {
	csvPath := flag.String("csv", "", "load the feature table from a CSV file instead of the store")
	tableName := flag.String("table", "", "feature table name in the store, defaults to config")
	noSave := flag.Bool("no-save", false, "skip persisting results to the store")
	only := flag.String("only", "", "run a single strategy by name instead of the full roster")
	trace := flag.Bool("trace", false, "log every trade at debug level")
	flag.Parse()

	_ = godotenv.Load()

	cfgPath := "config/helios.yaml"
	if p := os.Getenv("HELIOS_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logLevel := cfg.Logging.Level
	if *trace {
		logLevel = "debug"
	}
	util.SetDefault(util.NewLogger(logLevel, cfg.Logging.Format))

	ctx := context.Background()

	table, err := loadTable(ctx, cfg, *csvPath, *tableName)
	if err != nil {
		log.Fatalf("loading feature table: %v", err)
	}
	if table.Len() == 0 {
		log.Fatal("feature table is empty")
	}

	tiers := cfg.Backtest.TierLadder()
	classifier := tableClassifier(table, len(tiers))

	roster := backtest.BuildRoster(backtest.RosterConfig{
		SignalBids:         cfg.Backtest.SignalBids,
		ScoreBuyThreshold:  cfg.Backtest.ScoreBuyThreshold,
		ScoreSellThreshold: cfg.Backtest.ScoreSellThreshold,
		ScoreTradeFraction: cfg.Backtest.ScoreTradeFraction,
		SoftmaxBetas:       cfg.Backtest.SoftmaxBetas,
		Tiers:              tiers,
		OuterBound:         cfg.Backtest.OuterBoundFactor,
	}, classifier)

	if *only != "" {
		registry := backtest.NewRegistry()
		for _, p := range roster {
			registry.Register(p)
		}
		policy, ok := registry.Get(*only)
		if !ok {
			log.Fatalf("unknown strategy %q; available: %v", *only, registry.List())
		}
		roster = []backtest.Policy{policy}
	}

	runCfg := backtest.Config{
		InitialNotional:   cfg.Backtest.InitialNotional,
		AnnualTradingDays: cfg.Backtest.AnnualTradingDays,
	}

	runAt := time.Now().UTC()
	results := make([]backtest.Result, 0, len(roster))
	for _, policy := range roster {
		runner := backtest.NewRunner(runCfg, policy)
		if *trace {
			runner.SetTracer(backtest.LogTracer{Log: slog.Default()})
		}
		results = append(results, runner.Run(table))
	}

	fmt.Print(backtest.FormatComparison(results))

	if *noSave {
		return
	}
	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	defer db.Close()

	for _, res := range results {
		row := store.ResultRow{
			Strategy:       res.Strategy,
			FinalValue:     res.FinalValue,
			Profit:         res.Profit,
			TotalReturnPct: res.TotalReturnPct,
			RiskPct:        res.RiskPct,
			SharpeRatio:    res.SharpeRatio,
			RunAt:          runAt,
		}
		if err := db.SaveResult(ctx, row); err != nil {
			log.Fatalf("saving result for %s: %v", res.Strategy, err)
		}
	}
	slog.Info("results saved", "strategies", len(results))
}

// loadTable reads the feature table from a CSV file when -csv is given, or
// from the parquet feature store otherwise.
func loadTable(ctx context.Context, cfg *config.Config, csvPath, tableName string) (*dataset.Table, error) {
	if csvPath != "" {
		return dataset.Load(csvPath)
	}

	name := tableName
	if name == "" {
		name = cfg.Backtest.FeatureTable
	}
	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	rows, err := pstore.ReadFeatures(ctx, name)
	if err != nil {
		return nil, err
	}
	return dataset.FromRows(rows), nil
}

// tableClassifier indexes stored per-row probabilities, or returns nil when
// the table carries none so the roster omits the probability-weighted
// strategies.
func tableClassifier(table *dataset.Table, numTiers int) model.RowClassifier {
	tc, err := model.NewTableClassifier(table.Rows(), numTiers)
	if err != nil {
		log.Fatalf("indexing probabilities: %v", err)
	}
	if tc.Empty() {
		slog.Info("no stored probabilities; skipping probability-weighted strategies")
		return nil
	}
	return model.TableRowClassifier{TableClassifier: tc}
}
