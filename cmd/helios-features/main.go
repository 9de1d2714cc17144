package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"helios/internal/config"
	"helios/internal/features"
	"helios/internal/store"
	"helios/internal/util"
)

func main() {
	startFlag := flag.String("start", "", "feature window start (YYYY-MM-DD)")
	endFlag := flag.String("end", "", "feature window end (YYYY-MM-DD), defaults to today")
	nameFlag := flag.String("name", "", "feature table name, defaults to config")
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
	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	if *startFlag == "" {
		log.Fatal("-start is required")
	}
	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		log.Fatalf("invalid start date %q: %v", *startFlag, err)
	}
	end := time.Now().UTC()
	if *endFlag != "" {
		end, err = time.Parse("2006-01-02", *endFlag)
		if err != nil {
			log.Fatalf("invalid end date %q: %v", *endFlag, err)
		}
	}

	name := *nameFlag
	if name == "" {
		name = cfg.Backtest.FeatureTable
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tickers := cfg.Gather.Tickers
	if len(tickers) == 0 {
		// Fall back to every ticker with insider data.
		tickers, err = db.ListInsiderTickers(ctx)
		if err != nil {
			log.Fatalf("listing tickers: %v", err)
		}
	}
	if len(tickers) == 0 {
		log.Fatal("no tickers configured and none found in store")
	}

	builder := features.Builder{
		Bars:      pstore,
		Sentiment: db,
		Insider:   db,
		Tiers:     cfg.Backtest.TierLadder(),
		Log:       slog.Default(),
	}

	rows, err := builder.Build(ctx, tickers, start, end)
	if err != nil {
		log.Fatalf("building features: %v", err)
	}
	if len(rows) == 0 {
		log.Fatal("feature build produced no rows")
	}

	if err := pstore.WriteFeatures(ctx, name, rows); err != nil {
		log.Fatalf("writing feature table: %v", err)
	}
	slog.Info("feature table written", "name", name, "rows", len(rows))
}
