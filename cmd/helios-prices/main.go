package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"helios/internal/config"
	"helios/internal/gather"
	"helios/internal/store"
	"helios/internal/util"
)

func main() {
	startFlag := flag.String("start", "", "override start date (YYYY-MM-DD)")
	endFlag := flag.String("end", "", "override end date (YYYY-MM-DD)")
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

	startStr := cfg.Gather.Prices.StartDate
	if *startFlag != "" {
		startStr = *startFlag
	}
	endStr := cfg.Gather.Prices.EndDate
	if *endFlag != "" {
		endStr = *endFlag
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		log.Fatalf("invalid start date %q: %v", startStr, err)
	}
	end := time.Now().UTC()
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			log.Fatalf("invalid end date %q: %v", endStr, err)
		}
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)

	gatherer := gather.NewPriceGatherer(gather.PriceGathererOpts{
		APIKey:          cfg.Alpaca.APIKey,
		APISecret:       cfg.Alpaca.APISecret,
		DataURL:         cfg.Alpaca.DataURL,
		Tickers:         cfg.Gather.Tickers,
		Range:           gather.DateRange{Start: start, End: end},
		BatchSize:       cfg.Gather.Prices.BatchSize,
		MaxWorkers:      cfg.Gather.Prices.MaxWorkers,
		RateLimitPerMin: cfg.Gather.Prices.RateLimitPerMin,
	}, pstore)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := gatherer.Run(ctx); err != nil {
		log.Fatalf("gather error: %v", err)
	}
}
