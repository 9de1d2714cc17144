package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"helios/internal/backtest"
	"helios/internal/config"
	"helios/internal/dataset"
	"helios/internal/httpapi"
	"helios/internal/model"
	"helios/internal/store"
	"helios/internal/util"
)

func main() {
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

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	defer db.Close()

	tiers := cfg.Backtest.TierLadder()
	tableName := cfg.Backtest.FeatureTable

	source := func() (*dataset.Table, error) {
		rows, err := pstore.ReadFeatures(context.Background(), tableName)
		if err != nil {
			return nil, err
		}
		return dataset.FromRows(rows), nil
	}

	// The roster's classifier reads probabilities stored alongside each
	// row, so it is rebuilt per run from the same table source.
	roster := backtest.BuildRoster(backtest.RosterConfig{
		SignalBids:         cfg.Backtest.SignalBids,
		ScoreBuyThreshold:  cfg.Backtest.ScoreBuyThreshold,
		ScoreSellThreshold: cfg.Backtest.ScoreSellThreshold,
		ScoreTradeFraction: cfg.Backtest.ScoreTradeFraction,
		SoftmaxBetas:       cfg.Backtest.SoftmaxBetas,
		Tiers:              tiers,
		OuterBound:         cfg.Backtest.OuterBoundFactor,
	}, model.InlineRowClassifier{NumTiers: len(tiers)})

	runCfg := backtest.Config{
		InitialNotional:   cfg.Backtest.InitialNotional,
		AnnualTradingDays: cfg.Backtest.AnnualTradingDays,
	}

	api := httpapi.NewServer(roster, runCfg, source, db, slog.Default())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // triggered runs can take a while
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("helios-server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
