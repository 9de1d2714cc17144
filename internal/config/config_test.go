package config

import (
	"os"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "helios-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func clearEnvOverrides() {
	os.Unsetenv("ALPACA_API_KEY")
	os.Unsetenv("ALPACA_API_SECRET")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("LOG_LEVEL")
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
storage:
  data_dir: "/tmp/helios/data"
  sqlite_path: "/tmp/helios/helios.db"
server:
  host: "0.0.0.0"
  port: 8090
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  base_url: "https://paper-api.alpaca.markets"
  data_url: "https://data.alpaca.markets"
logging:
  level: "info"
  format: "json"
gather:
  tickers: ["GME", "AMC", "TSLA"]
  prices:
    start_date: "2020-01-01"
    batch_size: 200
    max_workers: 4
    rate_limit_per_min: 200
backtest:
  initial_notional: 50.0
  signal_bids: [0.05, 0.15]
  softmax_betas: [1.0]
`)

	clearEnvOverrides()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/helios/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/helios/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/helios/helios.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/helios/helios.db")
	}

	// -- Server --
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8090 {
		t.Errorf("Server = %q:%d, want 0.0.0.0:8090", cfg.Server.Host, cfg.Server.Port)
	}

	// -- Alpaca --
	if cfg.Alpaca.APIKey != "test-key" || cfg.Alpaca.APISecret != "test-secret" {
		t.Errorf("Alpaca credentials not loaded: %q/%q", cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	}

	// -- Gather --
	if len(cfg.Gather.Tickers) != 3 || cfg.Gather.Tickers[0] != "GME" {
		t.Errorf("Gather.Tickers = %v, want [GME AMC TSLA]", cfg.Gather.Tickers)
	}
	if cfg.Gather.Prices.BatchSize != 200 {
		t.Errorf("Gather.Prices.BatchSize = %d, want 200", cfg.Gather.Prices.BatchSize)
	}

	// -- Backtest: explicit values kept, gaps defaulted --
	if cfg.Backtest.InitialNotional != 50.0 {
		t.Errorf("Backtest.InitialNotional = %v, want 50.0", cfg.Backtest.InitialNotional)
	}
	if len(cfg.Backtest.SignalBids) != 2 || cfg.Backtest.SignalBids[0] != 0.05 {
		t.Errorf("Backtest.SignalBids = %v, want [0.05 0.15]", cfg.Backtest.SignalBids)
	}
	if cfg.Backtest.AnnualTradingDays != 252 {
		t.Errorf("Backtest.AnnualTradingDays = %v, want default 252", cfg.Backtest.AnnualTradingDays)
	}
	if cfg.Backtest.ScoreBuyThreshold != 0.5 || cfg.Backtest.ScoreSellThreshold != -0.5 {
		t.Errorf("score thresholds = %v/%v, want defaults 0.5/-0.5",
			cfg.Backtest.ScoreBuyThreshold, cfg.Backtest.ScoreSellThreshold)
	}
	if cfg.Backtest.OuterBoundFactor != 2.0 {
		t.Errorf("Backtest.OuterBoundFactor = %v, want default 2.0", cfg.Backtest.OuterBoundFactor)
	}
	if cfg.Backtest.FeatureTable != "features" {
		t.Errorf("Backtest.FeatureTable = %q, want default %q", cfg.Backtest.FeatureTable, "features")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, `
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
storage:
  data_dir: "/original/data"
`)

	clearEnvOverrides()
	os.Setenv("ALPACA_API_KEY", "env-key")
	os.Setenv("DATA_DIR", "/env/data")
	defer os.Unsetenv("ALPACA_API_KEY")
	defer os.Unsetenv("DATA_DIR")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
}

func TestTierLadder(t *testing.T) {
	bc := &BacktestConfig{}
	tiers := bc.TierLadder()
	if len(tiers) != 6 {
		t.Fatalf("default ladder has %d tiers, want 6", len(tiers))
	}
	if tiers[0].Name != "Small" || tiers[0].Threshold != 0.025 {
		t.Errorf("first default tier = %+v", tiers[0])
	}

	bc.Tiers = []TierConfig{{Name: "Only", Threshold: 0.5}}
	tiers = bc.TierLadder()
	if len(tiers) != 1 || tiers[0].Threshold != 0.5 {
		t.Errorf("configured ladder = %+v, want single 0.5 tier", tiers)
	}
}
