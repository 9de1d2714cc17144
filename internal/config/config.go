// Package config loads the helios YAML configuration and applies
// environment-variable overrides.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"helios/internal/domain"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the helios platform.
type Config struct {
	Storage  Storage        `yaml:"storage"`
	Server   Server         `yaml:"server"`
	Alpaca   Alpaca         `yaml:"alpaca"`
	Logging  Logging        `yaml:"logging"`
	Gather   GatherConfig   `yaml:"gather"`
	Backtest BacktestConfig `yaml:"backtest"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration for the results API.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GatherConfig controls data gathering behaviour.
type GatherConfig struct {
	// Tickers is the equity universe gathered and simulated.
	Tickers []string        `yaml:"tickers"`
	Prices  GatherJobConfig `yaml:"prices"`
}

// GatherJobConfig holds parameters for a single data gathering job.
type GatherJobConfig struct {
	StartDate       string `yaml:"start_date"`
	EndDate         string `yaml:"end_date"`
	BatchSize       int    `yaml:"batch_size"`
	MaxWorkers      int    `yaml:"max_workers"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// TierConfig is one named move-size cutoff in the class ladder.
type TierConfig struct {
	Name      string  `yaml:"name"`
	Threshold float64 `yaml:"threshold"`
}

// BacktestConfig holds every tunable of the backtesting engine. Nothing in
// the engine is read from package-level state; a run sees exactly what is
// passed here.
type BacktestConfig struct {
	// FeatureTable names the stored feature table runs simulate over.
	FeatureTable string `yaml:"feature_table"`

	// InitialNotional is the starting cash allotted to each ticker.
	InitialNotional float64 `yaml:"initial_notional"`

	// AnnualTradingDays is the annualization constant for the Sharpe ratio.
	AnnualTradingDays float64 `yaml:"annual_trading_days"`

	// SignalBids are the cash/stock fractions traded per signal severity
	// tier: index 0 applies to |signal| == 1, index 1 to |signal| == 2, and
	// so on; signals beyond the table use the last entry.
	SignalBids []float64 `yaml:"signal_bids"`

	// Raw-score policy thresholds and trade fraction.
	ScoreBuyThreshold  float64 `yaml:"score_buy_threshold"`
	ScoreSellThreshold float64 `yaml:"score_sell_threshold"`
	ScoreTradeFraction float64 `yaml:"score_trade_fraction"`

	// SoftmaxBetas lists the inverse temperatures to run the
	// probability-weighted policy with, one strategy instance per value.
	SoftmaxBetas []float64 `yaml:"softmax_betas"`

	// OuterBoundFactor synthesizes the missing upper bound of the outermost
	// class as threshold * factor when deriving expected growth.
	OuterBoundFactor float64 `yaml:"outer_bound_factor"`

	// Tiers is the move-size ladder. Empty means the default ladder.
	Tiers []TierConfig `yaml:"tiers"`
}

// TierLadder returns the configured move-size ladder as domain tiers, or
// the default ladder when none is configured.
func (bc *BacktestConfig) TierLadder() []domain.Tier {
	if len(bc.Tiers) == 0 {
		return domain.DefaultTiers
	}
	tiers := make([]domain.Tier, len(bc.Tiers))
	for i, t := range bc.Tiers {
		tiers[i] = domain.Tier{Name: t.Name, Threshold: t.Threshold}
	}
	return tiers
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, and fills in
// backtest defaults for any field left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyBacktestDefaults(&cfg.Backtest)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// applyBacktestDefaults fills zero-valued backtest fields with the defaults
// carried over from the research pipeline.
func applyBacktestDefaults(bc *BacktestConfig) {
	if bc.FeatureTable == "" {
		bc.FeatureTable = "features"
	}
	if bc.InitialNotional == 0 {
		bc.InitialNotional = 100.0
	}
	if bc.AnnualTradingDays == 0 {
		bc.AnnualTradingDays = 252
	}
	if len(bc.SignalBids) == 0 {
		bc.SignalBids = []float64{0.10, 0.20}
	}
	if bc.ScoreBuyThreshold == 0 {
		bc.ScoreBuyThreshold = 0.5
	}
	if bc.ScoreSellThreshold == 0 {
		bc.ScoreSellThreshold = -0.5
	}
	if bc.ScoreTradeFraction == 0 {
		bc.ScoreTradeFraction = 0.10
	}
	if len(bc.SoftmaxBetas) == 0 {
		bc.SoftmaxBetas = []float64{0.5, 1.0, 2.0}
	}
	if bc.OuterBoundFactor == 0 {
		bc.OuterBoundFactor = 2.0
	}
}
