package httpapi

// JSON response types for the results API.

// StrategiesResponse lists the strategies in the comparison roster.
type StrategiesResponse struct {
	Strategies []string `json:"strategies"`
}

// ResultJSON is one backtest result row.
type ResultJSON struct {
	Strategy       string  `json:"strategy"`
	FinalValue     float64 `json:"finalValue"`
	Profit         float64 `json:"profit"`
	TotalReturnPct float64 `json:"totalReturnPct"`
	RiskPct        float64 `json:"riskPct"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	RunAt          string  `json:"runAt,omitempty"`
}

// ResultsResponse lists stored backtest results, newest first.
type ResultsResponse struct {
	Results []ResultJSON `json:"results"`
}

// RunResponse carries the outcome of a freshly triggered backtest run.
type RunResponse struct {
	Results    []ResultJSON `json:"results"`
	Comparison string       `json:"comparison"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
}
