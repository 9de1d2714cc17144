// Package helios provides a Go SDK for the helios-server results API.
package helios

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Result is one backtest result row as served by the API.
type Result struct {
	Strategy       string  `json:"strategy"`
	FinalValue     float64 `json:"finalValue"`
	Profit         float64 `json:"profit"`
	TotalReturnPct float64 `json:"totalReturnPct"`
	RiskPct        float64 `json:"riskPct"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	RunAt          string  `json:"runAt,omitempty"`
}

// RunOutcome is the response to a triggered backtest run.
type RunOutcome struct {
	Results    []Result `json:"results"`
	Comparison string   `json:"comparison"`
}

// Client talks to a helios-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL. Triggered runs can
// take minutes over large tables, so the default timeout is generous.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/api/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("server unhealthy: %q", resp.Status)
	}
	return nil
}

// Strategies returns the strategy roster names.
func (c *Client) Strategies(ctx context.Context) ([]string, error) {
	var resp struct {
		Strategies []string `json:"strategies"`
	}
	if err := c.getJSON(ctx, "/api/strategies", &resp); err != nil {
		return nil, err
	}
	return resp.Strategies, nil
}

// Results returns stored results, newest first, up to limit. A limit of 0
// uses the server default.
func (c *Client) Results(ctx context.Context, limit int) ([]Result, error) {
	return c.results(ctx, "/api/results", limit)
}

// ResultsForStrategy returns stored results for one strategy, newest first.
func (c *Client) ResultsForStrategy(ctx context.Context, strategy string, limit int) ([]Result, error) {
	return c.results(ctx, "/api/results/"+url.PathEscape(strategy), limit)
}

func (c *Client) results(ctx context.Context, path string, limit int) ([]Result, error) {
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Results []Result `json:"results"`
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Run triggers a backtest run over the current feature table and returns
// the fresh results with a formatted comparison table.
func (c *Client) Run(ctx context.Context) (*RunOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/backtest", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var out RunOutcome
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding run response: %w", err)
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, body.Error)
	}
	return fmt.Errorf("unexpected status %s", resp.Status)
}
