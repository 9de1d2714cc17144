// Package httpapi serves the results HTTP API: the strategy roster, stored
// backtest results, and an endpoint that triggers a fresh comparison run.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"helios/internal/backtest"
	"helios/internal/dataset"
	"helios/internal/store"
)

// TableSource supplies the feature table a triggered run simulates over.
// Loading is deferred to run time so the server always sees the latest
// stored features.
type TableSource func() (*dataset.Table, error)

// Server serves the backtest results HTTP API.
type Server struct {
	roster  []backtest.Policy
	runCfg  backtest.Config
	source  TableSource
	results store.ResultStore
	log     *slog.Logger

	// Serializes triggered runs.
	runMu sync.Mutex
}

// NewServer creates a results API server over the given roster and stores.
func NewServer(roster []backtest.Policy, runCfg backtest.Config, source TableSource, results store.ResultStore, log *slog.Logger) *Server {
	return &Server{
		roster:  roster,
		runCfg:  runCfg,
		source:  source,
		results: results,
		log:     log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/strategies", s.handleStrategies)
	mux.HandleFunc("GET /api/results", s.handleResults)
	mux.HandleFunc("GET /api/results/{strategy}", s.handleStrategyResults)
	mux.HandleFunc("POST /api/backtest", s.handleRun)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parseLimit extracts the "limit" query param, defaulting to 50.
func parseLimit(r *http.Request) int {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 50
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 50
	}
	return n
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.roster))
	for _, p := range s.roster {
		names = append(names, p.Name())
	}
	writeJSON(w, StrategiesResponse{Strategies: names})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	rows, err := s.results.ListResults(r.Context(), parseLimit(r))
	if err != nil {
		s.log.Error("listing results", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	writeJSON(w, ResultsResponse{Results: convertRows(rows)})
}

func (s *Server) handleStrategyResults(w http.ResponseWriter, r *http.Request) {
	strategy := r.PathValue("strategy")
	if strategy == "" {
		writeError(w, http.StatusBadRequest, "strategy required")
		return
	}

	rows, err := s.results.ResultsForStrategy(r.Context(), strategy, parseLimit(r))
	if err != nil {
		s.log.Error("listing strategy results", "strategy", strategy, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no results for %s", strategy))
		return
	}
	writeJSON(w, ResultsResponse{Results: convertRows(rows)})
}

// handleRun executes the full roster against the current feature table,
// persists each result, and returns the comparison. Runs are serialized;
// concurrent triggers queue rather than race.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	table, err := s.source()
	if err != nil {
		s.log.Error("loading feature table", "error", err)
		writeError(w, http.StatusServiceUnavailable, "feature table unavailable")
		return
	}

	runAt := time.Now().UTC()
	results := make([]backtest.Result, 0, len(s.roster))
	for _, policy := range s.roster {
		result := backtest.NewRunner(s.runCfg, policy).Run(table)
		results = append(results, result)

		row := store.ResultRow{
			Strategy:       result.Strategy,
			FinalValue:     result.FinalValue,
			Profit:         result.Profit,
			TotalReturnPct: result.TotalReturnPct,
			RiskPct:        result.RiskPct,
			SharpeRatio:    result.SharpeRatio,
			RunAt:          runAt,
		}
		if err := s.results.SaveResult(r.Context(), row); err != nil {
			s.log.Error("saving result", "strategy", result.Strategy, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save results")
			return
		}
	}

	s.log.Info("backtest run complete", "strategies", len(results), "rows", table.Len())

	resp := RunResponse{Comparison: backtest.FormatComparison(results)}
	for _, res := range results {
		resp.Results = append(resp.Results, ResultJSON{
			Strategy:       res.Strategy,
			FinalValue:     res.FinalValue,
			Profit:         res.Profit,
			TotalReturnPct: res.TotalReturnPct,
			RiskPct:        res.RiskPct,
			SharpeRatio:    res.SharpeRatio,
			RunAt:          runAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, resp)
}

func convertRows(rows []store.ResultRow) []ResultJSON {
	out := make([]ResultJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, ResultJSON{
			Strategy:       row.Strategy,
			FinalValue:     row.FinalValue,
			Profit:         row.Profit,
			TotalReturnPct: row.TotalReturnPct,
			RiskPct:        row.RiskPct,
			SharpeRatio:    row.SharpeRatio,
			RunAt:          row.RunAt.Format(time.RFC3339),
		})
	}
	return out
}
