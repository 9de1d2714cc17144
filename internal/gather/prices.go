package gather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"helios/internal/domain"
	"helios/internal/store"
	"helios/internal/util"
)

var _ Gatherer = (*PriceGatherer)(nil)

// PriceGatherer fetches daily OHLCV bars for a fixed ticker universe via
// the Alpaca market-data API and writes them to the bar store. Tickers are
// fetched in batches across a worker pool, with a shared rate limiter
// keeping the pool inside the API quota.
type PriceGatherer struct {
	client     *marketdata.Client
	store      store.BarStore
	tickers    []string
	rng        DateRange
	batchSize  int
	maxWorkers int
	limiter    *util.RateLimiter
	log        *slog.Logger
}

// PriceGathererOpts configures a PriceGatherer.
type PriceGathererOpts struct {
	APIKey    string
	APISecret string
	DataURL   string

	Tickers []string
	Range   DateRange

	BatchSize       int // tickers per API call, default 200
	MaxWorkers      int // concurrent fetchers, default 4
	RateLimitPerMin int // default 200
}

// NewPriceGatherer creates a PriceGatherer writing to the given bar store.
func NewPriceGatherer(opts PriceGathererOpts, s store.BarStore) *PriceGatherer {
	clientOpts := marketdata.ClientOpts{
		APIKey:    opts.APIKey,
		APISecret: opts.APISecret,
	}
	if opts.DataURL != "" {
		clientOpts.BaseURL = opts.DataURL
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	perMin := opts.RateLimitPerMin
	if perMin <= 0 {
		perMin = 200
	}

	return &PriceGatherer{
		client:     marketdata.NewClient(clientOpts),
		store:      s,
		tickers:    opts.Tickers,
		rng:        opts.Range,
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
		limiter:    util.NewRateLimiter(perMin),
		log:        slog.Default().With("gatherer", "prices"),
	}
}

// Name returns the gatherer identifier.
func (g *PriceGatherer) Name() string { return "prices" }

// Run fetches bars for every configured ticker and writes them to the
// store. Batches that fail after retries are logged and skipped; Run
// returns an error only when every batch failed or ctx was cancelled.
func (g *PriceGatherer) Run(ctx context.Context) error {
	if len(g.tickers) == 0 {
		return fmt.Errorf("no tickers configured")
	}

	var batches [][]string
	for i := 0; i < len(g.tickers); i += g.batchSize {
		end := min(i+g.batchSize, len(g.tickers))
		batches = append(batches, g.tickers[i:end])
	}

	g.log.Info("starting price gather",
		"tickers", len(g.tickers),
		"batches", len(batches),
		"start", g.rng.Start.Format("2006-01-02"),
		"end", g.rng.End.Format("2006-01-02"),
	)

	batchCh := make(chan []string, len(batches))
	for _, b := range batches {
		batchCh <- b
	}
	close(batchCh)

	var (
		wg       sync.WaitGroup
		okCount  atomic.Int64
		barCount atomic.Int64
		runStart = time.Now()
	)

	workers := min(g.maxWorkers, len(batches))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batchCh {
				if ctx.Err() != nil {
					return
				}

				var bars []domain.Bar
				err := util.Retry(ctx, 3, time.Second, func() error {
					if err := g.limiter.Wait(ctx); err != nil {
						return err
					}
					var fetchErr error
					bars, fetchErr = g.fetchMultiBars(batch)
					return fetchErr
				})
				if err != nil {
					g.log.Error("batch fetch failed", "tickers", len(batch), "err", err)
					continue
				}

				if len(bars) > 0 {
					if err := g.store.WriteBars(ctx, bars); err != nil {
						g.log.Error("writing bars failed", "err", err)
						continue
					}
				}

				okCount.Add(1)
				barCount.Add(int64(len(bars)))
				g.log.Info("batch done", "tickers", len(batch), "bars", len(bars))
			}
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if okCount.Load() == 0 {
		return fmt.Errorf("all %d batches failed", len(batches))
	}

	g.log.Info("complete",
		"batchesOK", okCount.Load(),
		"bars", barCount.Load(),
		"elapsed", time.Since(runStart).Round(time.Second),
	)
	return nil
}

// fetchMultiBars fetches split-adjusted daily bars for a batch of tickers
// in a single API call.
func (g *PriceGatherer) fetchMultiBars(tickers []string) ([]domain.Bar, error) {
	multiBars, err := g.client.GetMultiBars(tickers, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      g.rng.Start,
		End:        g.rng.End,
		Adjustment: marketdata.Split,
		Feed:       "sip",
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:   strings.ToUpper(symbol),
				Date:     util.Day(ab.Timestamp),
				Open:     ab.Open,
				High:     ab.High,
				Low:      ab.Low,
				Close:    ab.Close,
				AdjClose: ab.Close,
				Volume:   int64(ab.Volume),
			})
		}
	}
	return bars, nil
}
