package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"helios/internal/domain"
)

// Compile-time interface checks.
var _ SentimentStore = (*SQLiteStore)(nil)
var _ InsiderStore = (*SQLiteStore)(nil)
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements SentimentStore, InsiderStore, and ResultStore
// backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs
// migrations, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sentiment_days (
			ticker           TEXT NOT NULL,
			date             INTEGER NOT NULL, -- unix ms, midnight UTC
			mean_sentiment   REAL NOT NULL,
			comment_count    INTEGER NOT NULL,
			sentiment_change REAL NOT NULL,
			volume_change    REAL NOT NULL,
			svc              REAL NOT NULL,
			PRIMARY KEY (ticker, date)
		)`,
		`CREATE TABLE IF NOT EXISTS insider_days (
			ticker    TEXT NOT NULL,
			date      INTEGER NOT NULL, -- unix ms, midnight UTC
			value     REAL NOT NULL,
			volume    REAL NOT NULL,
			remaining REAL NOT NULL,
			PRIMARY KEY (ticker, date)
		)`,
		`CREATE TABLE IF NOT EXISTS backtest_results (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			strategy         TEXT NOT NULL,
			final_value      REAL NOT NULL,
			profit           REAL NOT NULL,
			total_return_pct REAL NOT NULL,
			risk_pct         REAL NOT NULL,
			sharpe_ratio     REAL NOT NULL,
			run_at           INTEGER NOT NULL -- unix ms
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_strategy
			ON backtest_results (strategy, run_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// SentimentStore implementation
// ---------------------------------------------------------------------------

// SaveSentiment inserts or replaces daily sentiment rows in one transaction.
func (s *SQLiteStore) SaveSentiment(ctx context.Context, days []domain.SentimentDay) error {
	if len(days) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO sentiment_days
		(ticker, date, mean_sentiment, comment_count, sentiment_change, volume_change, svc)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range days {
		_, err := stmt.ExecContext(ctx, d.Ticker, d.Date.UnixMilli(),
			d.MeanSentiment, d.CommentCount, d.SentimentChange, d.VolumeChange, d.SVC)
		if err != nil {
			return fmt.Errorf("saving sentiment for %s/%s: %w", d.Ticker, d.Date.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// ReadSentiment returns sentiment rows for a ticker within [start, end].
func (s *SQLiteStore) ReadSentiment(ctx context.Context, ticker string, start, end time.Time) ([]domain.SentimentDay, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, date, mean_sentiment,
		comment_count, sentiment_change, volume_change, svc
		FROM sentiment_days
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date`, ticker, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SentimentDay
	for rows.Next() {
		var d domain.SentimentDay
		var ms int64
		if err := rows.Scan(&d.Ticker, &ms, &d.MeanSentiment, &d.CommentCount,
			&d.SentimentChange, &d.VolumeChange, &d.SVC); err != nil {
			return nil, err
		}
		d.Date = time.UnixMilli(ms).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// InsiderStore implementation
// ---------------------------------------------------------------------------

// SaveInsiderDays inserts or replaces insider aggregate rows in one
// transaction.
func (s *SQLiteStore) SaveInsiderDays(ctx context.Context, days []domain.InsiderDay) error {
	if len(days) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO insider_days
		(ticker, date, value, volume, remaining) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range days {
		_, err := stmt.ExecContext(ctx, d.Ticker, d.Date.UnixMilli(), d.Value, d.Volume, d.Remaining)
		if err != nil {
			return fmt.Errorf("saving insider day for %s/%s: %w", d.Ticker, d.Date.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// ReadInsiderDays returns insider rows for a ticker within [start, end].
func (s *SQLiteStore) ReadInsiderDays(ctx context.Context, ticker string, start, end time.Time) ([]domain.InsiderDay, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, date, value, volume, remaining
		FROM insider_days
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date`, ticker, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InsiderDay
	for rows.Next() {
		var d domain.InsiderDay
		var ms int64
		if err := rows.Scan(&d.Ticker, &ms, &d.Value, &d.Volume, &d.Remaining); err != nil {
			return nil, err
		}
		d.Date = time.UnixMilli(ms).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListInsiderTickers returns all tickers with stored insider rows.
func (s *SQLiteStore) ListInsiderTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM insider_days ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// ---------------------------------------------------------------------------
// ResultStore implementation
// ---------------------------------------------------------------------------

// SaveResult appends a backtest result row.
func (s *SQLiteStore) SaveResult(ctx context.Context, row ResultRow) error {
	runAt := row.RunAt
	if runAt.IsZero() {
		runAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO backtest_results
		(strategy, final_value, profit, total_return_pct, risk_pct, sharpe_ratio, run_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.Strategy, row.FinalValue, row.Profit, row.TotalReturnPct,
		row.RiskPct, row.SharpeRatio, runAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving result for %q: %w", row.Strategy, err)
	}
	return nil
}

// ListResults returns the most recent results, newest first.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]ResultRow, error) {
	return s.queryResults(ctx, `SELECT strategy, final_value, profit,
		total_return_pct, risk_pct, sharpe_ratio, run_at
		FROM backtest_results ORDER BY run_at DESC, id DESC LIMIT ?`, limit)
}

// ResultsForStrategy returns results for one strategy, newest first.
func (s *SQLiteStore) ResultsForStrategy(ctx context.Context, strategy string, limit int) ([]ResultRow, error) {
	return s.queryResults(ctx, `SELECT strategy, final_value, profit,
		total_return_pct, risk_pct, sharpe_ratio, run_at
		FROM backtest_results WHERE strategy = ?
		ORDER BY run_at DESC, id DESC LIMIT ?`, strategy, limit)
}

func (s *SQLiteStore) queryResults(ctx context.Context, query string, args ...any) ([]ResultRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var r ResultRow
		var ms int64
		if err := rows.Scan(&r.Strategy, &r.FinalValue, &r.Profit,
			&r.TotalReturnPct, &r.RiskPct, &r.SharpeRatio, &ms); err != nil {
			return nil, err
		}
		r.RunAt = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
