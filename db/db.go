// Package db db/db.go provides SQLite-backed storage for check results
// and the historical sample series the prediction module scans.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	// Register the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/prediction"
)

var (
	ErrNoSeries = errors.New("no such series")

	errFailedToClean     = errors.New("failed to clean")
	errFailedToBeginTx   = errors.New("failed to begin transaction")
	errFailedToScan      = errors.New("failed to scan")
	errFailedToQuery     = errors.New("failed to query")
	errFailedToInsert    = errors.New("failed to insert")
	errFailedToUpsert    = errors.New("failed to upsert")
	errFailedToInit      = errors.New("failed to initialize schema")
	errFailedToEnableWAL = errors.New("failed to enable WAL mode")
	errFailedOpenDB      = errors.New("failed to open database")
	errInvalidWindow     = errors.New("invalid window")
)

const (
	// SQL statements for database initialization.
	createTablesSQL = `
		CREATE TABLE IF NOT EXISTS series (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			host TEXT NOT NULL,
			category TEXT NOT NULL,
			metric TEXT NOT NULL,
			step_seconds INTEGER NOT NULL,
			UNIQUE(host, category, metric)
		);

		CREATE TABLE IF NOT EXISTS samples (
			series_id INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (series_id, timestamp),
			FOREIGN KEY (series_id) REFERENCES series(id)
		);

		CREATE TABLE IF NOT EXISTS check_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			host TEXT NOT NULL,
			check_type TEXT NOT NULL,
			item TEXT NOT NULL,
			state INTEGER NOT NULL,
			summary TEXT,
			timestamp TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_samples_series_time
			ON samples(series_id, timestamp);
		CREATE INDEX IF NOT EXISTS idx_results_host_item_time
			ON check_results(host, item, timestamp);
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// ResultRecord is one persisted check result row.
type ResultRecord struct {
	Host      string      `json:"host"`
	CheckType string      `json:"check_type"`
	Item      string      `json:"item"`
	State     check.State `json:"state"`
	Summary   string      `json:"summary"`
	Timestamp time.Time   `json:"timestamp"`
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToEnableWAL, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// EnsureSeries registers a series and its native step, returning its id.
func (db *DB) EnsureSeries(host, category, metric string, step time.Duration) (int64, error) {
	const upsertSQL = `
		INSERT INTO series (host, category, metric, step_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(host, category, metric) DO UPDATE SET
			step_seconds = excluded.step_seconds
	`

	if _, err := db.Exec(upsertSQL, host, category, metric, int64(step.Seconds())); err != nil {
		return 0, fmt.Errorf("%w series: %w", errFailedToUpsert, err)
	}

	var id int64
	if err := db.QueryRow(
		"SELECT id FROM series WHERE host = ? AND category = ? AND metric = ?",
		host, category, metric,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w series id: %w", errFailedToScan, err)
	}

	return id, nil
}

// RecordSample stores one sample for an already registered series. A
// sample at an existing timestamp replaces the old value.
func (db *DB) RecordSample(host, category, metric string, ts time.Time, value float64) error {
	id, err := db.seriesID(host, category, metric)
	if err != nil {
		return err
	}

	const insertSQL = `
		INSERT INTO samples (series_id, timestamp, value)
		VALUES (?, ?, ?)
		ON CONFLICT(series_id, timestamp) DO UPDATE SET value = excluded.value
	`

	if _, err := db.Exec(insertSQL, id, ts.Unix(), value); err != nil {
		return fmt.Errorf("%w sample: %w", errFailedToInsert, err)
	}

	return nil
}

func (db *DB) seriesID(host, category, metric string) (int64, error) {
	var id int64

	err := db.QueryRow(
		"SELECT id FROM series WHERE host = ? AND category = ? AND metric = ?",
		host, category, metric,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s/%s/%s", ErrNoSeries, host, category, metric)
	}

	if err != nil {
		return 0, fmt.Errorf("%w series id: %w", errFailedToScan, err)
	}

	return id, nil
}

// GetSeries implements prediction.SeriesStore. The window [from, until)
// is rasterized onto the series' native step; steps without a stored
// sample stay nil. Aggregation decides how multiple samples falling into
// one step collapse: "MAX" keeps the maximum, anything else averages.
func (db *DB) GetSeries(
	ctx context.Context,
	host, category, metric, aggregation string,
	from, until time.Time) (prediction.Series, error) {
	if !from.Before(until) {
		return prediction.Series{}, fmt.Errorf("%w: from %v not before until %v", errInvalidWindow, from, until)
	}

	var (
		id          int64
		stepSeconds int64
	)

	err := db.QueryRowContext(ctx,
		"SELECT id, step_seconds FROM series WHERE host = ? AND category = ? AND metric = ?",
		host, category, metric,
	).Scan(&id, &stepSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return prediction.Series{}, fmt.Errorf("%w: %s/%s/%s", ErrNoSeries, host, category, metric)
	}

	if err != nil {
		return prediction.Series{}, fmt.Errorf("%w series: %w", errFailedToScan, err)
	}

	step := time.Duration(stepSeconds) * time.Second
	slots := int(until.Sub(from) / step)

	series := prediction.Series{
		From:   from,
		Step:   step,
		Values: make([]*float64, slots),
	}

	rows, err := db.QueryContext(ctx,
		"SELECT timestamp, value FROM samples WHERE series_id = ? AND timestamp >= ? AND timestamp < ? ORDER BY timestamp",
		id, from.Unix(), until.Unix())
	if err != nil {
		return prediction.Series{}, fmt.Errorf("%w samples: %w", errFailedToQuery, err)
	}

	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}(rows)

	counts := make([]int, slots)

	for rows.Next() {
		var (
			ts    int64
			value float64
		)

		if err := rows.Scan(&ts, &value); err != nil {
			return prediction.Series{}, fmt.Errorf("%w sample row: %w", errFailedToScan, err)
		}

		idx := int(time.Unix(ts, 0).Sub(from) / step)
		if idx < 0 || idx >= slots {
			continue
		}

		switch {
		case series.Values[idx] == nil:
			v := value
			series.Values[idx] = &v
		case aggregation == "MAX":
			if value > *series.Values[idx] {
				*series.Values[idx] = value
			}
		default:
			// Running mean over the samples in this step.
			*series.Values[idx] = (*series.Values[idx]*float64(counts[idx]) + value) / float64(counts[idx]+1)
		}

		counts[idx]++
	}

	if err := rows.Err(); err != nil {
		return prediction.Series{}, fmt.Errorf("%w samples: %w", errFailedToQuery, err)
	}

	return series, nil
}

// InsertResult persists a formatted check result and feeds its perf data
// into the sample series so later cycles can scan it historically.
func (db *DB) InsertResult(host, checkType, item string, res check.Result, ts time.Time) error {
	const insertSQL = `
		INSERT INTO check_results (host, check_type, item, state, summary, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := db.Exec(insertSQL, host, checkType, item, int(res.State), res.Summary, ts); err != nil {
		return fmt.Errorf("%w check result: %w", errFailedToInsert, err)
	}

	for _, p := range res.Perf {
		if _, err := db.EnsureSeries(host, checkType, p.Label, time.Minute); err != nil {
			return err
		}

		if err := db.RecordSample(host, checkType, p.Label, ts, p.Value); err != nil {
			return err
		}
	}

	return nil
}

// GetResultHistory retrieves the most recent results for one service item.
func (db *DB) GetResultHistory(host, item string, limit int) ([]ResultRecord, error) {
	const querySQL = `
		SELECT check_type, state, summary, timestamp
		FROM check_results
		WHERE host = ? AND item = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := db.Query(querySQL, host, item, limit)
	if err != nil {
		return nil, fmt.Errorf("%w result history: %w", errFailedToQuery, err)
	}

	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}(rows)

	var history []ResultRecord

	for rows.Next() {
		r := ResultRecord{Host: host, Item: item}

		if err := rows.Scan(&r.CheckType, &r.State, &r.Summary, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("%w history row: %w", errFailedToScan, err)
		}

		history = append(history, r)
	}

	return history, rows.Err()
}

// CleanOldData removes samples and results older than the retention
// period.
func (db *DB) CleanOldData(retentionPeriod time.Duration) error {
	cutoff := time.Now().Add(-retentionPeriod)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToBeginTx, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("failed to rollback: %v", rbErr)
			}

			return
		}

		err = tx.Commit()
	}()

	if _, err = tx.Exec(
		"DELETE FROM samples WHERE timestamp < ?",
		cutoff.Unix(),
	); err != nil {
		return fmt.Errorf("%w samples: %w", errFailedToClean, err)
	}

	if _, err = tx.Exec(
		"DELETE FROM check_results WHERE timestamp < ?",
		cutoff,
	); err != nil {
		return fmt.Errorf("%w check results: %w", errFailedToClean, err)
	}

	return nil
}
