package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"poolratio/internal/model"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id          TEXT PRIMARY KEY,
			recorded_at     INTEGER NOT NULL,
			network         TEXT NOT NULL,
			pool_a          TEXT NOT NULL,
			label_a         TEXT NOT NULL,
			pool_b          TEXT NOT NULL,
			label_b         TEXT NOT NULL,
			resolution      TEXT NOT NULL,
			window_start    INTEGER NOT NULL,
			window_end      INTEGER NOT NULL,
			candles_a       INTEGER,
			candles_b       INTEGER,
			aligned_rows    INTEGER,
			latest_ratio    REAL,
			ratio_high      REAL,
			ratio_low       REAL,
			ratio_position  REAL,
			chart_path      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_recorded ON runs(recorded_at)`,

		`CREATE TABLE IF NOT EXISTS aligned_rows (
			run_id          TEXT NOT NULL REFERENCES runs(run_id),
			timestamp       INTEGER NOT NULL,
			close_a         REAL,
			close_b         REAL,
			relative_price  REAL,
			PRIMARY KEY (run_id, timestamp)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run and its aligned table in one transaction.
func (r *SQLiteRecorder) RecordRun(snap *model.PairSnapshot, stats *model.RatioStats, chartPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var latest, high, low, pos sql.NullFloat64
	if stats != nil {
		latest = sql.NullFloat64{Float64: stats.Current, Valid: true}
		high = sql.NullFloat64{Float64: stats.High, Valid: true}
		low = sql.NullFloat64{Float64: stats.Low, Valid: true}
		pos = sql.NullFloat64{Float64: stats.Position, Valid: true}
	}

	p := snap.Pair
	if _, err := tx.Exec(`INSERT INTO runs
		(run_id, recorded_at, network, pool_a, label_a, pool_b, label_b, resolution,
		 window_start, window_end, candles_a, candles_b, aligned_rows,
		 latest_ratio, ratio_high, ratio_low, ratio_position, chart_path)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, snap.FetchedAt.Unix(), p.Network, p.A.Address, p.A.Label, p.B.Address, p.B.Label,
		string(p.Resolution), snap.Window.Start, snap.Window.End,
		len(snap.A.Candles), len(snap.B.Candles), len(snap.Rows),
		latest, high, low, pos, chartPath,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO aligned_rows
		(run_id, timestamp, close_a, close_b, relative_price) VALUES (?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for _, row := range snap.Rows {
		if _, err := stmt.Exec(snap.RunID, row.Time.Unix(),
			nullable(row.CloseA), nullable(row.CloseB), nullable(row.RelativePrice)); err != nil {
			return fmt.Errorf("insert row %d: %w", row.Time.Unix(), err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, recorded_at, network, label_a, label_b, resolution,
		window_start, window_end, aligned_rows, latest_ratio, chart_path
		FROM runs ORDER BY recorded_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s        RunSummary
			recorded int64
			latest   sql.NullFloat64
			chart    sql.NullString
		)
		if err := rows.Scan(&s.RunID, &recorded, &s.Network, &s.LabelA, &s.LabelB, &s.Resolution,
			&s.WindowStart, &s.WindowEnd, &s.Rows, &latest, &chart); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.RecordedAt = time.Unix(recorded, 0).UTC()
		s.LatestRatio = latest.Float64
		s.ChartPath = chart.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
