// Package sqlite persists bagger analysis results in a single SQLite file,
// convenient for sharing a finished batch without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

// ResultStore implements storage.ResultStore on SQLite.
type ResultStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writes
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

// Open opens (or creates) the database at path and creates the schema.
func Open(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &ResultStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

func (s *ResultStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bagger_results (
			ticker                     TEXT PRIMARY KEY,
			start_price                REAL NOT NULL,
			final_price                REAL NOT NULL,
			start_date                 TEXT NOT NULL,
			final_date                 TEXT NOT NULL,
			total_days                 INTEGER NOT NULL,
			current_state              TEXT NOT NULL,
			current_return_multiple    REAL NOT NULL,
			max_return_multiple        REAL NOT NULL,
			max_price                  REAL NOT NULL,
			max_date                   TEXT NOT NULL,
			days_to_peak               INTEGER NOT NULL,
			first_10x_date             TEXT,
			first_100x_date            TEXT,
			last_10x_date              TEXT,
			last_100x_date             TEXT,
			max_drawdown               REAL NOT NULL,
			max_drawdown_date          TEXT NOT NULL,
			current_streak_state       TEXT NOT NULL,
			current_streak_days        INTEGER NOT NULL,
			current_streak_start_date  TEXT NOT NULL,
			days_as_no_bagger          INTEGER NOT NULL,
			days_as_multibagger        INTEGER NOT NULL,
			days_as_100_bagger         INTEGER NOT NULL,
			days_as_fallen_multibagger INTEGER NOT NULL,
			days_as_fallen_100_bagger  INTEGER NOT NULL,
			milestones_hit             INTEGER NOT NULL,
			transitions_count          INTEGER NOT NULL,
			first_2x_date              TEXT,
			first_5x_date              TEXT,
			days_above_10x             INTEGER NOT NULL,
			days_above_100x            INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_state ON bagger_results(current_state)`,

		`CREATE TABLE IF NOT EXISTS bagger_milestones (
			ticker              TEXT NOT NULL REFERENCES bagger_results(ticker),
			multiple            REAL NOT NULL,
			date                TEXT NOT NULL,
			price               REAL NOT NULL,
			days_from_start     INTEGER NOT NULL,
			maintained_for_days INTEGER NOT NULL,
			PRIMARY KEY (ticker, multiple)
		)`,

		`CREATE TABLE IF NOT EXISTS bagger_transitions (
			ticker          TEXT NOT NULL REFERENCES bagger_results(ticker),
			seq             INTEGER NOT NULL,
			from_state      TEXT NOT NULL,
			to_state        TEXT NOT NULL,
			date            TEXT NOT NULL,
			price           REAL NOT NULL,
			return_multiple REAL NOT NULL,
			days_from_start INTEGER NOT NULL,
			PRIMARY KEY (ticker, seq)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const resultColumns = `
	ticker, start_price, final_price, start_date, final_date, total_days,
	current_state, current_return_multiple,
	max_return_multiple, max_price, max_date, days_to_peak,
	first_10x_date, first_100x_date, last_10x_date, last_100x_date,
	max_drawdown, max_drawdown_date,
	current_streak_state, current_streak_days, current_streak_start_date,
	days_as_no_bagger, days_as_multibagger, days_as_100_bagger,
	days_as_fallen_multibagger, days_as_fallen_100_bagger,
	milestones_hit, transitions_count, first_2x_date, first_5x_date,
	days_above_10x, days_above_100x`

// Insert persists r with its milestones and transitions in one transaction.
// Returns ErrDuplicateKey if the ticker exists.
func (s *ResultStore) Insert(ctx context.Context, r *domain.Result) error {
	if r == nil || r.Ticker == "" {
		return storage.ErrInvalidInput
	}
	row := domain.FlattenResult(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM bagger_results WHERE ticker = ?`, r.Ticker).Scan(&n); err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if n > 0 {
		return storage.ErrDuplicateKey
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bagger_results (`+resultColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		row.Ticker, row.StartPrice, row.FinalPrice, formatDate(row.StartDate), formatDate(row.FinalDate), row.TotalDays,
		string(row.CurrentState), row.CurrentReturnMultiple,
		row.MaxReturnMultiple, row.MaxPrice, formatDate(row.MaxDate), row.DaysToPeak,
		nullDate(row.First10xDate), nullDate(row.First100xDate), nullDate(row.Last10xDate), nullDate(row.Last100xDate),
		row.MaxDrawdown, formatDate(row.MaxDrawdownDate),
		string(row.CurrentStreakState), row.CurrentStreakDays, formatDate(row.CurrentStreakStartDate),
		row.DaysAsNoBagger, row.DaysAsMultibagger, row.DaysAsHundredBagger,
		row.DaysAsFallenMultibagger, row.DaysAsFallenHundredBagger,
		row.MilestonesHit, row.TransitionsCount, nullDate(row.First2xDate), nullDate(row.First5xDate),
		row.DaysAbove10x, row.DaysAbove100x,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	for _, m := range r.Milestones {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bagger_milestones (ticker, multiple, date, price, days_from_start, maintained_for_days)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.Ticker, m.Multiple, formatDate(m.Date), m.Price, m.DaysFromStart, m.MaintainedForDays)
		if err != nil {
			return fmt.Errorf("insert milestone %vx: %w", m.Multiple, err)
		}
	}

	for i, t := range r.Transitions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bagger_transitions (ticker, seq, from_state, to_state, date, price, return_multiple, days_from_start)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.Ticker, i, string(t.From), string(t.To), formatDate(t.Date), t.Price, t.ReturnMultiple, t.DaysFromStart)
		if err != nil {
			return fmt.Errorf("insert transition %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByTicker retrieves a stored result. Returns ErrNotFound if not exists.
func (s *ResultStore) GetByTicker(ctx context.Context, ticker string) (*storage.StoredResult, error) {
	row, err := scanResultRow(s.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM bagger_results WHERE ticker = ?`, ticker))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get result by ticker: %w", err)
	}

	stored := &storage.StoredResult{Row: row}

	milestones, err := s.queryMilestones(ctx, `WHERE ticker = ?`, ticker)
	if err != nil {
		return nil, err
	}
	for _, m := range milestones {
		stored.Milestones = append(stored.Milestones, m.Milestone)
	}

	transitions, err := s.queryTransitions(ctx, `WHERE ticker = ?`, ticker)
	if err != nil {
		return nil, err
	}
	for _, t := range transitions {
		stored.Transitions = append(stored.Transitions, t.Transition)
	}

	return stored, nil
}

// ListMilestones retrieves every milestone, ordered by ticker ASC, multiple ASC.
func (s *ResultStore) ListMilestones(ctx context.Context) ([]storage.TickerMilestone, error) {
	return s.queryMilestones(ctx, "")
}

// ListTransitions retrieves every transition, ordered by ticker ASC, seq ASC.
func (s *ResultStore) ListTransitions(ctx context.Context) ([]storage.TickerTransition, error) {
	return s.queryTransitions(ctx, "")
}

func (s *ResultStore) queryMilestones(ctx context.Context, where string, args ...any) ([]storage.TickerMilestone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, multiple, date, price, days_from_start, maintained_for_days
		FROM bagger_milestones `+where+`
		ORDER BY ticker ASC, multiple ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("get milestones: %w", err)
	}
	defer rows.Close()

	var out []storage.TickerMilestone
	for rows.Next() {
		var m storage.TickerMilestone
		var date string
		if err := rows.Scan(&m.Ticker, &m.Multiple, &date, &m.Price, &m.DaysFromStart, &m.MaintainedForDays); err != nil {
			return nil, fmt.Errorf("scan milestone row: %w", err)
		}
		if m.Date, err = domain.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse milestone date: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestone rows: %w", err)
	}
	return out, nil
}

func (s *ResultStore) queryTransitions(ctx context.Context, where string, args ...any) ([]storage.TickerTransition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, from_state, to_state, date, price, return_multiple, days_from_start
		FROM bagger_transitions `+where+`
		ORDER BY ticker ASC, seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("get transitions: %w", err)
	}
	defer rows.Close()

	var out []storage.TickerTransition
	for rows.Next() {
		var t storage.TickerTransition
		var from, to, date string
		if err := rows.Scan(&t.Ticker, &from, &to, &date, &t.Price, &t.ReturnMultiple, &t.DaysFromStart); err != nil {
			return nil, fmt.Errorf("scan transition row: %w", err)
		}
		t.From, t.To = domain.BaggerState(from), domain.BaggerState(to)
		if t.Date, err = domain.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse transition date: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transition rows: %w", err)
	}
	return out, nil
}

// GetAll retrieves every row, ordered by ticker ASC.
func (s *ResultStore) GetAll(ctx context.Context) ([]*domain.ResultRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+resultColumns+` FROM bagger_results ORDER BY ticker ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all results: %w", err)
	}
	defer rows.Close()

	var out []*domain.ResultRow
	for rows.Next() {
		row, err := scanResultRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return out, nil
}

// Delete removes the result for ticker with its milestones and transitions.
// Returns ErrNotFound if not exists.
func (s *ResultStore) Delete(ctx context.Context, ticker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bagger_milestones WHERE ticker = ?`, ticker); err != nil {
		return fmt.Errorf("delete milestones: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bagger_transitions WHERE ticker = ?`, ticker); err != nil {
		return fmt.Errorf("delete transitions: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bagger_results WHERE ticker = ?`, ticker)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResultRow(sc scanner) (*domain.ResultRow, error) {
	var r domain.ResultRow
	var state, streakState string
	var startDate, finalDate, maxDate, ddDate, streakDate string
	var first10, first100, last10, last100, first2, first5 sql.NullString

	err := sc.Scan(
		&r.Ticker, &r.StartPrice, &r.FinalPrice, &startDate, &finalDate, &r.TotalDays,
		&state, &r.CurrentReturnMultiple,
		&r.MaxReturnMultiple, &r.MaxPrice, &maxDate, &r.DaysToPeak,
		&first10, &first100, &last10, &last100,
		&r.MaxDrawdown, &ddDate,
		&streakState, &r.CurrentStreakDays, &streakDate,
		&r.DaysAsNoBagger, &r.DaysAsMultibagger, &r.DaysAsHundredBagger,
		&r.DaysAsFallenMultibagger, &r.DaysAsFallenHundredBagger,
		&r.MilestonesHit, &r.TransitionsCount, &first2, &first5,
		&r.DaysAbove10x, &r.DaysAbove100x,
	)
	if err != nil {
		return nil, err
	}

	r.CurrentState = domain.BaggerState(state)
	r.CurrentStreakState = domain.BaggerState(streakState)

	dates := []struct {
		src string
		dst *time.Time
	}{
		{startDate, &r.StartDate},
		{finalDate, &r.FinalDate},
		{maxDate, &r.MaxDate},
		{ddDate, &r.MaxDrawdownDate},
		{streakDate, &r.CurrentStreakStartDate},
	}
	for _, d := range dates {
		if *d.dst, err = domain.ParseDate(d.src); err != nil {
			return nil, fmt.Errorf("parse date %q: %w", d.src, err)
		}
	}

	nullable := []struct {
		src sql.NullString
		dst **time.Time
	}{
		{first10, &r.First10xDate},
		{first100, &r.First100xDate},
		{last10, &r.Last10xDate},
		{last100, &r.Last100xDate},
		{first2, &r.First2xDate},
		{first5, &r.First5xDate},
	}
	for _, d := range nullable {
		if !d.src.Valid {
			continue
		}
		t, err := domain.ParseDate(d.src.String)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", d.src.String, err)
		}
		*d.dst = &t
	}

	return &r, nil
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}
