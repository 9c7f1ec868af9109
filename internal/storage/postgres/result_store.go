package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

// ResultStore implements storage.ResultStore using PostgreSQL.
type ResultStore struct {
	pool *Pool
}

// NewResultStore creates a new ResultStore.
func NewResultStore(pool *Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

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

// Insert persists the result row, its milestones and its transitions in
// one transaction. Returns ErrDuplicateKey if the ticker exists.
func (s *ResultStore) Insert(ctx context.Context, r *domain.Result) error {
	if r == nil || r.Ticker == "" {
		return storage.ErrInvalidInput
	}
	row := domain.FlattenResult(r)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO bagger_results (`+resultColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`,
		row.Ticker, row.StartPrice, row.FinalPrice, row.StartDate, row.FinalDate, row.TotalDays,
		string(row.CurrentState), row.CurrentReturnMultiple,
		row.MaxReturnMultiple, row.MaxPrice, row.MaxDate, row.DaysToPeak,
		row.First10xDate, row.First100xDate, row.Last10xDate, row.Last100xDate,
		row.MaxDrawdown, row.MaxDrawdownDate,
		string(row.CurrentStreakState), row.CurrentStreakDays, row.CurrentStreakStartDate,
		row.DaysAsNoBagger, row.DaysAsMultibagger, row.DaysAsHundredBagger,
		row.DaysAsFallenMultibagger, row.DaysAsFallenHundredBagger,
		row.MilestonesHit, row.TransitionsCount, row.First2xDate, row.First5xDate,
		row.DaysAbove10x, row.DaysAbove100x,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert result: %w", err)
	}

	for _, m := range r.Milestones {
		_, err := tx.Exec(ctx, `
			INSERT INTO bagger_milestones (
				ticker, multiple, date, price, days_from_start, maintained_for_days
			) VALUES ($1, $2, $3, $4, $5, $6)
		`, r.Ticker, m.Multiple, m.Date, m.Price, m.DaysFromStart, m.MaintainedForDays)
		if err != nil {
			return fmt.Errorf("insert milestone %vx: %w", m.Multiple, err)
		}
	}

	for i, t := range r.Transitions {
		_, err := tx.Exec(ctx, `
			INSERT INTO bagger_transitions (
				ticker, seq, from_state, to_state, date, price, return_multiple, days_from_start
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, r.Ticker, i, string(t.From), string(t.To), t.Date, t.Price, t.ReturnMultiple, t.DaysFromStart)
		if err != nil {
			return fmt.Errorf("insert transition %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByTicker retrieves a stored result. Returns ErrNotFound if not exists.
func (s *ResultStore) GetByTicker(ctx context.Context, ticker string) (*storage.StoredResult, error) {
	row, err := scanResultRow(s.pool.QueryRow(ctx, `
		SELECT `+resultColumns+`
		FROM bagger_results
		WHERE ticker = $1
	`, ticker))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get result by ticker: %w", err)
	}

	milestones, err := s.milestones(ctx, ticker)
	if err != nil {
		return nil, err
	}
	transitions, err := s.transitions(ctx, ticker)
	if err != nil {
		return nil, err
	}

	return &storage.StoredResult{Row: row, Milestones: milestones, Transitions: transitions}, nil
}

// GetAll retrieves every row, ordered by ticker ASC.
func (s *ResultStore) GetAll(ctx context.Context) ([]*domain.ResultRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+resultColumns+`
		FROM bagger_results
		ORDER BY ticker ASC
	`)
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

// Delete removes the result for ticker with its milestones and transitions
// in one transaction. Returns ErrNotFound if not exists.
func (s *ResultStore) Delete(ctx context.Context, ticker string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bagger_milestones WHERE ticker = $1`, ticker); err != nil {
		return fmt.Errorf("delete milestones: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bagger_transitions WHERE ticker = $1`, ticker); err != nil {
		return fmt.Errorf("delete transitions: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM bagger_results WHERE ticker = $1`, ticker)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListMilestones retrieves every milestone, ordered by ticker ASC, multiple ASC.
func (s *ResultStore) ListMilestones(ctx context.Context) ([]storage.TickerMilestone, error) {
	return s.queryMilestones(ctx, "")
}

// ListTransitions retrieves every transition, ordered by ticker ASC, seq ASC.
func (s *ResultStore) ListTransitions(ctx context.Context) ([]storage.TickerTransition, error) {
	return s.queryTransitions(ctx, "")
}

func (s *ResultStore) milestones(ctx context.Context, ticker string) ([]domain.Milestone, error) {
	tagged, err := s.queryMilestones(ctx, "WHERE ticker = $1", ticker)
	if err != nil {
		return nil, err
	}
	var out []domain.Milestone
	for _, m := range tagged {
		out = append(out, m.Milestone)
	}
	return out, nil
}

func (s *ResultStore) transitions(ctx context.Context, ticker string) ([]domain.Transition, error) {
	tagged, err := s.queryTransitions(ctx, "WHERE ticker = $1", ticker)
	if err != nil {
		return nil, err
	}
	var out []domain.Transition
	for _, t := range tagged {
		out = append(out, t.Transition)
	}
	return out, nil
}

func (s *ResultStore) queryMilestones(ctx context.Context, where string, args ...any) ([]storage.TickerMilestone, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, multiple, date, price, days_from_start, maintained_for_days
		FROM bagger_milestones
		`+where+`
		ORDER BY ticker ASC, multiple ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("get milestones: %w", err)
	}
	defer rows.Close()

	var out []storage.TickerMilestone
	for rows.Next() {
		var m storage.TickerMilestone
		if err := rows.Scan(&m.Ticker, &m.Multiple, &m.Date, &m.Price, &m.DaysFromStart, &m.MaintainedForDays); err != nil {
			return nil, fmt.Errorf("scan milestone row: %w", err)
		}
		m.Date = domain.TruncateDate(m.Date)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestone rows: %w", err)
	}
	return out, nil
}

func (s *ResultStore) queryTransitions(ctx context.Context, where string, args ...any) ([]storage.TickerTransition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, from_state, to_state, date, price, return_multiple, days_from_start
		FROM bagger_transitions
		`+where+`
		ORDER BY ticker ASC, seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("get transitions: %w", err)
	}
	defer rows.Close()

	var out []storage.TickerTransition
	for rows.Next() {
		var t storage.TickerTransition
		var from, to string
		if err := rows.Scan(&t.Ticker, &from, &to, &t.Date, &t.Price, &t.ReturnMultiple, &t.DaysFromStart); err != nil {
			return nil, fmt.Errorf("scan transition row: %w", err)
		}
		t.From = domain.BaggerState(from)
		t.To = domain.BaggerState(to)
		t.Date = domain.TruncateDate(t.Date)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transition rows: %w", err)
	}
	return out, nil
}

// scanResultRow scans a single bagger_results row.
func scanResultRow(row pgx.Row) (*domain.ResultRow, error) {
	var r domain.ResultRow
	var state, streakState string

	err := row.Scan(
		&r.Ticker, &r.StartPrice, &r.FinalPrice, &r.StartDate, &r.FinalDate, &r.TotalDays,
		&state, &r.CurrentReturnMultiple,
		&r.MaxReturnMultiple, &r.MaxPrice, &r.MaxDate, &r.DaysToPeak,
		&r.First10xDate, &r.First100xDate, &r.Last10xDate, &r.Last100xDate,
		&r.MaxDrawdown, &r.MaxDrawdownDate,
		&streakState, &r.CurrentStreakDays, &r.CurrentStreakStartDate,
		&r.DaysAsNoBagger, &r.DaysAsMultibagger, &r.DaysAsHundredBagger,
		&r.DaysAsFallenMultibagger, &r.DaysAsFallenHundredBagger,
		&r.MilestonesHit, &r.TransitionsCount, &r.First2xDate, &r.First5xDate,
		&r.DaysAbove10x, &r.DaysAbove100x,
	)
	if err != nil {
		return nil, err
	}

	r.CurrentState = domain.BaggerState(state)
	r.CurrentStreakState = domain.BaggerState(streakState)
	for _, d := range []*time.Time{&r.StartDate, &r.FinalDate, &r.MaxDate, &r.MaxDrawdownDate, &r.CurrentStreakStartDate} {
		*d = domain.TruncateDate(*d)
	}
	for _, d := range []*time.Time{r.First10xDate, r.First100xDate, r.Last10xDate, r.Last100xDate, r.First2xDate, r.First5xDate} {
		if d != nil {
			*d = domain.TruncateDate(*d)
		}
	}
	return &r, nil
}
