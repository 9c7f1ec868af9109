package clickhouse

import (
	"context"
	"fmt"
	"time"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

// PriceSeriesStore implements storage.PriceSeriesStore over the daily_prices table.
type PriceSeriesStore struct {
	conn *Conn
}

// NewPriceSeriesStore creates a new PriceSeriesStore.
func NewPriceSeriesStore(conn *Conn) *PriceSeriesStore {
	return &PriceSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceSeriesStore = (*PriceSeriesStore)(nil)

// InsertBulk adds points for ticker. Fails entire batch on duplicate (ticker, date).
// MergeTree does not enforce uniqueness, so duplicates are checked before the insert.
func (s *PriceSeriesStore) InsertBulk(ctx context.Context, ticker string, points []domain.PricePoint) error {
	if ticker == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[time.Time]struct{}, len(points))
	minDate, maxDate := domain.TruncateDate(points[0].Date), domain.TruncateDate(points[0].Date)
	for _, p := range points {
		d := domain.TruncateDate(p.Date)
		if _, exists := seen[d]; exists {
			return storage.ErrDuplicateKey
		}
		seen[d] = struct{}{}
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	// Check for duplicates against existing DB rows
	existing, err := s.datesInRange(ctx, ticker, minDate, maxDate)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for _, d := range existing {
		if _, dup := seen[d]; dup {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_prices (ticker, date, adjusted_close)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(ticker, domain.TruncateDate(p.Date), p.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetSeries retrieves the series for ticker, ordered by date ASC.
func (s *PriceSeriesStore) GetSeries(ctx context.Context, ticker string) ([]domain.PricePoint, error) {
	query := `
		SELECT date, adjusted_close
		FROM daily_prices
		WHERE ticker = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	points, err := scanPricePoints(rows)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, storage.ErrNotFound
	}
	return points, nil
}

// ListTickers returns every ticker in daily_prices, sorted ASC.
func (s *PriceSeriesStore) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT ticker FROM daily_prices ORDER BY ticker ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("scan ticker row: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticker rows: %w", err)
	}

	return tickers, nil
}

// datesInRange returns stored dates for ticker within [start, end].
func (s *PriceSeriesStore) datesInRange(ctx context.Context, ticker string, start, end time.Time) ([]time.Time, error) {
	query := `
		SELECT date FROM daily_prices
		WHERE ticker = ? AND date >= ? AND date <= ?
	`

	rows, err := s.conn.Query(ctx, query, ticker, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, domain.TruncateDate(d))
	}
	return dates, rows.Err()
}

// scanPricePoints scans multiple rows.
func scanPricePoints(rows chRows) ([]domain.PricePoint, error) {
	var points []domain.PricePoint

	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		p.Date = domain.TruncateDate(p.Date)
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}

	return points, nil
}
