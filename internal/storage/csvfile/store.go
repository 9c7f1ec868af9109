// Package csvfile reads and writes price series laid out as one partition
// directory per ticker: <root>/code=<TICKER>/data.csv.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

const (
	partitionPrefix = "code="
	dataFile        = "data.csv"

	dateColumn  = "date"
	priceColumn = "adjusted_close"
)

// Store implements storage.PriceSeriesStore over a partitioned directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir. The directory does not need to exist.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Compile-time interface check.
var _ storage.PriceSeriesStore = (*Store)(nil)

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(ticker string) string {
	return filepath.Join(s.root, partitionPrefix+ticker, dataFile)
}

// ListTickers returns every ticker that has a data file, sorted ASC.
// A missing root directory yields an empty list.
func (s *Store) ListTickers(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var tickers []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), partitionPrefix) {
			continue
		}
		ticker := strings.TrimPrefix(e.Name(), partitionPrefix)
		if ticker == "" {
			continue
		}
		if _, err := os.Stat(s.path(ticker)); err != nil {
			continue
		}
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	return tickers, nil
}

// GetSeries reads the series for ticker. Rows with an empty, unparseable
// non-finite or non-positive price are dropped; the rest are sorted by date
// and the first row wins on a repeated date. Returns ErrNotFound if the file
// is missing or no usable rows remain.
func (s *Store) GetSeries(ctx context.Context, ticker string) ([]domain.PricePoint, error) {
	if ticker == "" || strings.ContainsAny(ticker, `/\`) {
		return nil, storage.ErrInvalidInput
	}

	f, err := os.Open(s.path(ticker))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("open series %s: %w", ticker, err)
	}
	defer f.Close()

	points, err := readSeries(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read series %s: %w", ticker, err)
	}
	if len(points) == 0 {
		return nil, storage.ErrNotFound
	}

	return points, nil
}

// InsertBulk writes the partition for ticker. A partition is written once;
// an existing file yields ErrDuplicateKey.
func (s *Store) InsertBulk(_ context.Context, ticker string, points []domain.PricePoint) error {
	if ticker == "" || strings.ContainsAny(ticker, `/\`) {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	sorted := make([]domain.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	for i := 1; i < len(sorted); i++ {
		if domain.TruncateDate(sorted[i].Date).Equal(domain.TruncateDate(sorted[i-1].Date)) {
			return storage.ErrDuplicateKey
		}
	}

	path := s.path(ticker)
	if _, err := os.Stat(path); err == nil {
		return storage.ErrDuplicateKey
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create partition %s: %w", ticker, err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if err := writeSeries(f, sorted); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write series %s: %w", ticker, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}

	return nil
}

func readSeries(ctx context.Context, r io.Reader) ([]domain.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, priceIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case dateColumn:
			dateIdx = i
		case priceColumn:
			priceIdx = i
		}
	}
	if dateIdx < 0 || priceIdx < 0 {
		return nil, fmt.Errorf("%w: header must contain %q and %q", storage.ErrInvalidInput, dateColumn, priceColumn)
	}

	var points []domain.PricePoint
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if dateIdx >= len(rec) || priceIdx >= len(rec) {
			continue
		}

		price, ok := parsePrice(rec[priceIdx])
		if !ok {
			continue
		}
		date, err := domain.ParseDate(strings.TrimSpace(rec[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", storage.ErrInvalidInput, line, err)
		}

		points = append(points, domain.PricePoint{Date: date, Price: price})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	deduped := points[:0]
	for _, p := range points {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(p.Date) {
			continue
		}
		deduped = append(deduped, p)
	}

	return deduped, nil
}

// parsePrice reports whether v holds a usable adjusted close.
func parsePrice(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, false
	}
	return price, true
}

func writeSeries(w io.Writer, points []domain.PricePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{dateColumn, priceColumn}); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{
			p.Date.Format(domain.DateLayout),
			strconv.FormatFloat(p.Price, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
