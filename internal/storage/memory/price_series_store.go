package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

// PriceSeriesStore is an in-memory implementation of storage.PriceSeriesStore.
type PriceSeriesStore struct {
	mu   sync.RWMutex
	data map[string]map[time.Time]float64 // ticker -> date -> price
}

// NewPriceSeriesStore creates a new in-memory price series store.
func NewPriceSeriesStore() *PriceSeriesStore {
	return &PriceSeriesStore{
		data: make(map[string]map[time.Time]float64),
	}
}

// InsertBulk adds points for ticker. Fails entire batch on duplicate date.
func (s *PriceSeriesStore) InsertBulk(_ context.Context, ticker string, points []domain.PricePoint) error {
	if ticker == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[ticker]

	// First pass: check for duplicates (existing + intra-batch)
	batch := make(map[time.Time]float64, len(points))
	for _, p := range points {
		d := domain.TruncateDate(p.Date)
		if _, exists := existing[d]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[d]; exists {
			return storage.ErrDuplicateKey
		}
		batch[d] = p.Price
	}

	// Second pass: insert all
	if existing == nil {
		existing = make(map[time.Time]float64, len(batch))
		s.data[ticker] = existing
	}
	for d, price := range batch {
		existing[d] = price
	}

	return nil
}

// GetSeries retrieves the series for ticker, ordered by date ASC.
func (s *PriceSeriesStore) GetSeries(_ context.Context, ticker string) ([]domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDate, ok := s.data[ticker]
	if !ok || len(byDate) == 0 {
		return nil, storage.ErrNotFound
	}

	points := make([]domain.PricePoint, 0, len(byDate))
	for d, price := range byDate {
		points = append(points, domain.PricePoint{Date: d, Price: price})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return points, nil
}

// ListTickers returns all tickers, sorted ASC.
func (s *PriceSeriesStore) ListTickers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tickers := make([]string, 0, len(s.data))
	for ticker := range s.data {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	return tickers, nil
}

var _ storage.PriceSeriesStore = (*PriceSeriesStore)(nil)
