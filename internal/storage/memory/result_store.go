package memory

import (
	"context"
	"sort"
	"sync"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

// ResultStore is an in-memory implementation of storage.ResultStore.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]*storage.StoredResult // keyed by ticker
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string]*storage.StoredResult),
	}
}

// Insert adds a result. Returns ErrDuplicateKey if the ticker exists.
func (s *ResultStore) Insert(_ context.Context, r *domain.Result) error {
	if r == nil || r.Ticker == "" {
		return storage.ErrInvalidInput
	}

	stored := &storage.StoredResult{
		Row:         domain.FlattenResult(r),
		Milestones:  append([]domain.Milestone(nil), r.Milestones...),
		Transitions: append([]domain.Transition(nil), r.Transitions...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.Ticker]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[r.Ticker] = stored

	return nil
}

// GetByTicker retrieves a result by ticker. Returns ErrNotFound if not exists.
func (s *ResultStore) GetByTicker(_ context.Context, ticker string) (*storage.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.data[ticker]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return copyStored(stored), nil
}

// GetAll retrieves all rows, ordered by ticker ASC.
func (s *ResultStore) GetAll(_ context.Context) ([]*domain.ResultRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*domain.ResultRow, 0, len(s.data))
	for _, stored := range s.data {
		rows = append(rows, stored.Row.Clone())
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Ticker < rows[j].Ticker
	})

	return rows, nil
}

// ListMilestones retrieves every milestone, ordered by ticker ASC, multiple ASC.
func (s *ResultStore) ListMilestones(_ context.Context) ([]storage.TickerMilestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.TickerMilestone
	for _, ticker := range s.sortedTickers() {
		for _, m := range s.data[ticker].Milestones {
			out = append(out, storage.TickerMilestone{Ticker: ticker, Milestone: m})
		}
	}
	return out, nil
}

// ListTransitions retrieves every transition, ordered by ticker ASC.
func (s *ResultStore) ListTransitions(_ context.Context) ([]storage.TickerTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.TickerTransition
	for _, ticker := range s.sortedTickers() {
		for _, t := range s.data[ticker].Transitions {
			out = append(out, storage.TickerTransition{Ticker: ticker, Transition: t})
		}
	}
	return out, nil
}

// Delete removes the result for ticker. Returns ErrNotFound if not exists.
func (s *ResultStore) Delete(_ context.Context, ticker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[ticker]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data, ticker)
	return nil
}

// Len returns the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// sortedTickers must be called with the lock held.
func (s *ResultStore) sortedTickers() []string {
	tickers := make([]string, 0, len(s.data))
	for ticker := range s.data {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

func copyStored(src *storage.StoredResult) *storage.StoredResult {
	return &storage.StoredResult{
		Row:         src.Row.Clone(),
		Milestones:  append([]domain.Milestone(nil), src.Milestones...),
		Transitions: append([]domain.Transition(nil), src.Transitions...),
	}
}

var _ storage.ResultStore = (*ResultStore)(nil)
