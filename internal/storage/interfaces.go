package storage

import (
	"context"

	"bagger-lab/internal/domain"
)

// PriceSeriesStore provides access to daily adjusted-close series keyed by ticker.
type PriceSeriesStore interface {
	// ListTickers returns every ticker with at least one observation, sorted ASC.
	ListTickers(ctx context.Context) ([]string, error)

	// GetSeries retrieves the series for ticker, ordered by date ASC.
	// Returns ErrNotFound if the ticker has no observations.
	GetSeries(ctx context.Context, ticker string) ([]domain.PricePoint, error)

	// InsertBulk adds points for ticker atomically. Fails entire batch on duplicate (ticker, date).
	InsertBulk(ctx context.Context, ticker string, points []domain.PricePoint) error
}

// StoredResult is a persisted analysis: the flattened row plus its child records.
type StoredResult struct {
	Row         *domain.ResultRow
	Milestones  []domain.Milestone  // ascending by Multiple
	Transitions []domain.Transition // ascending by DaysFromStart
}

// Result rebuilds the full analysis.
func (s *StoredResult) Result() *domain.Result {
	return domain.RestoreResult(s.Row, s.Milestones, s.Transitions)
}

// TickerMilestone is a stored milestone tagged with its ticker.
type TickerMilestone struct {
	Ticker string
	domain.Milestone
}

// TickerTransition is a stored transition tagged with its ticker.
type TickerTransition struct {
	Ticker string
	domain.Transition
}

// ResultStore provides access to bagger_results and its child tables.
type ResultStore interface {
	// Insert persists r with its milestones and transitions.
	// Returns ErrDuplicateKey if a result for r.Ticker exists.
	Insert(ctx context.Context, r *domain.Result) error

	// GetByTicker retrieves a stored result. Returns ErrNotFound if not exists.
	GetByTicker(ctx context.Context, ticker string) (*StoredResult, error)

	// GetAll retrieves every flattened row, ordered by ticker ASC.
	GetAll(ctx context.Context) ([]*domain.ResultRow, error)

	// ListMilestones retrieves every stored milestone, ordered by ticker ASC, multiple ASC.
	ListMilestones(ctx context.Context) ([]TickerMilestone, error)

	// ListTransitions retrieves every stored transition, ordered by ticker ASC
	// then by sequence within the ticker.
	ListTransitions(ctx context.Context) ([]TickerTransition, error)

	// Delete removes the result for ticker with its child records.
	// Returns ErrNotFound if not exists.
	Delete(ctx context.Context, ticker string) error
}
