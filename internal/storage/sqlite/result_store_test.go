package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagger-lab/internal/bagger"
	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

var base = time.Date(2005, 7, 1, 0, 0, 0, 0, time.UTC)

func analyze(t *testing.T, ticker string, prices ...float64) *domain.Result {
	t.Helper()
	points := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = domain.PricePoint{Date: base.AddDate(0, 0, i), Price: p}
	}
	r, err := bagger.Analyze(ticker, points, bagger.Options{MinDays: 1})
	require.NoError(t, err)
	return r
}

func openTemp(t *testing.T) *ResultStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResultStore_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	r := analyze(t, "AAA", 1, 5, 12, 150, 90, 8)
	require.NoError(t, s.Insert(ctx, r))

	got, err := s.GetByTicker(ctx, "AAA")
	require.NoError(t, err)

	assert.Equal(t, domain.FlattenResult(r), got.Row)
	assert.Equal(t, r.Milestones, got.Milestones)
	assert.Equal(t, r.Transitions, got.Transitions)
	assert.Equal(t, r, got.Result())
}

func TestResultStore_NullableDates(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, analyze(t, "FLAT", 1, 1.5, 1.2)))

	got, err := s.GetByTicker(ctx, "FLAT")
	require.NoError(t, err)
	assert.Nil(t, got.Row.First10xDate)
	assert.Nil(t, got.Row.Last100xDate)
	assert.Nil(t, got.Row.First2xDate)
	assert.Empty(t, got.Milestones)
	assert.Empty(t, got.Transitions)
}

func TestResultStore_DuplicateKey(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	r := analyze(t, "AAA", 1, 2, 3)
	require.NoError(t, s.Insert(ctx, r))
	assert.ErrorIs(t, s.Insert(ctx, r), storage.ErrDuplicateKey)
}

func TestResultStore_NotFound(t *testing.T) {
	s := openTemp(t)

	_, err := s.GetByTicker(context.Background(), "NOPE")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResultStore_GetAllAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	for _, ticker := range []string{"B", "C", "A"} {
		require.NoError(t, s.Insert(ctx, analyze(t, ticker, 1, 11, 9)))
	}
	require.NoError(t, s.Close())

	// Schema creation is idempotent and data survives a reopen.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{rows[0].Ticker, rows[1].Ticker, rows[2].Ticker})
	assert.Equal(t, domain.StateFallenMultibagger, rows[0].CurrentState)
}

func TestResultStore_DeleteAndReinsert(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	r := analyze(t, "AAA", 1, 5, 12, 150, 90, 8)
	require.NoError(t, s.Insert(ctx, r))
	require.NoError(t, s.Delete(ctx, "AAA"))

	_, err := s.GetByTicker(ctx, "AAA")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "AAA"), storage.ErrNotFound)

	require.NoError(t, s.Insert(ctx, r))
	got, err := s.GetByTicker(ctx, "AAA")
	require.NoError(t, err)
	assert.Len(t, got.Milestones, len(r.Milestones))
	assert.Len(t, got.Transitions, len(r.Transitions))
}

func TestResultStore_ListMilestonesAndTransitions(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	zzz := analyze(t, "ZZZ", 1, 3)
	aaa := analyze(t, "AAA", 1, 5, 12, 150, 90, 8)
	require.NoError(t, s.Insert(ctx, zzz))
	require.NoError(t, s.Insert(ctx, aaa))

	milestones, err := s.ListMilestones(ctx)
	require.NoError(t, err)
	require.Len(t, milestones, len(aaa.Milestones)+len(zzz.Milestones))
	for i, m := range aaa.Milestones {
		assert.Equal(t, storage.TickerMilestone{Ticker: "AAA", Milestone: m}, milestones[i])
	}
	assert.Equal(t, "ZZZ", milestones[len(milestones)-1].Ticker)

	transitions, err := s.ListTransitions(ctx)
	require.NoError(t, err)
	require.Len(t, transitions, len(aaa.Transitions))
	for i, tr := range aaa.Transitions {
		assert.Equal(t, storage.TickerTransition{Ticker: "AAA", Transition: tr}, transitions[i])
	}

	require.NoError(t, s.Delete(ctx, "AAA"))
	transitions, err = s.ListTransitions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transitions)
}
