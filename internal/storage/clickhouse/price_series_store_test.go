package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
	chstore "bagger-lab/internal/storage/clickhouse"
)

var base = time.Date(2015, 3, 2, 0, 0, 0, 0, time.UTC)

func series(prices ...float64) []domain.PricePoint {
	out := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = domain.PricePoint{Date: base.AddDate(0, 0, i), Price: p}
	}
	return out
}

func TestPriceSeriesStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceSeriesStore(conn)
	ctx := context.Background()

	in := series(10, 12.5, 9.75, 30)
	// Reverse to check ordering on read
	rev := []domain.PricePoint{in[3], in[2], in[1], in[0]}
	require.NoError(t, store.InsertBulk(ctx, "NVDA", rev))

	got, err := store.GetSeries(ctx, "NVDA")
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := range in {
		assert.True(t, in[i].Date.Equal(got[i].Date), "date %d", i)
		assert.Equal(t, in[i].Price, got[i].Price)
	}
}

func TestPriceSeriesStore_GetSeriesNotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceSeriesStore(conn)

	_, err := store.GetSeries(context.Background(), "MISSING")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPriceSeriesStore_Duplicates(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceSeriesStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, "AMD", series(1, 2, 3)))

	// Overlaps the existing second day
	overlap := []domain.PricePoint{{Date: base.AddDate(0, 0, 1), Price: 7}}
	assert.ErrorIs(t, store.InsertBulk(ctx, "AMD", overlap), storage.ErrDuplicateKey)

	// Intra-batch duplicate
	dup := []domain.PricePoint{
		{Date: base.AddDate(0, 0, 10), Price: 1},
		{Date: base.AddDate(0, 0, 10), Price: 2},
	}
	assert.ErrorIs(t, store.InsertBulk(ctx, "AMD", dup), storage.ErrDuplicateKey)

	// Same dates on another ticker are fine
	require.NoError(t, store.InsertBulk(ctx, "INTC", series(1, 2, 3)))

	got, err := store.GetSeries(ctx, "AMD")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestPriceSeriesStore_ListTickers(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceSeriesStore(conn)
	ctx := context.Background()

	for _, ticker := range []string{"TSLA", "AAPL", "MSFT"} {
		require.NoError(t, store.InsertBulk(ctx, ticker, series(1, 2)))
	}

	got, err := store.ListTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, got)
}
