package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

func writePartition(t *testing.T, root, ticker, content string) {
	t.Helper()
	dir := filepath.Join(root, "code="+ticker)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte(content), 0o644))
}

func mustDate(t *testing.T, s string) domain.PricePoint {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return domain.PricePoint{Date: d}
}

func TestStore_GetSeries_FiltersSortsDedupes(t *testing.T) {
	root := t.TempDir()
	writePartition(t, root, "ACME", `date,open,adjusted_close
2020-01-03,1,3.5
2020-01-01,1,1.25
2020-01-02,1,
2020-01-04,1,0
2020-01-05,1,-2
2020-01-06,1,NaN
2020-01-03,1,99
2020-01-07,1,null
2020-01-08,1,4
`)

	got, err := NewStore(root).GetSeries(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "2020-01-01", got[0].Date.Format(domain.DateLayout))
	assert.Equal(t, 1.25, got[0].Price)
	assert.Equal(t, "2020-01-03", got[1].Date.Format(domain.DateLayout))
	assert.Equal(t, 3.5, got[1].Price, "first row wins on repeated date")
	assert.Equal(t, "2020-01-08", got[2].Date.Format(domain.DateLayout))
	assert.Equal(t, 4.0, got[2].Price)
}

func TestStore_GetSeries_NotFound(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	_, err := store.GetSeries(context.Background(), "NOPE")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	writePartition(t, root, "EMPTY", "date,adjusted_close\n2020-01-01,\n")
	_, err = store.GetSeries(context.Background(), "EMPTY")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_GetSeries_BadHeader(t *testing.T) {
	root := t.TempDir()
	writePartition(t, root, "BAD", "day,close\n2020-01-01,1\n")

	_, err := NewStore(root).GetSeries(context.Background(), "BAD")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestStore_GetSeries_BadDate(t *testing.T) {
	root := t.TempDir()
	writePartition(t, root, "BAD", "date,adjusted_close\n01/02/2020,1\n")

	_, err := NewStore(root).GetSeries(context.Background(), "BAD")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestStore_ListTickers(t *testing.T) {
	root := t.TempDir()
	writePartition(t, root, "MSFT", "date,adjusted_close\n")
	writePartition(t, root, "AAPL", "date,adjusted_close\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "code=NODATA"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "other"), 0o755))

	got, err := NewStore(root).ListTickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}

func TestStore_ListTickers_MissingRoot(t *testing.T) {
	got, err := NewStore(filepath.Join(t.TempDir(), "absent")).ListTickers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_InsertBulkThenRead(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	p1 := mustDate(t, "2021-06-02")
	p1.Price = 2.5
	p0 := mustDate(t, "2021-06-01")
	p0.Price = 0.1

	require.NoError(t, store.InsertBulk(ctx, "XYZ", []domain.PricePoint{p1, p0}))

	got, err := store.GetSeries(ctx, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, []domain.PricePoint{p0, p1}, got)

	tickers, err := store.ListTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"XYZ"}, tickers)

	assert.ErrorIs(t, store.InsertBulk(ctx, "XYZ", []domain.PricePoint{p0}), storage.ErrDuplicateKey)
}

func TestStore_InsertBulk_Rejects(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()
	p := mustDate(t, "2021-06-01")
	p.Price = 1

	assert.ErrorIs(t, store.InsertBulk(ctx, "", []domain.PricePoint{p}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.InsertBulk(ctx, "../x", []domain.PricePoint{p}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.InsertBulk(ctx, "DUP", []domain.PricePoint{p, p}), storage.ErrDuplicateKey)
}

func TestStore_GetSeries_RejectsPathTickers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "outside"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "outside", "data.csv"),
		[]byte("date,adjusted_close\n2020-01-01,1\n"), 0o644))
	store := NewStore(root)
	ctx := context.Background()

	// "code=../../outside" resolves to root/outside without the check.
	_, err := store.GetSeries(ctx, "../../outside")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.GetSeries(ctx, `..\x`)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
