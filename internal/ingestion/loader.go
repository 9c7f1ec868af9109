// Package ingestion copies daily price series between stores, typically from
// a partitioned CSV export into ClickHouse.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bagger-lab/internal/storage"
)

// Loader copies series from Source to Target.
type Loader struct {
	source storage.PriceSeriesStore
	target storage.PriceSeriesStore
	logger zerolog.Logger
}

// LoaderOptions contains configuration for creating a Loader.
type LoaderOptions struct {
	Source storage.PriceSeriesStore
	Target storage.PriceSeriesStore
	Logger zerolog.Logger
}

// NewLoader creates a new Loader.
func NewLoader(opts LoaderOptions) *Loader {
	return &Loader{
		source: opts.Source,
		target: opts.Target,
		logger: opts.Logger.With().Str("component", "ingestion").Logger(),
	}
}

// LoadResult contains statistics from a load operation.
type LoadResult struct {
	TickersLoaded     int
	PointsLoaded      int
	DuplicatesSkipped int // tickers whose rows already exist in Target
	MissingSkipped    int // tickers absent from Source
	Errors            int
	Duration          time.Duration
}

// Load copies tickers, or every ticker in Source when tickers is empty.
// Per-ticker failures are counted and logged; only listing fails the load.
func (l *Loader) Load(ctx context.Context, tickers []string) (*LoadResult, error) {
	start := time.Now()

	if len(tickers) == 0 {
		listed, err := l.source.ListTickers(ctx)
		if err != nil {
			return nil, fmt.Errorf("list source tickers: %w", err)
		}
		tickers = listed
	}

	result := &LoadResult{}
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		n, err := l.loadOne(ctx, ticker)
		switch {
		case err == nil:
			result.TickersLoaded++
			result.PointsLoaded += n
		case errors.Is(err, storage.ErrDuplicateKey):
			result.DuplicatesSkipped++
			l.logger.Debug().Str("ticker", ticker).Msg("already loaded")
		case errors.Is(err, storage.ErrNotFound):
			result.MissingSkipped++
			l.logger.Debug().Str("ticker", ticker).Msg("missing in source")
		default:
			result.Errors++
			l.logger.Warn().Err(err).Str("ticker", ticker).Msg("load failed")
		}
	}

	result.Duration = time.Since(start)
	l.logger.Info().
		Int("tickers", result.TickersLoaded).
		Int("points", result.PointsLoaded).
		Int("duplicates", result.DuplicatesSkipped).
		Int("missing", result.MissingSkipped).
		Int("errors", result.Errors).
		Dur("duration", result.Duration).
		Msg("load finished")
	return result, nil
}

func (l *Loader) loadOne(ctx context.Context, ticker string) (int, error) {
	points, err := l.source.GetSeries(ctx, ticker)
	if err != nil {
		return 0, err
	}
	if err := l.target.InsertBulk(ctx, ticker, points); err != nil {
		return 0, err
	}
	return len(points), nil
}
