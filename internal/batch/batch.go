// Package batch runs the bagger engine over many instruments.
// It coordinates: load series → analyze → persist, one ticker per task,
// and turns every per-ticker failure into a skip with a reason.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bagger-lab/internal/bagger"
	"bagger-lab/internal/domain"
	"bagger-lab/internal/observability"
	"bagger-lab/internal/storage"
)

// Reason says why a ticker was skipped.
type Reason string

const (
	ReasonMissingSeries      Reason = "missing_series"
	ReasonInsufficientData   Reason = "insufficient_history"
	ReasonInvalidStartPrice  Reason = "invalid_start_price"
	ReasonInvalidSeries      Reason = "invalid_series"
	ReasonInvariantViolation Reason = "invariant_violation"
	ReasonLoadError          Reason = "load_error"
	ReasonSinkError          Reason = "sink_error"
)

// Skip records a ticker that produced no result.
type Skip struct {
	Ticker string
	Reason Reason
	Err    error
}

// RunResult contains results from one batch run.
type RunResult struct {
	Total     int // tickers requested
	Processed int // tickers that finished, successfully or not
	Succeeded int
	Skipped   []Skip           // sorted by ticker
	Results   []*domain.Result // sorted by ticker
	Cancelled bool
	Duration  time.Duration
}

// SkipCounts returns the number of skips per reason.
func (r *RunResult) SkipCounts() map[Reason]int {
	counts := make(map[Reason]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}

// StateCounts returns the number of results per current state.
func (r *RunResult) StateCounts() map[domain.BaggerState]int {
	counts := make(map[domain.BaggerState]int)
	for _, res := range r.Results {
		counts[res.CurrentState]++
	}
	return counts
}

// SuccessRate returns Succeeded / Processed, or 0 when nothing was processed.
func (r *RunResult) SuccessRate() float64 {
	if r.Processed == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Processed)
}

// Options for creating a Driver.
type Options struct {
	Source storage.PriceSeriesStore // required
	Sink   storage.ResultStore      // optional; nil keeps results in memory only

	// Replace deletes a ticker's stored result before inserting the new one,
	// so repeated runs refresh the sink instead of failing with duplicates.
	Replace bool

	MinDays          int // 0 means bagger.DefaultMinDays
	Workers          int // 0 means 1
	ProgressInterval int // log progress every N processed tickers; 0 disables

	Logger  zerolog.Logger
	Metrics *observability.Metrics // optional
}

// Driver fans tickers out over a bounded worker pool.
type Driver struct {
	source           storage.PriceSeriesStore
	sink             storage.ResultStore
	replace          bool
	engine           bagger.Options
	workers          int
	progressInterval int
	logger           zerolog.Logger
	metrics          *observability.Metrics
}

// New creates a new Driver.
func New(opts Options) *Driver {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Driver{
		source:           opts.Source,
		sink:             opts.Sink,
		replace:          opts.Replace,
		engine:           bagger.Options{MinDays: opts.MinDays},
		workers:          workers,
		progressInterval: opts.ProgressInterval,
		logger:           opts.Logger.With().Str("component", "batch").Logger(),
		metrics:          opts.Metrics,
	}
}

// Run analyzes tickers, or every ticker the source lists when tickers is
// empty. Per-ticker failures never fail the run; only listing does.
// Cancelling ctx stops dispatching new tickers; in-flight ones finish.
func (d *Driver) Run(ctx context.Context, tickers []string) (*RunResult, error) {
	start := time.Now()

	if len(tickers) == 0 {
		listed, err := d.source.ListTickers(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tickers: %w", err)
		}
		tickers = listed
	}
	tickers = dedupe(tickers)

	result := &RunResult{Total: len(tickers)}
	d.logger.Info().Int("tickers", len(tickers)).Int("workers", d.workers).Msg("batch started")

	var (
		mu        sync.Mutex
		processed atomic.Int64
		succeeded atomic.Int64
	)

	var g errgroup.Group
	g.SetLimit(d.workers)

	for _, ticker := range tickers {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			res, skip := d.process(ctx, ticker)

			mu.Lock()
			if skip != nil {
				result.Skipped = append(result.Skipped, *skip)
			} else {
				result.Results = append(result.Results, res)
			}
			mu.Unlock()

			if skip == nil {
				succeeded.Add(1)
			}
			n := processed.Add(1)
			if d.progressInterval > 0 && n%int64(d.progressInterval) == 0 {
				ok := succeeded.Load()
				d.logger.Info().
					Int64("processed", n).
					Int("total", len(tickers)).
					Int64("succeeded", ok).
					Int64("failed", n-ok).
					Float64("success_rate", float64(ok)/float64(n)).
					Msg("progress")
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Processed = int(processed.Load())
	result.Succeeded = int(succeeded.Load())
	result.Cancelled = ctx.Err() != nil
	result.Duration = time.Since(start)

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].Ticker < result.Results[j].Ticker
	})
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].Ticker < result.Skipped[j].Ticker
	})

	d.finish(result)
	return result, nil
}

// process runs one ticker. Exactly one of the return values is non-nil.
func (d *Driver) process(ctx context.Context, ticker string) (*domain.Result, *Skip) {
	logger := d.logger.With().Str("ticker", ticker).Logger()

	loadStart := time.Now()
	points, err := d.source.GetSeries(ctx, ticker)
	d.metrics.RecordStore("load", time.Since(loadStart), ignoreNotFound(err))
	if err != nil {
		reason := ReasonLoadError
		if errors.Is(err, storage.ErrNotFound) {
			reason = ReasonMissingSeries
		}
		return nil, d.skip(logger, ticker, reason, err, 0)
	}

	analyzeStart := time.Now()
	res, err := bagger.Analyze(ticker, points, d.engine)
	elapsed := time.Since(analyzeStart)
	if err != nil {
		return nil, d.skip(logger, ticker, analysisReason(err), err, elapsed)
	}

	if d.sink != nil {
		saveStart := time.Now()
		err := d.save(ctx, res)
		d.metrics.RecordStore("save", time.Since(saveStart), err)
		if err != nil {
			return nil, d.skip(logger, ticker, ReasonSinkError, err, elapsed)
		}
	}

	d.metrics.RecordTicker("", elapsed)
	logger.Debug().
		Str("state", res.CurrentState.String()).
		Float64("max_multiple", res.MaxReturnMultiple).
		Int("days", res.TotalDays).
		Msg("analyzed")
	return res, nil
}

func (d *Driver) save(ctx context.Context, res *domain.Result) error {
	if d.replace {
		if err := ignoreNotFound(d.sink.Delete(ctx, res.Ticker)); err != nil {
			return fmt.Errorf("delete previous result: %w", err)
		}
	}
	return d.sink.Insert(ctx, res)
}

func (d *Driver) skip(logger zerolog.Logger, ticker string, reason Reason, err error, elapsed time.Duration) *Skip {
	d.metrics.RecordTicker(string(reason), elapsed)

	switch reason {
	case ReasonInvariantViolation:
		logger.Error().Err(err).Str("reason", string(reason)).Msg("engine invariant violated")
	case ReasonLoadError, ReasonSinkError:
		logger.Warn().Err(err).Str("reason", string(reason)).Msg("skipped")
	default:
		logger.Debug().Err(err).Str("reason", string(reason)).Msg("skipped")
	}

	return &Skip{Ticker: ticker, Reason: reason, Err: err}
}

func (d *Driver) finish(result *RunResult) {
	status := "ok"
	if result.Cancelled {
		status = "cancelled"
	}

	states := make(map[string]int)
	for state, n := range result.StateCounts() {
		states[state.String()] = n
	}
	d.metrics.RecordBatch(status, result.Duration, states, time.Now())

	event := d.logger.Info()
	if result.Cancelled {
		event = d.logger.Warn()
	}
	dict := zerolog.Dict()
	for reason, n := range result.SkipCounts() {
		dict = dict.Int(string(reason), n)
	}
	event.
		Int("total", result.Total).
		Int("processed", result.Processed).
		Int("succeeded", result.Succeeded).
		Int("skipped", len(result.Skipped)).
		Dict("skip_reasons", dict).
		Dur("duration", result.Duration).
		Bool("cancelled", result.Cancelled).
		Msg("batch finished")
}

// analysisReason maps engine errors to skip reasons.
func analysisReason(err error) Reason {
	switch {
	case errors.Is(err, bagger.ErrInsufficientHistory):
		return ReasonInsufficientData
	case errors.Is(err, bagger.ErrInvalidStartPrice):
		return ReasonInvalidStartPrice
	case errors.Is(err, bagger.ErrInvalidSeries):
		return ReasonInvalidSeries
	default:
		return ReasonInvariantViolation
	}
}

// ignoreNotFound treats ErrNotFound as success.
func ignoreNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func dedupe(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
