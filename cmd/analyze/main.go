package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"bagger-lab/internal/backend"
	"bagger-lab/internal/batch"
	"bagger-lab/internal/config"
	"bagger-lab/internal/logging"
	"bagger-lab/internal/observability"
	"bagger-lab/internal/reporting"
	"bagger-lab/internal/storage"
)

const (
	resultsCSVFile = "bagger_results.csv"
	reportMDFile   = "BAGGER_REPORT.md"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "bagger.yaml", "Path to YAML config file (optional)")
	dataDir := flag.String("data-dir", "", "Partitioned CSV directory (code=<TICKER>/data.csv)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for the price source")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the result sink")
	sqlitePath := flag.String("sqlite-path", "", "SQLite file for the result sink")
	minDays := flag.Int("min-days", 0, "Minimum trading days per series")
	workers := flag.Int("workers", 0, "Number of concurrent workers")
	tickers := flag.String("tickers", "", "Comma-separated tickers (default: all tickers in the source)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV and Markdown reports")
	schedule := flag.String("schedule", "", "Cron spec with seconds field; rerun the batch until interrupted")
	metricsAddr := flag.String("metrics-addr", "", "Serve /metrics on this address (e.g. :9102)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	replace := flag.Bool("replace", false, "Overwrite results already stored in the sink")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Explicit flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.Source.Kind, cfg.Source.DataDir = config.SourceCSV, *dataDir
		case "clickhouse-dsn":
			cfg.Source.Kind, cfg.Source.ClickHouseDSN = config.SourceClickHouse, *clickhouseDSN
		case "postgres-dsn":
			cfg.Sink.Kind, cfg.Sink.PostgresDSN = config.SinkPostgres, *postgresDSN
		case "sqlite-path":
			cfg.Sink.Kind, cfg.Sink.SQLitePath = config.SinkSQLite, *sqlitePath
		case "min-days":
			cfg.Analysis.MinDays = *minDays
		case "workers":
			cfg.Analysis.Workers = *workers
		case "output-dir":
			cfg.Output.Dir = *outputDir
		case "schedule":
			cfg.Schedule = *schedule
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "log-level":
			cfg.Log.Level = *logLevel
		case "replace":
			cfg.Analysis.Replace = *replace
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, splitTickers(*tickers), logger); err != nil {
		logger.Error().Err(err).Msg("analyze failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, tickers []string, logger zerolog.Logger) error {
	source, closeSource, err := backend.OpenSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	sink, closeSink, err := backend.OpenSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		metrics = observability.NewMetrics(observability.DefaultNamespace, nil)
		go serveMetrics(ctx, cfg.MetricsAddr, logging.Component(logger, "http"))
	}

	driver := batch.New(batch.Options{
		Source:           source,
		Sink:             sink,
		Replace:          cfg.Analysis.Replace || cfg.Schedule != "",
		MinDays:          cfg.Analysis.MinDays,
		Workers:          cfg.Analysis.Workers,
		ProgressInterval: cfg.Analysis.ProgressInterval,
		Logger:           logger,
		Metrics:          metrics,
	})

	job := func() error {
		return runOnce(ctx, driver, sink, tickers, cfg.Output.Dir, logger)
	}

	if cfg.Schedule == "" {
		return job()
	}
	return runScheduled(ctx, cfg.Schedule, job, logging.Component(logger, "scheduler"))
}

// runOnce runs one batch and writes the reports for the sink contents.
func runOnce(ctx context.Context, driver *batch.Driver, sink storage.ResultStore, tickers []string, outputDir string, logger zerolog.Logger) error {
	res, err := driver.Run(ctx, tickers)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	// Reports are written even for a cancelled run; they cover what was stored.
	report, err := reporting.NewGenerator(sink).Generate(context.WithoutCancel(ctx))
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if err := writeReports(outputDir, report); err != nil {
		return err
	}
	logger.Info().Str("dir", outputDir).Int("rows", len(report.Rows)).Msg("reports written")

	printSummary(res, report, outputDir)
	return nil
}

func runScheduled(ctx context.Context, spec string, job func() error, logger zerolog.Logger) error {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
	)
	if _, err := c.AddFunc(spec, func() {
		if err := job(); err != nil {
			logger.Error().Err(err).Msg("scheduled batch failed")
		}
	}); err != nil {
		return fmt.Errorf("register schedule %q: %w", spec, err)
	}

	// First run immediately, then on schedule.
	if err := job(); err != nil {
		logger.Error().Err(err).Msg("initial batch failed")
	}

	c.Start()
	logger.Info().Str("schedule", spec).Msg("scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info().Msg("scheduler stopped")
	return nil
}

func writeReports(dir string, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, resultsCSVFile), []byte(reporting.RenderCSV(report.Rows)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", resultsCSVFile, err)
	}
	if err := os.WriteFile(filepath.Join(dir, reportMDFile), []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", reportMDFile, err)
	}
	return nil
}

func printSummary(res *batch.RunResult, report *reporting.Report, outputDir string) {
	fmt.Printf("Analyzed %d of %d tickers in %s (%d skipped)\n",
		res.Succeeded, res.Total, res.Duration.Round(time.Millisecond), len(res.Skipped))
	for reason, n := range res.SkipCounts() {
		fmt.Printf("  - %s: %d\n", reason, n)
	}
	if res.Cancelled {
		fmt.Println("Run was cancelled before all tickers were processed")
	}

	fmt.Println("Current status distribution:")
	for _, sc := range report.Summary.StateDistribution {
		fmt.Printf("  %s: %d (%.1f%%)\n", sc.State, sc.Count, sc.Pct)
	}

	fmt.Println("Reports generated:")
	fmt.Printf("  - %s\n", filepath.Join(outputDir, resultsCSVFile))
	fmt.Printf("  - %s\n", filepath.Join(outputDir, reportMDFile))
}

func serveMetrics(ctx context.Context, addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("metrics server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server failed")
	}
}

func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
