package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"bagger-lab/internal/backend"
	"bagger-lab/internal/config"
	"bagger-lab/internal/logging"
	"bagger-lab/internal/reporting"
	"bagger-lab/internal/storage"
)

// Output formats
const (
	formatMarkdown = "markdown"
	formatCSV      = "csv"
)

type options struct {
	ticker string
	format string
	topN   int
	output string
}

func main() {
	// Parse flags
	configPath := flag.String("config", "bagger.yaml", "Path to YAML config file (optional)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string of the result store")
	sqlitePath := flag.String("sqlite-path", "", "SQLite file of the result store")
	ticker := flag.String("ticker", "", "Render the journey of one ticker instead of the overview")
	format := flag.String("format", formatMarkdown, "Overview format: markdown or csv")
	topN := flag.Int("top", reporting.DefaultTopN, "Length of the ranking tables")
	output := flag.String("output", "", "Write to this file instead of stdout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *postgresDSN != "" {
		cfg.Sink.Kind, cfg.Sink.PostgresDSN = config.SinkPostgres, *postgresDSN
	}
	if *sqlitePath != "" {
		cfg.Sink.Kind, cfg.Sink.SQLitePath = config.SinkSQLite, *sqlitePath
	}
	if cfg.Sink.Kind == config.SinkMemory {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn or --sqlite-path is required")
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	opts := options{ticker: *ticker, format: *format, topN: *topN, output: *output}
	if err := run(context.Background(), cfg, opts, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logger zerolog.Logger) error {
	store, closeStore, err := backend.OpenSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	out, err := render(ctx, store, opts)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	_, err = io.WriteString(w, out)
	return err
}

// render produces the journey for opts.ticker, or the overview in opts.format.
func render(ctx context.Context, store storage.ResultStore, opts options) (string, error) {
	gen := reporting.NewGenerator(store).WithTopN(opts.topN)

	if opts.ticker != "" {
		out, err := gen.Journey(ctx, strings.TrimSpace(opts.ticker))
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("ticker %s not found", opts.ticker)
		}
		return out, err
	}

	report, err := gen.Generate(ctx)
	if err != nil {
		return "", err
	}

	switch opts.format {
	case formatMarkdown:
		return reporting.RenderMarkdown(report), nil
	case formatCSV:
		return reporting.RenderCSV(report.Rows), nil
	}
	return "", fmt.Errorf("unknown format %q", opts.format)
}
