package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bagger-lab/internal/config"
	"bagger-lab/internal/ingestion"
	"bagger-lab/internal/logging"
	chstore "bagger-lab/internal/storage/clickhouse"
	"bagger-lab/internal/storage/csvfile"
	"bagger-lab/internal/storage/migrations"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "bagger.yaml", "Path to YAML config file (optional)")
	dataDir := flag.String("data-dir", "", "Partitioned CSV directory to read (code=<TICKER>/data.csv)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string to load into")
	tickers := flag.String("tickers", "", "Comma-separated tickers (default: all tickers in data-dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Source.DataDir = *dataDir
	}
	if *clickhouseDSN != "" {
		cfg.Source.ClickHouseDSN = *clickhouseDSN
	}
	if cfg.Source.ClickHouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --clickhouse-dsn is required")
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Source.ClickHouseDSN)
	if err != nil {
		logger.Error().Err(err).Msg("clickhouse migrations failed")
		os.Exit(1)
	}
	defer conn.Close()

	loader := ingestion.NewLoader(ingestion.LoaderOptions{
		Source: csvfile.NewStore(cfg.Source.DataDir),
		Target: chstore.NewPriceSeriesStore(conn),
		Logger: logger,
	})

	var list []string
	for _, t := range strings.Split(*tickers, ",") {
		if t = strings.TrimSpace(t); t != "" {
			list = append(list, t)
		}
	}

	res, err := loader.Load(ctx, list)
	if err != nil {
		logger.Error().Err(err).Msg("ingest failed")
		os.Exit(1)
	}

	fmt.Printf("Loaded %d tickers (%d points) in %s\n", res.TickersLoaded, res.PointsLoaded, res.Duration)
	fmt.Printf("  already present: %d, missing: %d, errors: %d\n", res.DuplicatesSkipped, res.MissingSkipped, res.Errors)
	if res.Errors > 0 {
		os.Exit(1)
	}
}
