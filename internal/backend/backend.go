// Package backend opens the configured price source and result sink.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bagger-lab/internal/config"
	"bagger-lab/internal/storage"
	chstore "bagger-lab/internal/storage/clickhouse"
	"bagger-lab/internal/storage/csvfile"
	"bagger-lab/internal/storage/memory"
	"bagger-lab/internal/storage/migrations"
	pgstore "bagger-lab/internal/storage/postgres"
	"bagger-lab/internal/storage/sqlite"
)

// OpenSource returns the price series store selected by cfg.Source.Kind.
// The returned close function is never nil.
func OpenSource(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.PriceSeriesStore, func(), error) {
	switch cfg.Source.Kind {
	case config.SourceCSV:
		logger.Info().Str("source", cfg.Source.Kind).Str("dir", cfg.Source.DataDir).Msg("price source opened")
		return csvfile.NewStore(cfg.Source.DataDir), func() {}, nil

	case config.SourceClickHouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Source.ClickHouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open clickhouse source: %w", err)
		}
		logger.Info().Str("source", cfg.Source.Kind).Msg("price source opened")
		return chstore.NewPriceSeriesStore(conn), func() { conn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}

// OpenSink returns the result store selected by cfg.Sink.Kind, creating its
// schema when missing. The returned close function is never nil.
func OpenSink(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.ResultStore, func(), error) {
	switch cfg.Sink.Kind {
	case config.SinkMemory:
		logger.Info().Str("sink", cfg.Sink.Kind).Msg("result sink opened")
		return memory.NewResultStore(), func() {}, nil

	case config.SinkPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Sink.PostgresDSN, int32(cfg.Analysis.Workers)+1)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres sink: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres sink: %w", err)
		}
		logger.Info().Str("sink", cfg.Sink.Kind).Msg("result sink opened")
		return pgstore.NewResultStore(pool), pool.Close, nil

	case config.SinkSQLite:
		store, err := sqlite.Open(cfg.Sink.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite sink: %w", err)
		}
		logger.Info().Str("sink", cfg.Sink.Kind).Str("path", cfg.Sink.SQLitePath).Msg("result sink opened")
		return store, func() { store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown sink kind %q", cfg.Sink.Kind)
}
