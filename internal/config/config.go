// Package config loads the bagger-lab configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Source backends for price series.
const (
	SourceCSV        = "csv"
	SourceClickHouse = "clickhouse"
)

// Sink backends for results.
const (
	SinkMemory   = "memory"
	SinkPostgres = "postgres"
	SinkSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Source struct {
		Kind          string `yaml:"kind"`
		DataDir       string `yaml:"data_dir"`
		ClickHouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"source"`
	Sink struct {
		Kind        string `yaml:"kind"`
		PostgresDSN string `yaml:"postgres_dsn"`
		SQLitePath  string `yaml:"sqlite_path"`
	} `yaml:"sink"`
	Analysis struct {
		MinDays          int  `yaml:"min_days"`
		Workers          int  `yaml:"workers"`
		ProgressInterval int  `yaml:"progress_interval"`
		Replace          bool `yaml:"replace"` // overwrite stored results on rerun
	} `yaml:"analysis"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Schedule string `yaml:"schedule"` // optional cron spec with seconds field
	Log      struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Load reads config from a YAML file (a missing file is not an error),
// then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BAGGER_DATA_DIR"); v != "" {
		c.Source.DataDir = v
	}
	if v := os.Getenv("BAGGER_CLICKHOUSE_DSN"); v != "" {
		c.Source.ClickHouseDSN = v
	}
	if v := os.Getenv("BAGGER_POSTGRES_DSN"); v != "" {
		c.Sink.PostgresDSN = v
	}
	if v := os.Getenv("BAGGER_SQLITE_PATH"); v != "" {
		c.Sink.SQLitePath = v
	}
	if v := os.Getenv("BAGGER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BAGGER_MIN_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BAGGER_MIN_DAYS: %w", err)
		}
		c.Analysis.MinDays = n
	}
	if v := os.Getenv("BAGGER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BAGGER_WORKERS: %w", err)
		}
		c.Analysis.Workers = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Source.Kind == "" {
		if c.Source.ClickHouseDSN != "" && c.Source.DataDir == "" {
			c.Source.Kind = SourceClickHouse
		} else {
			c.Source.Kind = SourceCSV
		}
	}
	if c.Source.DataDir == "" {
		c.Source.DataDir = "data/prices"
	}
	if c.Sink.Kind == "" {
		switch {
		case c.Sink.PostgresDSN != "":
			c.Sink.Kind = SinkPostgres
		case c.Sink.SQLitePath != "":
			c.Sink.Kind = SinkSQLite
		default:
			c.Sink.Kind = SinkMemory
		}
	}
	if c.Analysis.MinDays == 0 {
		c.Analysis.MinDays = 252
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 4
	}
	if c.Analysis.ProgressInterval == 0 {
		c.Analysis.ProgressInterval = 100
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "reports"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the selected backends are configured and numbers are sane.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceCSV:
		if c.Source.DataDir == "" {
			return fmt.Errorf("source.data_dir is required for csv source")
		}
	case SourceClickHouse:
		if c.Source.ClickHouseDSN == "" {
			return fmt.Errorf("source.clickhouse_dsn is required for clickhouse source")
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}

	switch c.Sink.Kind {
	case SinkMemory:
	case SinkPostgres:
		if c.Sink.PostgresDSN == "" {
			return fmt.Errorf("sink.postgres_dsn is required for postgres sink")
		}
	case SinkSQLite:
		if c.Sink.SQLitePath == "" {
			return fmt.Errorf("sink.sqlite_path is required for sqlite sink")
		}
	default:
		return fmt.Errorf("unknown sink.kind %q", c.Sink.Kind)
	}

	if c.Analysis.MinDays < 1 {
		return fmt.Errorf("analysis.min_days must be positive")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be positive")
	}
	if c.Analysis.ProgressInterval < 1 {
		return fmt.Errorf("analysis.progress_interval must be positive")
	}
	if c.Schedule != "" {
		if _, err := ParseSchedule(c.Schedule); err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
	}
	return nil
}

// ParseSchedule parses a six-field cron spec (seconds first) or a
// descriptor such as "@daily".
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(spec)
}
