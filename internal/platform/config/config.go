package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Dedup sweep strictness levels.
const (
	StrictnessStrict = "strict"
	StrictnessGraded = "graded"
)

type Config struct {
	AppEnv       string `env:"APP_ENV" envDefault:"local"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	HomeTimezone string `env:"HOME_TIMEZONE" envDefault:"America/New_York"`
	MetricsPort  int    `env:"METRICS_PORT" envDefault:"0"`
	SourcesFile  string `env:"SOURCES_FILE"`

	Store  StoreConfig
	Dedup  DedupConfig
	AI     AIConfig
	LLM    LLMConfig
	Filter FilterConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.Store.PostgresDSN) == "" {
			return fmt.Errorf("%w: POSTGRES_DSN is required for the postgres driver", apperrors.ErrInvalidInput)
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite driver", apperrors.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnsupportedDriver, c.Store.Driver)
	}

	switch c.Dedup.Strictness {
	case StrictnessStrict, StrictnessGraded:
	default:
		return fmt.Errorf("%w: DEDUP_STRICTNESS must be %q or %q, got %q", apperrors.ErrInvalidInput, StrictnessStrict, StrictnessGraded, c.Dedup.Strictness)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Store.DeleteBatchSize <= 0 {
		return fmt.Errorf("%w: DELETE_BATCH_SIZE must be positive", apperrors.ErrInvalidInput)
	}

	return nil
}

// Location resolves the catalog's home timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.HomeTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading HOME_TIMEZONE %q: %w", c.HomeTimezone, err)
	}

	return loc, nil
}
