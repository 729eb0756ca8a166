package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
	"github.com/lueurxax/event-dedup/internal/platform/config"
	db "github.com/lueurxax/event-dedup/internal/storage"
	"github.com/lueurxax/event-dedup/internal/storage/sqlitestore"
)

var (
	_ Store = (*db.DB)(nil)
	_ Store = (*sqlitestore.Store)(nil)
)

// OpenStore connects to the configured driver and brings its schema up to date.
// The returned func releases the connection.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *zerolog.Logger) (Store, func(), error) {
	switch cfg.Driver {
	case config.StoreDriverPostgres:
		database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, db.PoolOptions{
			MaxConns:          cfg.MaxConnections,
			MinConns:          cfg.MinConnections,
			MaxConnIdleTime:   cfg.MaxConnIdleTime,
			MaxConnLifetime:   cfg.MaxConnLifetime,
			HealthCheckPeriod: cfg.HealthCheckPeriod,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}

		return database, database.Close, nil
	case config.StoreDriverSQLite:
		store, err := sqlitestore.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}

		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedDriver, cfg.Driver)
	}
}
