// Package storage selects and opens the identifier history store.
package storage

import (
	"context"
	"fmt"
	"time"

	"idforge/internal/config"
	"idforge/internal/core/numerator"
	"idforge/internal/core/tx"
	"idforge/internal/infrastructure/storage/memory"
	"idforge/internal/infrastructure/storage/postgres"
	"idforge/internal/infrastructure/storage/postgres/history_repo"
	"idforge/internal/infrastructure/storage/sqlite"
	"idforge/pkg/logger"
)

// HistoryStore is what every driver provides.
type HistoryStore interface {
	numerator.History
	Ping(ctx context.Context) error
	Import(ctx context.Context, typeTag string, identifiers []string, createdAt time.Time) (int64, error)
}

// Store is an opened history store.
type Store struct {
	Driver  string
	History HistoryStore
	// TxManager is nil for drivers without transactions spanning several calls.
	TxManager tx.Manager

	close func()
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects the driver named in cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverSQLite:
		return openSQLite(cfg)
	case config.DriverMemory:
		logger.Warn(ctx, "using in-memory identifier history, issued identifiers are lost on restart")
		return &Store{Driver: cfg.Driver, History: memory.NewHistoryStore()}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DSN)
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ApplicationName != "" {
		poolCfg.ApplicationName = cfg.ApplicationName
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	txm := postgres.NewTxManager(pool)
	repo := history_repo.NewRepo(txm)

	if cfg.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate identifier history: %w", err)
		}
	}

	pool.LogStats(ctx)

	return &Store{
		Driver:    cfg.Driver,
		History:   pgHistory{Repo: repo, txm: txm},
		TxManager: txm,
		close:     pool.Close,
	}, nil
}

func openSQLite(cfg config.StorageConfig) (*Store, error) {
	var opts []sqlite.OpenOption
	if !cfg.Migrate {
		opts = append(opts, sqlite.WithoutMigrate())
	}

	db, err := sqlite.Open(cfg.Path, opts...)
	if err != nil {
		return nil, err
	}

	return &Store{
		Driver:  cfg.Driver,
		History: sqlite.NewHistoryRepo(db),
		close:   func() { _ = db.Close() },
	}, nil
}

// pgHistory adds the pool ping to the Postgres repo.
type pgHistory struct {
	*history_repo.Repo
	txm *postgres.TxManager
}

func (h pgHistory) Ping(ctx context.Context) error {
	return h.txm.Ping(ctx)
}
