package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/config"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
	"github.com/rogomes75/ROG-Report-V9/internal/repository/postgres"
	"github.com/rogomes75/ROG-Report-V9/internal/repository/sqlstore"
)

//go:embed schema.sql
var schema string

// Open connects to the configured backend, applies the schema and returns
// the repositories.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (repository.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := sqlstore.OpenSQLite(cfg.DBURL, cfg.Env == "dev")
		if err != nil {
			return repository.Store{}, err
		}
		log.Info().Str("driver", "sqlite").Msg("database ready")
		return sqlstore.New(db), nil
	case "postgres", "":
		pool, err := OpenPool(ctx, cfg)
		if err != nil {
			return repository.Store{}, err
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return repository.Store{}, err
		}
		log.Info().Str("driver", "postgres").Msg("database ready")
		return postgres.New(pool), nil
	}
	return repository.Store{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func OpenPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DBURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
