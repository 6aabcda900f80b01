package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelagency/pkg/apperr"
	"travelagency/pkg/config"
	"travelagency/pkg/retry"
)

// Open connects and pings the database. The ping is retried under policy so
// a sleeping free-tier database has time to wake up.
func Open(ctx context.Context, cfg config.Config, policy retry.Policy) (*pgxpool.Pool, error) {
	connString := runtimeConnString(cfg)

	// Poolers (PgBouncer) do not support prepared statements.
	// Their DSN typically includes `pgbouncer=true`.
	pcfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	if strings.Contains(strings.ToLower(connString), "pgbouncer=true") {
		pcfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		pcfg.ConnConfig.StatementCacheCapacity = 0
		pcfg.ConnConfig.DescriptionCacheCapacity = 0
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	err = retry.Do(ctx, policy, "db.ping", func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			if retry.IsTransient(err) {
				return &apperr.TransientNetworkError{Op: "db.ping", Err: err}
			}
			return err
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// TxStarter is satisfied by *pgxpool.Pool and by test doubles.
type TxStarter interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is what a handler needs from the pool: transactions plus one-off
// writes outside them.
type Store interface {
	TxStarter
	Execer
}

func WithTx(ctx context.Context, pool TxStarter, fn func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// NotFound maps pgx.ErrNoRows to a typed not-found error and leaves other
// errors untouched.
func NotFound(err error, kind, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(kind, id)
	}
	return err
}

func runtimeConnString(cfg config.Config) string {
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		return cfg.DatabaseURL
	}
	return dsn(cfg.DB)
}

func migrationConnString(cfg config.Config) string {
	if strings.TrimSpace(cfg.DirectURL) != "" {
		return cfg.DirectURL
	}
	// Poolers break migrations; DIRECT_URL should be set for hosted databases.
	return runtimeConnString(cfg)
}

func dsn(cfg config.DBConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, sslmode,
	)
}
