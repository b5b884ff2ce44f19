package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/herdgen/genoload/internal/common"
)

// Dialect selects placeholder style for the backing store.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Rebind rewrites ?-style placeholders into the dialect's native form.
// Queries in this package are written with ? in argument order.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DB bundles the sql handle with its dialect for the repositories.
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
}

// Open creates a pgx pool, wraps it as database/sql for the repositories,
// and returns both. The pool is kept for health checks and graceful close.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, *pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, nil, common.NewAppError("DB_CONFIG", "parsing DSN", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "genoload"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, common.NewAppError("DB_CONNECT", "creating pool", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{SQL: db, Dialect: Postgres}, pool, nil
}

// OpenSQLite opens an in-process SQLite store (":memory:" for the -inmem
// mode) and applies the schema, so a single binary can run without Postgres.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dsn == "" {
		dsn = ":memory:"
	}
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.NewAppError("DB_CONNECT", "opening sqlite", err)
	}
	// The in-memory database lives per connection.
	sqldb.SetMaxOpenConns(1)
	db := &DB{SQL: sqldb, Dialect: SQLite}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	logger.Info("sqlite store ready", "dsn", dsn)
	return db, nil
}

// Close closes the database connections gracefully
func Close(db *DB, pool *pgxpool.Pool, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if pool != nil {
		pool.Close()
	}
	if db != nil && db.SQL != nil {
		if err := db.SQL.Close(); err != nil {
			logger.Error("failed to close sql handle", "error", err)
		}
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pool.Ping(ctx)
}
