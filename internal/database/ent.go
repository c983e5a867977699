package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/gurkanbulca/taskapproval/internal/config"
)

// DB bundles the sqlx handle used for query execution with the ent driver used for
// schema migration. Both share the same *sql.DB pool.
type DB struct {
	*sqlx.DB

	// Dialect is the ent dialect name (dialect.Postgres or dialect.SQLite)
	Dialect string
	Driver  *entsql.Driver
}

// Open connects to the configured database. The memory driver has no database and is
// rejected here; callers pick the in-memory repositories instead.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return wrap(ctx, db, dialect.Postgres, "postgres")
	case config.DriverSQLite:
		return OpenSQLite(ctx, SQLiteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("database driver %q has no sql backend", cfg.Driver)
	}
}

// OpenSQLite opens a modernc sqlite database from a full DSN.
func OpenSQLite(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(0)

	return wrap(ctx, db, dialect.SQLite, "sqlite3")
}

// SQLiteDSN builds a file DSN with foreign keys enabled (required by the ent migrator)
// and a busy timeout so concurrent writers wait instead of failing.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", path)
}

func wrap(ctx context.Context, db *sql.DB, dialectName, sqlxName string) (*DB, error) {
	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("connected to database", "dialect", dialectName)

	return &DB{
		DB:      sqlx.NewDb(db, sqlxName),
		Dialect: dialectName,
		Driver:  entsql.OpenDB(dialectName, db),
	}, nil
}

// Ping reports whether the database answers within the context deadline.
func (d *DB) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}
