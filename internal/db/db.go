package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB is a connection pool bound to its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// OpenDB opens a SQLite database at the given path and runs migrations.
// If path is ":memory:", uses an in-memory database.
func OpenDB(path string) (*DB, error) {
	return Open(context.Background(), path, 1)
}

// Open connects to dsn, pinging up to retries times, then runs migrations.
// SQLite gets WAL mode and foreign keys; an in-memory SQLite database is
// pinned to a single connection so every query sees the same schema.
func Open(ctx context.Context, dsn string, retries uint) (*DB, error) {
	dialect := DialectFor(dsn)
	if dialect == SQLite && dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == SQLite && dsn == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	if retries == 0 {
		retries = 1
	}
	err = retry.Do(
		func() error { return sqlDB.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(retries),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if dialect == SQLite {
		if dsn != ":memory:" {
			if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
				sqlDB.Close()
				return nil, fmt.Errorf("setting WAL mode: %w", err)
			}
		}
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	database := &DB{DB: sqlDB, Dialect: dialect}
	if err := Migrate(ctx, database); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return database, nil
}
