package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/lib/pq"
)

// UnitOfWork runs a callback inside one transaction. The callback receives
// a DBTX backed by the transaction; callers build tx-scoped repositories
// from it with Dialect.
type UnitOfWork interface {
	Dialect() Dialect
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLUnitOfWork implements UnitOfWork on a pool. A transaction that loses
// a write conflict is replayed from the start, up to Attempts times.
type SQLUnitOfWork struct {
	db       *DB
	Attempts uint
	Delay    time.Duration
}

// NewUnitOfWork creates a UnitOfWork backed by the given pool.
func NewUnitOfWork(db *DB) *SQLUnitOfWork {
	return &SQLUnitOfWork{db: db, Attempts: 3, Delay: 20 * time.Millisecond}
}

// Dialect returns the dialect of the pool transactions run against.
func (u *SQLUnitOfWork) Dialect() Dialect {
	return u.db.Dialect
}

func (u *SQLUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	attempts := u.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		func() error { return u.once(ctx, fn) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(u.Delay),
		retry.RetryIf(IsConflict),
		retry.LastErrorOnly(true),
	)
}

func (u *SQLUnitOfWork) once(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// JoinTx returns a UnitOfWork whose transactions run inside tx. Services
// built on it commit or roll back with the caller's transaction.
func JoinTx(tx DBTX, d Dialect) UnitOfWork {
	return joinedTx{tx: tx, dialect: d}
}

type joinedTx struct {
	tx      DBTX
	dialect Dialect
}

func (j joinedTx) Dialect() Dialect {
	return j.dialect
}

func (j joinedTx) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return fn(ctx, j.tx)
}

// IsConflict reports whether err is a serialization failure or deadlock
// on PostgreSQL, or a busy database on SQLite. Such transactions can be
// replayed.
func IsConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return true
		}
		return false
	}
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
