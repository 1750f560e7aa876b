package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/dropdown/internal/db"
)

// FailOnNthWriteUoW is a test UoW that fails the Nth write statement run
// within a transaction. This enables rollback tests by simulating failures
// at precise points in multi-insert operations.
//
// Writes are INSERT, UPDATE and DELETE statements, counted from 1 whether
// they go through ExecContext or QueryRowContext (INSERT ... RETURNING).
// Reads pass through untouched. Once the Nth write trips, the transaction
// is rolled back and WithinTx reports Err.
type FailOnNthWriteUoW struct {
	DB     *db.DB
	FailOn int32
	Err    error
}

// Dialect returns the dialect of the wrapped database.
func (u *FailOnNthWriteUoW) Dialect() db.Dialect {
	return u.DB.Dialect
}

func (u *FailOnNthWriteUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthWrite{DBTX: tx, failOn: u.FailOn, err: u.Err}
	fnErr := fn(ctx, wrapped)
	switch {
	case wrapped.hit.Load():
		_ = tx.Rollback()
		switch {
		case fnErr == nil:
			return u.err()
		case errors.Is(fnErr, u.err()):
			return fnErr
		}
		return fmt.Errorf("%w: %v", u.err(), fnErr)
	case fnErr != nil:
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

func (u *FailOnNthWriteUoW) err() error {
	if u.Err == nil {
		return errInjected
	}
	return u.Err
}

var errInjected = errors.New("injected write failure")

type failOnNthWrite struct {
	db.DBTX
	hit    atomic.Bool
	count  atomic.Int32
	failOn int32
	err    error
}

func isWrite(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(q, "INSERT") || strings.HasPrefix(q, "UPDATE") || strings.HasPrefix(q, "DELETE")
}

func (f *failOnNthWrite) tripped(query string) bool {
	if isWrite(query) && f.count.Add(1) == f.failOn {
		f.hit.Store(true)
		return true
	}
	return false
}

func (f *failOnNthWrite) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.tripped(query) {
		if f.err == nil {
			return nil, errInjected
		}
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// QueryRowContext cannot carry f.err in a *sql.Row, so a tripped write is
// replaced by a statement that fails on the driver side; WithinTx then
// reports f.err.
func (f *failOnNthWrite) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	if f.tripped(query) {
		return f.DBTX.QueryRowContext(ctx, "SELECT injected_failure FROM injected_failure")
	}
	return f.DBTX.QueryRowContext(ctx, query, args...)
}
