package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUoW(t *testing.T) (*db.DB, *db.SQLUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	uow := db.NewUnitOfWork(database)
	uow.Delay = 0
	return database, uow
}

func insertEntity(ctx context.Context, tx db.DBTX, name string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO glpi_entities (name, entities_id, completename, level) VALUES (?, 0, ?, 2)`,
		name, db.RootEntityName+" > "+name)
	return err
}

func countEntities(t *testing.T, database *db.DB, name string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM glpi_entities WHERE name = ?`, name).Scan(&n))
	return n
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertEntity(ctx, tx, "committed")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countEntities(t, database, "committed"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertEntity(ctx, tx, "rolled back"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")
	assert.Zero(t, countEntities(t, database, "rolled back"))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertEntity(ctx, tx, "panicked")
			panic("boom")
		})
	})
	assert.Zero(t, countEntities(t, database, "panicked"))
}

func TestWithinTx_ReplaysConflicts(t *testing.T) {
	database, uow := openUoW(t)

	calls := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		calls++
		if err := insertEntity(ctx, tx, "replayed"); err != nil {
			return err
		}
		if calls == 1 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, countEntities(t, database, "replayed"))
}

func TestWithinTx_GivesUpAfterAttempts(t *testing.T) {
	_, uow := openUoW(t)
	uow.Attempts = 2

	calls := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		calls++
		return &pq.Error{Code: "40P01"}
	})
	require.Error(t, err)
	assert.True(t, db.IsConflict(err))
	assert.Equal(t, 2, calls)
}

func TestWithinTx_DoesNotReplayOtherErrors(t *testing.T) {
	_, uow := openUoW(t)

	calls := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		calls++
		return errors.New("constraint failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsConflict(t *testing.T) {
	assert.False(t, db.IsConflict(nil))
	assert.True(t, db.IsConflict(fmt.Errorf("wrapped: %w", &pq.Error{Code: "40001"})))
	assert.False(t, db.IsConflict(&pq.Error{Code: "23505"}))
	assert.True(t, db.IsConflict(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, db.IsConflict(errors.New("no such table")))
}

func TestWithinTx_DialectFollowsPool(t *testing.T) {
	_, uow := openUoW(t)
	assert.Equal(t, db.SQLite, uow.Dialect())
}

func TestJoinTx_SharesOuterTransaction(t *testing.T) {
	database, uow := openUoW(t)
	boom := errors.New("boom")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		joined := db.JoinTx(tx, uow.Dialect())
		assert.Equal(t, uow.Dialect(), joined.Dialect())
		err := joined.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return insertEntity(ctx, tx, "joined")
		})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, countEntities(t, database, "joined"))
}
