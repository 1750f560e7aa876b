package testutil

import (
	"context"
	"testing"

	"github.com/alexanderramin/dropdown/internal/db"
)

// NewTestDB opens a migrated in-memory SQLite database holding only the
// root entity. It is closed when the test ends.
func NewTestDB(t testing.TB) *db.DB {
	t.Helper()
	database, err := db.Open(context.Background(), ":memory:", 1)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})
	return database
}

// NewTestUoW returns a UnitOfWork on database that does not replay
// conflicting transactions, so failures surface on the first attempt.
func NewTestUoW(database *db.DB) *db.SQLUnitOfWork {
	uow := db.NewUnitOfWork(database)
	uow.Attempts = 1
	return uow
}
