package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all connections in the
// pool, which is required to test real concurrent access with WAL mode.
func newConcurrentTestDB(t *testing.T) *db.DB {
	t.Helper()
	dir := t.TempDir()
	database, err := db.OpenDB(filepath.Join(dir, "concurrent_test.db"))
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// TestConcurrentAccess_SearchDuringWrite verifies that listings neither block
// nor observe half-written rows while locations are being created.
func TestConcurrentAccess_SearchDuringWrite(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	loc := itemType(t, "Location")

	parent := testutil.NewTestItem("Campus")
	require.NoError(t, repo.Create(ctx, loc, parent))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			it := testutil.NewTestItem(fmt.Sprintf("Room %02d", i), testutil.WithParent(parent.ID))
			if err := repo.Create(ctx, loc, it); err != nil {
				t.Errorf("writer: create location %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				items, err := repo.Search(ctx, repository.ItemQuery{Type: loc, Search: "Campus"})
				if err != nil {
					t.Errorf("reader %d: search: %v", reader, err)
					return
				}
				for _, it := range items {
					if it.CompleteName == "" || it.Level == 0 {
						t.Errorf("reader %d: incomplete row %+v", reader, it)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	n, err := repo.Count(ctx, repository.ItemQuery{Type: loc})
	require.NoError(t, err)
	assert.Equal(t, 21, n)
}

// TestConcurrentAccess_EntityTree hammers the cache with readers while it
// is repeatedly invalidated.
func TestConcurrentAccess_EntityTree(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	branch := testutil.CreateEntity(t, database, "Branch", domain.RootEntityID)
	tree := repository.NewEntityTree(repository.NewSQLEntityRepo(database, database.Dialect))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			tree.Invalidate()
		}
	}()
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				scope, err := tree.Scope(ctx, []int64{branch})
				if err != nil {
					t.Errorf("reader %d: scope: %v", reader, err)
					return
				}
				if len(scope.Ancestors) != 1 || scope.Ancestors[0] != domain.RootEntityID {
					t.Errorf("reader %d: unexpected ancestors %v", reader, scope.Ancestors)
				}
			}
		}(r)
	}
	wg.Wait()
}
