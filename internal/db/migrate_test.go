package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM glpi_entities`).Scan(&n))
	assert.Equal(t, 1, n, "root entity is inserted once")
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"glpi_entities", "glpi_taskcategories", "glpi_locations", "glpi_computers",
		"glpi_printers", "glpi_monitors", "glpi_computermodels", "glpi_documenttypes",
		"glpi_usertitles", "glpi_budgettypes", "glpi_netpoints", "glpi_networkports",
		"glpi_computers_items", "glpi_users", "glpi_profiles", "glpi_profilerights",
		"glpi_profiles_users", "glpi_contacts", "glpi_suppliers", "glpi_budgets",
		"glpi_dropdowntranslations",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_entities_parent",
		"idx_locations_parent",
		"idx_taskcategories_parent",
		"idx_computers_items_item",
		"idx_translations_lookup",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_RootEntity(t *testing.T) {
	db := openTestDB(t)

	var name, completename string
	var level int
	err := db.QueryRow(`SELECT name, completename, level FROM glpi_entities WHERE id = 0`).
		Scan(&name, &completename, &level)
	require.NoError(t, err)
	assert.Equal(t, RootEntityName, name)
	assert.Equal(t, RootEntityName, completename)
	assert.Equal(t, 1, level)
}

func TestDialect(t *testing.T) {
	assert.Equal(t, SQLite, DialectFor("dropdown.db"))
	assert.Equal(t, SQLite, DialectFor(":memory:"))
	assert.Equal(t, Postgres, DialectFor("postgres://u:p@localhost/glpi"))
	assert.Equal(t, Postgres, DialectFor("host=localhost dbname=glpi sslmode=disable"))

	q := "SELECT id FROM t WHERE a = ? AND b IN (?, ?)"
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT id FROM t WHERE a = $1 AND b IN ($2, $3)", Postgres.Rebind(q))

	assert.Equal(t, "LIKE", SQLite.Like())
	assert.Equal(t, "NOT ILIKE", Postgres.NotLike())
	assert.Equal(t, "CAST(id AS TEXT)", SQLite.CastText("id"))
	assert.Equal(t, "id::text", Postgres.CastText("id"))
}
