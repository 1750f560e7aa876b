package db

import (
	"context"
	"fmt"
	"strings"
)

// RootEntityName is the name given to entity 0 on a fresh schema.
const RootEntityName = "Root entity"

// Migrate runs all schema migrations. Statements are idempotent so Migrate
// can run on every start.
func Migrate(ctx context.Context, db *DB) error {
	for i, stmt := range migrations {
		stmt = strings.ReplaceAll(stmt, "{{pk}}", db.Dialect.PrimaryKey())
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := seedRootEntity(ctx, db); err != nil {
		return fmt.Errorf("creating root entity: %w", err)
	}
	return nil
}

func seedRootEntity(ctx context.Context, db *DB) error {
	query := db.Dialect.Rebind(`INSERT INTO glpi_entities (id, name, entities_id, completename, level)
		VALUES (0, ?, NULL, ?, 1)
		ON CONFLICT (id) DO NOTHING`)
	_, err := db.ExecContext(ctx, query, RootEntityName, RootEntityName)
	return err
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS glpi_entities (
		id {{pk}},
		name TEXT NOT NULL,
		entities_id INTEGER,
		completename TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 1,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_taskcategories (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		taskcategories_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		completename TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 1,
		is_active INTEGER NOT NULL DEFAULT 1,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_locations (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		locations_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		completename TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 1,
		building TEXT,
		room TEXT,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_computers (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		serial TEXT NOT NULL DEFAULT '',
		otherserial TEXT NOT NULL DEFAULT '',
		locations_id INTEGER NOT NULL DEFAULT 0,
		computermodels_id INTEGER NOT NULL DEFAULT 0,
		users_id INTEGER NOT NULL DEFAULT 0,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		is_template INTEGER NOT NULL DEFAULT 0,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_printers (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		serial TEXT NOT NULL DEFAULT '',
		otherserial TEXT NOT NULL DEFAULT '',
		locations_id INTEGER NOT NULL DEFAULT 0,
		is_global INTEGER NOT NULL DEFAULT 0,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		is_template INTEGER NOT NULL DEFAULT 0,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_monitors (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		serial TEXT NOT NULL DEFAULT '',
		otherserial TEXT NOT NULL DEFAULT '',
		locations_id INTEGER NOT NULL DEFAULT 0,
		is_global INTEGER NOT NULL DEFAULT 0,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		is_template INTEGER NOT NULL DEFAULT 0,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_computermodels (
		id {{pk}},
		name TEXT NOT NULL DEFAULT '',
		product_number TEXT NOT NULL DEFAULT '',
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_documenttypes (
		id {{pk}},
		name TEXT NOT NULL DEFAULT '',
		ext TEXT NOT NULL DEFAULT '',
		mime TEXT NOT NULL DEFAULT '',
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_usertitles (
		id {{pk}},
		name TEXT NOT NULL DEFAULT '',
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_budgettypes (
		id {{pk}},
		name TEXT NOT NULL DEFAULT '',
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_netpoints (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		locations_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_networkports (
		id {{pk}},
		itemtype TEXT NOT NULL,
		items_id INTEGER NOT NULL,
		entities_id INTEGER NOT NULL DEFAULT 0,
		netpoints_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_computers_items (
		id {{pk}},
		computers_id INTEGER NOT NULL,
		itemtype TEXT NOT NULL,
		items_id INTEGER NOT NULL,
		is_deleted INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_users (
		id {{pk}},
		name TEXT NOT NULL UNIQUE,
		realname TEXT NOT NULL DEFAULT '',
		firstname TEXT NOT NULL DEFAULT '',
		entities_id INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		is_deleted INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_profiles (
		id {{pk}},
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_profilerights (
		id {{pk}},
		profiles_id INTEGER NOT NULL REFERENCES glpi_profiles(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		rights INTEGER NOT NULL DEFAULT 0,
		UNIQUE (profiles_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_profiles_users (
		id {{pk}},
		users_id INTEGER NOT NULL REFERENCES glpi_users(id) ON DELETE CASCADE,
		profiles_id INTEGER NOT NULL REFERENCES glpi_profiles(id) ON DELETE CASCADE,
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_contacts (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		firstname TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		phone2 TEXT NOT NULL DEFAULT '',
		mobile TEXT NOT NULL DEFAULT '',
		fax TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		is_deleted INTEGER NOT NULL DEFAULT 0,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_suppliers (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		fax TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		is_deleted INTEGER NOT NULL DEFAULT 0,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_budgets (
		id {{pk}},
		entities_id INTEGER NOT NULL DEFAULT 0,
		is_recursive INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		locations_id INTEGER NOT NULL DEFAULT 0,
		budgettypes_id INTEGER NOT NULL DEFAULT 0,
		begin_date TEXT,
		end_date TEXT,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		is_template INTEGER NOT NULL DEFAULT 0,
		comment TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS glpi_dropdowntranslations (
		id {{pk}},
		itemtype TEXT NOT NULL,
		items_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		field TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		UNIQUE (itemtype, items_id, language, field)
	)`,

	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_entities_parent ON glpi_entities(entities_id)`,
	`CREATE INDEX IF NOT EXISTS idx_taskcategories_entity ON glpi_taskcategories(entities_id)`,
	`CREATE INDEX IF NOT EXISTS idx_taskcategories_parent ON glpi_taskcategories(taskcategories_id)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_entity ON glpi_locations(entities_id)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_parent ON glpi_locations(locations_id)`,
	`CREATE INDEX IF NOT EXISTS idx_computers_entity ON glpi_computers(entities_id)`,
	`CREATE INDEX IF NOT EXISTS idx_printers_entity ON glpi_printers(entities_id)`,
	`CREATE INDEX IF NOT EXISTS idx_monitors_entity ON glpi_monitors(entities_id)`,
	`CREATE INDEX IF NOT EXISTS idx_netpoints_location ON glpi_netpoints(locations_id)`,
	`CREATE INDEX IF NOT EXISTS idx_networkports_netpoint ON glpi_networkports(netpoints_id)`,
	`CREATE INDEX IF NOT EXISTS idx_computers_items_item ON glpi_computers_items(itemtype, items_id)`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_users_user ON glpi_profiles_users(users_id)`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_users_entity ON glpi_profiles_users(entities_id)`,
	`CREATE INDEX IF NOT EXISTS idx_translations_lookup ON glpi_dropdowntranslations(itemtype, language, field)`,
}
