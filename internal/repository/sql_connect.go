package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/dropdown/internal/db"
)

// SQLConnectRepo implements ConnectRepo on glpi_computers_items.
type SQLConnectRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLConnectRepo creates a new SQLConnectRepo.
func NewSQLConnectRepo(q db.DBTX, d db.Dialect) *SQLConnectRepo {
	return &SQLConnectRepo{db: q, dialect: d}
}

// Candidates lists devices of q.Type that are free to attach: global
// devices, or devices not yet connected to any computer. Rows are ordered
// by entity completename then name.
func (r *SQLConnectRepo) Candidates(ctx context.Context, q ConnectQuery) ([]ConnectCandidate, error) {
	t := q.Type
	var w whereClause
	if t.MayBeDeleted {
		w.add("t.is_deleted = 0")
	}
	if t.MayBeTemplate {
		w.add("t.is_template = 0")
	}
	hasGlobal := t.HasColumn("is_global")
	if q.OnlyGlobal && hasGlobal {
		w.add("t.is_global = 1")
	}
	if t.Name != "Computer" {
		cond := "t.id NOT IN (SELECT ci.items_id FROM glpi_computers_items ci WHERE ci.itemtype = ? AND ci.is_deleted = 0)"
		if hasGlobal {
			cond = "(t.is_global = 1 OR " + cond + ")"
		}
		w.add(cond, t.Name)
	}
	recursiveCol := ""
	if t.MayBeRecursive {
		recursiveCol = "t.is_recursive"
	}
	w.addEntityScope("t.entities_id", recursiveCol, q.Scope)
	w.addNotIn("t.id", q.ExcludeIDs)
	if text := strings.TrimSpace(q.Search); text != "" {
		pattern := makeTextSearchValue(text)
		like := " " + r.dialect.Like() + " ?" + likeEscape
		w.addAny([]string{"t.name" + like, "t.serial" + like, "t.otherserial" + like},
			[]any{pattern, pattern, pattern})
	}

	query := `SELECT t.id, t.entities_id, t.name, t.serial, t.otherserial, COALESCE(e.completename, '') AS entname
		FROM ` + t.Table + ` t
		LEFT JOIN glpi_entities e ON e.id = t.entities_id` + w.String() +
		` ORDER BY entname, t.name, t.id`
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, max(q.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing connectable %s: %w", t.Name, err)
	}
	defer rows.Close()

	var out []ConnectCandidate
	for rows.Next() {
		var c ConnectCandidate
		if err := rows.Scan(&c.ID, &c.EntityID, &c.Name, &c.Serial, &c.OtherSerial, &c.EntityCompleteName); err != nil {
			return nil, fmt.Errorf("scanning connectable %s: %w", t.Name, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connectable %s: %w", t.Name, err)
	}
	return out, nil
}

// Connect attaches a device to a computer.
func (r *SQLConnectRepo) Connect(ctx context.Context, computerID int64, itemtype string, itemID int64) error {
	query := `INSERT INTO glpi_computers_items (computers_id, itemtype, items_id) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), computerID, itemtype, itemID); err != nil {
		return fmt.Errorf("connecting %s %d to computer %d: %w", itemtype, itemID, computerID, err)
	}
	return nil
}
