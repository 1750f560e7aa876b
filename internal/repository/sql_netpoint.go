package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
)

// SQLNetpointRepo implements NetpointRepo.
type SQLNetpointRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLNetpointRepo creates a new SQLNetpointRepo.
func NewSQLNetpointRepo(q db.DBTX, d db.Dialect) *SQLNetpointRepo {
	return &SQLNetpointRepo{db: q, dialect: d}
}

const netpointSelect = `SELECT n.id, n.entities_id, n.name, COALESCE(n.comment, ''), n.locations_id, COALESCE(l.completename, '')
	FROM glpi_netpoints n
	LEFT JOIN glpi_locations l ON l.id = n.locations_id`

func (r *SQLNetpointRepo) Create(ctx context.Context, n *domain.Netpoint) error {
	query := `INSERT INTO glpi_netpoints (entities_id, locations_id, name, comment) VALUES (?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), n.EntityID, n.LocationID, n.Name, nullableString(n.Comment)).
		Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("inserting netpoint %q: %w", n.Name, err)
	}
	return nil
}

// FindTwin returns the ID of the outlet with the same name, entity and location.
func (r *SQLNetpointRepo) FindTwin(ctx context.Context, name string, entityID, locationID int64) (int64, error) {
	query := `SELECT id FROM glpi_netpoints WHERE name = ? AND entities_id = ? AND locations_id = ? ORDER BY id LIMIT 1`
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), name, entityID, locationID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("netpoint %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("finding netpoint %q: %w", name, err)
	}
	return id, nil
}

func (r *SQLNetpointRepo) GetByID(ctx context.Context, id int64) (*domain.Netpoint, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(netpointSelect+` WHERE n.id = ?`), id)
	n, err := scanNetpoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("netpoint %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting netpoint %d: %w", id, err)
	}
	return n, nil
}

// Search lists netpoints ordered by location completename then name.
func (r *SQLNetpointRepo) Search(ctx context.Context, q NetpointQuery) ([]*domain.Netpoint, error) {
	var w whereClause
	w.addEntityScope("n.entities_id", "n.is_recursive", q.Scope)
	if q.LocationID != nil {
		w.add("n.locations_id = ?", *q.LocationID)
	}
	if q.DevType != "" {
		w.add(`n.id NOT IN (SELECT p.netpoints_id FROM glpi_networkports p
			WHERE p.itemtype = ? AND p.netpoints_id <> 0 AND p.items_id <> ?)`, q.DevType, q.DevID)
	}
	w.addNotIn("n.id", q.ExcludeIDs)
	if text := strings.TrimSpace(q.Search); text != "" {
		w.add("n.name "+r.dialect.Like()+" ?"+likeEscape, makeTextSearchValue(text))
	}

	query := netpointSelect + w.String() + ` ORDER BY l.completename, n.name, n.id`
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, max(q.Offset, 0))
	}
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), w.args...)
	if err != nil {
		return nil, fmt.Errorf("searching netpoints: %w", err)
	}
	defer rows.Close()

	var out []*domain.Netpoint
	for rows.Next() {
		n, err := scanNetpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning netpoint: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating netpoints: %w", err)
	}
	return out, nil
}

func (r *SQLNetpointRepo) AddPort(ctx context.Context, p *NetworkPort) error {
	query := `INSERT INTO glpi_networkports (itemtype, items_id, entities_id, netpoints_id, name) VALUES (?, ?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), p.ItemType, p.ItemID, p.EntityID, p.NetpointID, p.Name).
		Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting port of %s %d: %w", p.ItemType, p.ItemID, err)
	}
	return nil
}

func scanNetpoint(s rowScanner) (*domain.Netpoint, error) {
	var n domain.Netpoint
	if err := s.Scan(&n.ID, &n.EntityID, &n.Name, &n.Comment, &n.LocationID, &n.LocationCompleteName); err != nil {
		return nil, err
	}
	return &n, nil
}
