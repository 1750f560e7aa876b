package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
)

// SQLEntityRepo implements EntityRepo.
type SQLEntityRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLEntityRepo creates a new SQLEntityRepo.
func NewSQLEntityRepo(q db.DBTX, d db.Dialect) *SQLEntityRepo {
	return &SQLEntityRepo{db: q, dialect: d}
}

// Create inserts e below its parent, deriving completename and level.
func (r *SQLEntityRepo) Create(ctx context.Context, e *domain.Entity) error {
	e.CompleteName = e.Name
	e.Level = 1
	if e.ParentID != nil {
		parent, err := r.GetByID(ctx, *e.ParentID)
		if err != nil {
			return fmt.Errorf("loading parent of entity %q: %w", e.Name, err)
		}
		e.CompleteName = domain.ChildCompleteName(parent.CompleteName, e.Name)
		e.Level = parent.Level + 1
	}

	query := `INSERT INTO glpi_entities (name, entities_id, completename, level, comment)
		VALUES (?, ?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		e.Name,
		nullableID(e.ParentID),
		e.CompleteName,
		e.Level,
		nullableString(e.Comment),
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("inserting entity: %w", err)
	}
	return nil
}

func (r *SQLEntityRepo) GetByID(ctx context.Context, id int64) (*domain.Entity, error) {
	query := `SELECT id, name, entities_id, completename, level, comment FROM glpi_entities WHERE id = ?`
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity %d: %w", id, err)
	}
	return e, nil
}

// FindChild returns the ID of the entity named name directly below parentID.
func (r *SQLEntityRepo) FindChild(ctx context.Context, name string, parentID int64) (int64, error) {
	query := `SELECT id FROM glpi_entities WHERE name = ? AND entities_id = ? ORDER BY id LIMIT 1`
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), name, parentID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("entity %q below %d: %w", name, parentID, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("finding entity %q: %w", name, err)
	}
	return id, nil
}

func (r *SQLEntityRepo) List(ctx context.Context) ([]*domain.Entity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, entities_id, completename, level, comment FROM glpi_entities ORDER BY completename`)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return entities, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(s rowScanner) (*domain.Entity, error) {
	var e domain.Entity
	var parent sql.NullInt64
	var comment sql.NullString
	if err := s.Scan(&e.ID, &e.Name, &parent, &e.CompleteName, &e.Level, &comment); err != nil {
		return nil, err
	}
	if parent.Valid {
		e.ParentID = &parent.Int64
	}
	e.Comment = stringOrEmpty(comment)
	return &e, nil
}
