package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
)

// SQLProfileRepo implements ProfileRepo.
type SQLProfileRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLProfileRepo creates a new SQLProfileRepo.
func NewSQLProfileRepo(q db.DBTX, d db.Dialect) *SQLProfileRepo {
	return &SQLProfileRepo{db: q, dialect: d}
}

// Create inserts p and its rights.
func (r *SQLProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`INSERT INTO glpi_profiles (name) VALUES (?) RETURNING id`), p.Name).
		Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting profile %q: %w", p.Name, err)
	}
	query := r.dialect.Rebind(`INSERT INTO glpi_profilerights (profiles_id, name, rights) VALUES (?, ?, ?)
		ON CONFLICT (profiles_id, name) DO UPDATE SET rights = excluded.rights`)
	for module, right := range p.Rights {
		if _, err := r.db.ExecContext(ctx, query, p.ID, module, int(right)); err != nil {
			return fmt.Errorf("inserting right %s of profile %q: %w", module, p.Name, err)
		}
	}
	return nil
}

func (r *SQLProfileRepo) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	return r.get(ctx, `SELECT id, name FROM glpi_profiles WHERE id = ?`, id)
}

func (r *SQLProfileRepo) GetByName(ctx context.Context, name string) (*domain.Profile, error) {
	return r.get(ctx, `SELECT id, name FROM glpi_profiles WHERE name = ?`, name)
}

func (r *SQLProfileRepo) get(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), arg).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile %v: %w", arg, err)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(`SELECT name, rights FROM glpi_profilerights WHERE profiles_id = ?`), p.ID)
	if err != nil {
		return nil, fmt.Errorf("listing rights of profile %q: %w", p.Name, err)
	}
	defer rows.Close()

	p.Rights = domain.Rights{}
	for rows.Next() {
		var module string
		var right int
		if err := rows.Scan(&module, &right); err != nil {
			return nil, fmt.Errorf("scanning right: %w", err)
		}
		p.Rights[module] = domain.Right(right)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rights: %w", err)
	}
	return &p, nil
}

func (r *SQLProfileRepo) Assign(ctx context.Context, a domain.ProfileAssignment) error {
	query := `INSERT INTO glpi_profiles_users (users_id, profiles_id, entities_id, is_recursive) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), a.UserID, a.ProfileID, a.EntityID, boolToInt(a.IsRecursive))
	if err != nil {
		return fmt.Errorf("assigning profile %d to user %d: %w", a.ProfileID, a.UserID, err)
	}
	return nil
}

func (r *SQLProfileRepo) ListAssignments(ctx context.Context, userID int64) ([]domain.ProfileAssignment, error) {
	query := `SELECT users_id, profiles_id, entities_id, is_recursive FROM glpi_profiles_users WHERE users_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("listing profiles of user %d: %w", userID, err)
	}
	defer rows.Close()

	var out []domain.ProfileAssignment
	for rows.Next() {
		var a domain.ProfileAssignment
		var recursive int
		if err := rows.Scan(&a.UserID, &a.ProfileID, &a.EntityID, &recursive); err != nil {
			return nil, fmt.Errorf("scanning profile assignment: %w", err)
		}
		a.IsRecursive = intToBool(recursive)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile assignments: %w", err)
	}
	return out, nil
}
