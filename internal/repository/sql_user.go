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

// SQLUserRepo implements UserRepo.
type SQLUserRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLUserRepo creates a new SQLUserRepo.
func NewSQLUserRepo(q db.DBTX, d db.Dialect) *SQLUserRepo {
	return &SQLUserRepo{db: q, dialect: d}
}

const userColumns = `u.id, u.name, u.realname, u.firstname, u.entities_id, u.language, u.is_active, u.is_deleted`

func (r *SQLUserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO glpi_users (name, realname, firstname, entities_id, language, is_active, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		u.Name,
		u.RealName,
		u.FirstName,
		u.EntityID,
		u.Language,
		boolToInt(u.IsActive),
		boolToInt(u.IsDeleted),
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("inserting user %q: %w", u.Name, err)
	}
	return nil
}

func (r *SQLUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM glpi_users u WHERE u.id = ?`
	return r.getOne(ctx, query, id)
}

func (r *SQLUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM glpi_users u WHERE u.name = ?`
	return r.getOne(ctx, query, name)
}

func (r *SQLUserRepo) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %v: %w", arg, err)
	}
	return u, nil
}

// Search lists active users holding a profile in q.Scope, ordered by
// real name, first name and login.
func (r *SQLUserRepo) Search(ctx context.Context, q UserQuery) ([]*domain.User, error) {
	var b strings.Builder
	b.WriteString(`SELECT DISTINCT ` + userColumns + `
		FROM glpi_users u
		JOIN glpi_profiles_users pu ON pu.users_id = u.id`)
	var args []any
	if q.Right != "" {
		want := q.Want
		if want == 0 {
			want = domain.RightRead
		}
		b.WriteString(`
		JOIN glpi_profilerights pr ON pr.profiles_id = pu.profiles_id AND pr.name = ? AND (pr.rights & ?) = ?`)
		args = append(args, q.Right, int(want), int(want))
	}

	var w whereClause
	w.add("u.is_active = 1")
	w.add("u.is_deleted = 0")
	w.addEntityScope("pu.entities_id", "pu.is_recursive", q.Scope)
	if q.OnlyIDs != nil {
		w.addIn("u.id", q.OnlyIDs)
	}
	w.addNotIn("u.id", q.ExcludeIDs)
	if text := strings.TrimSpace(q.Search); text != "" {
		pattern := makeTextSearchValue(text)
		like := " " + r.dialect.Like() + " ?" + likeEscape
		w.addAny([]string{
			"u.name" + like,
			"u.realname" + like,
			"u.firstname" + like,
			"(u.realname || ' ' || u.firstname)" + like,
		}, []any{pattern, pattern, pattern, pattern})
	}
	b.WriteString(w.String())
	args = append(args, w.args...)
	b.WriteString(" ORDER BY u.realname, u.firstname, u.name, u.id")
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", q.Limit, max(q.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func scanUser(s rowScanner) (*domain.User, error) {
	var u domain.User
	var active, deleted int
	if err := s.Scan(&u.ID, &u.Name, &u.RealName, &u.FirstName, &u.EntityID, &u.Language, &active, &deleted); err != nil {
		return nil, err
	}
	u.IsActive = intToBool(active)
	u.IsDeleted = intToBool(deleted)
	return &u, nil
}
