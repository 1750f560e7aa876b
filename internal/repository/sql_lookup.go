package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
)

// SQLLookupRepo implements LookupRepo for contacts, suppliers and budgets.
type SQLLookupRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLLookupRepo creates a new SQLLookupRepo.
func NewSQLLookupRepo(q db.DBTX, d db.Dialect) *SQLLookupRepo {
	return &SQLLookupRepo{db: q, dialect: d}
}

func (r *SQLLookupRepo) Contact(ctx context.Context, id int64) (*domain.Contact, error) {
	query := `SELECT id, entities_id, name, firstname, phone, phone2, mobile, fax, email, comment
		FROM glpi_contacts WHERE id = ?`
	var c domain.Contact
	var comment sql.NullString
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id).Scan(
		&c.ID, &c.EntityID, &c.Name, &c.FirstName, &c.Phone, &c.Phone2, &c.Mobile, &c.Fax, &c.Email, &comment)
	if err := notFound(err, "contact", id); err != nil {
		return nil, err
	}
	c.Comment = stringOrEmpty(comment)
	return &c, nil
}

func (r *SQLLookupRepo) Supplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	query := `SELECT id, entities_id, name, phone, fax, email, comment FROM glpi_suppliers WHERE id = ?`
	var s domain.Supplier
	var comment sql.NullString
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id).Scan(
		&s.ID, &s.EntityID, &s.Name, &s.Phone, &s.Fax, &s.Email, &comment)
	if err := notFound(err, "supplier", id); err != nil {
		return nil, err
	}
	s.Comment = stringOrEmpty(comment)
	return &s, nil
}

func (r *SQLLookupRepo) Budget(ctx context.Context, id int64) (*domain.Budget, error) {
	query := `SELECT id, entities_id, name, comment, locations_id, budgettypes_id, begin_date, end_date
		FROM glpi_budgets WHERE id = ?`
	var b domain.Budget
	var comment, begin, end sql.NullString
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id).Scan(
		&b.ID, &b.EntityID, &b.Name, &comment, &b.LocationID, &b.BudgetTypeID, &begin, &end)
	if err := notFound(err, "budget", id); err != nil {
		return nil, err
	}
	b.Comment = stringOrEmpty(comment)
	b.BeginDate = stringOrEmpty(begin)
	b.EndDate = stringOrEmpty(end)
	return &b, nil
}

func (r *SQLLookupRepo) CreateContact(ctx context.Context, c *domain.Contact) error {
	query := `INSERT INTO glpi_contacts (entities_id, name, firstname, phone, phone2, mobile, fax, email, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		c.EntityID, c.Name, c.FirstName, c.Phone, c.Phone2, c.Mobile, c.Fax, c.Email, nullableString(c.Comment),
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("inserting contact %q: %w", c.Name, err)
	}
	return nil
}

func (r *SQLLookupRepo) CreateSupplier(ctx context.Context, s *domain.Supplier) error {
	query := `INSERT INTO glpi_suppliers (entities_id, name, phone, fax, email, comment)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		s.EntityID, s.Name, s.Phone, s.Fax, s.Email, nullableString(s.Comment),
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("inserting supplier %q: %w", s.Name, err)
	}
	return nil
}

func (r *SQLLookupRepo) CreateBudget(ctx context.Context, b *domain.Budget) error {
	query := `INSERT INTO glpi_budgets (entities_id, name, comment, locations_id, budgettypes_id, begin_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		b.EntityID, b.Name, nullableString(b.Comment), b.LocationID, b.BudgetTypeID,
		nullableString(b.BeginDate), nullableString(b.EndDate),
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("inserting budget %q: %w", b.Name, err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to domain.ErrNotFound and wraps other errors.
func notFound(err error, kind string, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return fmt.Errorf("getting %s %d: %w", kind, id, err)
}
