package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
)

// SQLTranslationRepo implements TranslationRepo.
type SQLTranslationRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLTranslationRepo creates a new SQLTranslationRepo.
func NewSQLTranslationRepo(q db.DBTX, d db.Dialect) *SQLTranslationRepo {
	return &SQLTranslationRepo{db: q, dialect: d}
}

func (r *SQLTranslationRepo) Upsert(ctx context.Context, tr domain.Translation) error {
	query := `INSERT INTO glpi_dropdowntranslations (itemtype, items_id, language, field, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (itemtype, items_id, language, field) DO UPDATE SET value = excluded.value`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), tr.ItemType, tr.ItemID, tr.Language, tr.Field, tr.Value)
	if err != nil {
		return fmt.Errorf("saving %s translation of %s %d: %w", tr.Language, tr.ItemType, tr.ItemID, err)
	}
	return nil
}

func (r *SQLTranslationRepo) Get(ctx context.Context, itemtype string, itemID int64, language, field string) (string, error) {
	query := `SELECT value FROM glpi_dropdowntranslations
		WHERE itemtype = ? AND items_id = ? AND language = ? AND field = ?`
	var value string
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), itemtype, itemID, language, field).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s translation of %s %d %s: %w", language, itemtype, itemID, field, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting translation: %w", err)
	}
	return value, nil
}

func (r *SQLTranslationRepo) ListByItem(ctx context.Context, itemtype string, itemID int64) ([]domain.Translation, error) {
	query := `SELECT itemtype, items_id, language, field, value FROM glpi_dropdowntranslations
		WHERE itemtype = ? AND items_id = ? ORDER BY language, field`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), itemtype, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing translations of %s %d: %w", itemtype, itemID, err)
	}
	defer rows.Close()

	var out []domain.Translation
	for rows.Next() {
		var tr domain.Translation
		if err := rows.Scan(&tr.ItemType, &tr.ItemID, &tr.Language, &tr.Field, &tr.Value); err != nil {
			return nil, fmt.Errorf("scanning translation: %w", err)
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating translations: %w", err)
	}
	return out, nil
}
