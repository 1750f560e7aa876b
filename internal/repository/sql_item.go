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

// SQLItemRepo implements ItemRepo over every registered dropdown table.
type SQLItemRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLItemRepo creates a new SQLItemRepo.
func NewSQLItemRepo(q db.DBTX, d db.Dialect) *SQLItemRepo {
	return &SQLItemRepo{db: q, dialect: d}
}

// itemSelect is the fixed column list scanned by scanItem. Columns a table
// lacks are selected as constants.
func itemSelect(t domain.ItemType, translated bool) string {
	colOr := func(has bool, expr, fallback string) string {
		if has {
			return expr
		}
		return fallback
	}
	name := "t.name"
	completename := "t.completename"
	comment := "COALESCE(t.comment, '')"
	if translated {
		name = "COALESCE(NULLIF(namet.value, ''), t.name)"
		completename = "COALESCE(NULLIF(completenamet.value, ''), t.completename)"
		comment = "COALESCE(NULLIF(commentt.value, ''), t.comment, '')"
	}
	parent := "0"
	if t.Tree {
		parent = "COALESCE(t." + t.ParentField + ", 0)"
	}
	cols := []string{
		"t.id",
		name,
		colOr(t.HasComment, comment, "''"),
		colOr(t.EntityAssign, "t.entities_id", "0"),
		colOr(t.MayBeRecursive, "t.is_recursive", "0"),
		parent,
		colOr(t.Tree, completename, "''"),
		colOr(t.Tree, "t.level", "0"),
		colOr(t.ProductNumber, "t.product_number", "''"),
		colOr(t.HasSerial, "t.serial", "''"),
		colOr(t.HasSerial, "t.otherserial", "''"),
		colOr(t.MayBeDeleted, "t.is_deleted", "0"),
		colOr(t.MayBeTemplate, "t.is_template", "0"),
		colOr(t.HasColumn("is_global"), "t.is_global", "0"),
		colOr(t.HasColumn("locations_id"), "t.locations_id", "0"),
	}
	return strings.Join(cols, ", ")
}

// translationJoins joins the per-language overrides of the label fields.
func translationJoins(t domain.ItemType, language string) (string, []any) {
	fields := []string{"name"}
	if t.Tree {
		fields = append(fields, "completename")
	}
	if t.HasComment {
		fields = append(fields, "comment")
	}
	var b strings.Builder
	var args []any
	for _, f := range fields {
		alias := f + "t"
		fmt.Fprintf(&b, " LEFT JOIN glpi_dropdowntranslations %s ON %s.itemtype = ? AND %s.items_id = t.id AND %s.language = ? AND %s.field = '%s'",
			alias, alias, alias, alias, alias, f)
		args = append(args, t.Name, language)
	}
	return b.String(), args
}

// buildItemQuery returns the FROM/JOIN/WHERE part of q with its arguments.
func (r *SQLItemRepo) buildItemQuery(q ItemQuery) (string, []any, error) {
	t := q.Type
	from := " FROM " + t.Table + " t"
	var args []any
	translated := q.Language != ""
	if translated {
		joins, joinArgs := translationJoins(t, q.Language)
		from += joins
		args = append(args, joinArgs...)
	}

	var w whereClause
	if t.MayBeDeleted && !q.IncludeDeleted {
		w.add("t.is_deleted = 0")
	}
	if t.MayBeTemplate && !q.IncludeDeleted {
		w.add("t.is_template = 0")
	}
	if q.OnlyIDs != nil {
		w.addIn("t.id", q.OnlyIDs)
	}
	w.addNotIn("t.id", q.ExcludeIDs)

	switch {
	case t.Table == "glpi_entities":
		w.addEntityScope("t.id", "", q.Scope)
	case t.EntityAssign:
		recursiveCol := ""
		if t.MayBeRecursive {
			recursiveCol = "t.is_recursive"
		}
		w.addEntityScope("t.entities_id", recursiveCol, q.Scope)
	}

	for _, f := range q.Filters {
		if err := f.Validate(t); err != nil {
			return "", nil, err
		}
		cond, condArgs, err := filterClause(r.dialect, "t", f)
		if err != nil {
			return "", nil, err
		}
		w.add(cond, condArgs...)
	}

	if text := strings.TrimSpace(q.Search); text != "" {
		pattern := makeTextSearchValue(text)
		like := " " + r.dialect.Like() + " ?" + likeEscape
		var conds []string
		var condArgs []any
		if t.Tree {
			conds = append(conds, "t.completename"+like)
			condArgs = append(condArgs, pattern)
			if translated {
				conds = append(conds, "completenamet.value"+like)
				condArgs = append(condArgs, pattern)
			}
		} else {
			conds = append(conds, "t.name"+like)
			condArgs = append(condArgs, pattern)
			if translated {
				conds = append(conds, "namet.value"+like)
				condArgs = append(condArgs, pattern)
			}
			if t.ProductNumber {
				conds = append(conds, "t.product_number"+like)
				condArgs = append(condArgs, pattern)
			}
		}
		for _, col := range q.SearchFields {
			if !t.HasColumn(col) || domain.IsForeignKey(col) {
				continue
			}
			conds = append(conds, r.dialect.CastText("t."+col)+like)
			condArgs = append(condArgs, pattern)
		}
		if q.SearchID && isIntegerText(text) {
			conds = append(conds, r.dialect.CastText("t.id")+" "+r.dialect.Like()+" ?")
			condArgs = append(condArgs, "%"+text+"%")
		}
		w.addAny(conds, condArgs)
	}

	args = append(args, w.args...)
	return from + w.String(), args, nil
}

func (r *SQLItemRepo) Search(ctx context.Context, q ItemQuery) ([]*domain.Item, error) {
	for _, col := range q.Columns {
		if !q.Type.HasColumn(col) {
			return nil, fmt.Errorf("%w: unknown column %q on %s", domain.ErrInvalidCondition, col, q.Type.Name)
		}
	}
	body, args, err := r.buildItemQuery(q)
	if err != nil {
		return nil, err
	}

	selectCols := itemSelect(q.Type, q.Language != "")
	for _, col := range q.Columns {
		selectCols += ", t." + col
	}

	order := []string{}
	if q.GroupByEntity && q.Type.EntityAssign {
		order = append(order, "t.entities_id")
	}
	if q.Type.Tree {
		order = append(order, "t.completename")
	} else {
		order = append(order, "t.name")
	}
	order = append(order, "t.id")

	query := "SELECT " + selectCols + body + " ORDER BY " + strings.Join(order, ", ")
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, max(q.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", q.Type.Table, err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows, q.Columns)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", q.Type.Table, err)
	}
	return items, nil
}

func (r *SQLItemRepo) Count(ctx context.Context, q ItemQuery) (int, error) {
	body, args, err := r.buildItemQuery(q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind("SELECT COUNT(*)"+body), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", q.Type.Table, err)
	}
	return n, nil
}

func (r *SQLItemRepo) GetByID(ctx context.Context, t domain.ItemType, id int64, language string) (*domain.Item, error) {
	items, err := r.Search(ctx, ItemQuery{
		Type:           t,
		OnlyIDs:        []int64{id},
		Language:       language,
		IncludeDeleted: true,
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s %d: %w", t.Name, id, domain.ErrNotFound)
	}
	return items[0], nil
}

// Descendants returns id and every row below it in the tree.
func (r *SQLItemRepo) Descendants(ctx context.Context, t domain.ItemType, id int64) ([]int64, error) {
	if !t.Tree {
		return []int64{id}, nil
	}
	query := fmt.Sprintf(`WITH RECURSIVE sub(id) AS (
			SELECT id FROM %[1]s WHERE id = ?
			UNION
			SELECT c.id FROM %[1]s c JOIN sub ON c.%[2]s = sub.id
		)
		SELECT id FROM sub ORDER BY id`, t.Table, t.ParentField)
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), id)
	if err != nil {
		return nil, fmt.Errorf("listing descendants of %s %d: %w", t.Name, id, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var child int64
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("scanning descendant: %w", err)
		}
		ids = append(ids, child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating descendants: %w", err)
	}
	return ids, nil
}

// FindTwin returns the ID of a row with the same name under the same parent
// and entity, or ErrNotFound.
func (r *SQLItemRepo) FindTwin(ctx context.Context, t domain.ItemType, name string, parentID, entityID int64) (int64, error) {
	var w whereClause
	w.add("name = ?", name)
	if t.Tree {
		w.add("COALESCE("+t.ParentField+", 0) = ?", parentID)
	}
	if t.EntityAssign {
		w.add("entities_id = ?", entityID)
	}
	query := "SELECT id FROM " + t.Table + w.String() + " ORDER BY id LIMIT 1"
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), w.args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s %q: %w", t.Name, name, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("finding %s %q: %w", t.Name, name, err)
	}
	return id, nil
}

// Create inserts item and sets its ID. Tree rows get their completename
// and level from the parent.
func (r *SQLItemRepo) Create(ctx context.Context, t domain.ItemType, item *domain.Item) error {
	cols := []string{"name"}
	args := []any{item.Name}
	add := func(has bool, col string, v any) {
		if has {
			cols = append(cols, col)
			args = append(args, v)
		}
	}

	if t.Tree {
		item.CompleteName = item.Name
		item.Level = 1
		if item.ParentID > 0 {
			parent, err := r.GetByID(ctx, t, item.ParentID, "")
			if err != nil {
				return fmt.Errorf("loading parent of %s %q: %w", t.Name, item.Name, err)
			}
			item.CompleteName = domain.ChildCompleteName(parent.CompleteName, item.Name)
			item.Level = parent.Level + 1
		}
	}

	add(t.HasComment, "comment", nullableString(item.Comment))
	add(t.EntityAssign, "entities_id", item.EntityID)
	add(t.MayBeRecursive, "is_recursive", boolToInt(item.IsRecursive))
	add(t.Tree, t.ParentField, item.ParentID)
	add(t.Tree, "completename", item.CompleteName)
	add(t.Tree, "level", item.Level)
	add(t.ProductNumber, "product_number", item.ProductNumber)
	add(t.HasSerial, "serial", item.Serial)
	add(t.HasSerial, "otherserial", item.OtherSerial)
	add(t.MayBeDeleted, "is_deleted", boolToInt(item.IsDeleted))
	add(t.MayBeTemplate, "is_template", boolToInt(item.IsTemplate))
	add(t.HasColumn("is_global"), "is_global", boolToInt(item.IsGlobal))
	add(t.HasColumn("locations_id"), "locations_id", item.LocationID)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.Table, strings.Join(cols, ", "), placeholders(len(cols)))
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...).Scan(&item.ID); err != nil {
		return fmt.Errorf("inserting %s %q: %w", t.Name, item.Name, err)
	}
	return nil
}

func scanItem(rows *sql.Rows, extra []string) (*domain.Item, error) {
	var it domain.Item
	var isRecursive, isDeleted, isTemplate, isGlobal int
	dest := []any{
		&it.ID, &it.Name, &it.Comment, &it.EntityID, &isRecursive, &it.ParentID,
		&it.CompleteName, &it.Level, &it.ProductNumber, &it.Serial, &it.OtherSerial,
		&isDeleted, &isTemplate, &isGlobal, &it.LocationID,
	}
	values := make([]sql.NullString, len(extra))
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	it.IsRecursive = intToBool(isRecursive)
	it.IsDeleted = intToBool(isDeleted)
	it.IsTemplate = intToBool(isTemplate)
	it.IsGlobal = intToBool(isGlobal)
	if len(extra) > 0 {
		it.Extra = make(map[string]string, len(extra))
		for i, col := range extra {
			it.Extra[col] = stringOrEmpty(values[i])
		}
	}
	return &it, nil
}
