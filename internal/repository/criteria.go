package repository

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
)

// likeEscape is appended to every LIKE built from user search text.
const likeEscape = ` ESCAPE '\'`

// whereClause accumulates AND-ed conditions with their arguments in
// placeholder order.
type whereClause struct {
	parts []string
	args  []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.parts = append(w.parts, cond)
	w.args = append(w.args, args...)
}

// addIn restricts col to ids. An empty list matches nothing.
func (w *whereClause) addIn(col string, ids []int64) {
	if len(ids) == 0 {
		w.add("1 = 0")
		return
	}
	w.add(col+" IN ("+placeholders(len(ids))+")", int64Args(ids)...)
}

// addNotIn excludes ids from col. An empty list is a no-op.
func (w *whereClause) addNotIn(col string, ids []int64) {
	if len(ids) == 0 {
		return
	}
	w.add(col+" NOT IN ("+placeholders(len(ids))+")", int64Args(ids)...)
}

// addAny adds the OR of conds as a single condition.
func (w *whereClause) addAny(conds []string, args []any) {
	if len(conds) == 0 {
		return
	}
	w.add("("+strings.Join(conds, " OR ")+")", args...)
}

func (w *whereClause) String() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

// EntityScope restricts rows to a set of entities. Rows flagged recursive
// in one of the Ancestors are visible too.
type EntityScope struct {
	IDs       []int64
	Ancestors []int64
}

// addEntityScope applies scope to col. A nil scope leaves the query
// unrestricted; recursiveCol is empty for tables without the flag.
func (w *whereClause) addEntityScope(col, recursiveCol string, scope *EntityScope) {
	if scope == nil {
		return
	}
	if len(scope.IDs) == 0 {
		w.add("1 = 0")
		return
	}
	cond := col + " IN (" + placeholders(len(scope.IDs)) + ")"
	args := int64Args(scope.IDs)
	if recursiveCol != "" && len(scope.Ancestors) > 0 {
		cond = "(" + cond + " OR (" + recursiveCol + " = 1 AND " + col + " IN (" + placeholders(len(scope.Ancestors)) + ")))"
		args = append(args, int64Args(scope.Ancestors)...)
	}
	w.add(cond, args...)
}

// filterClause renders one validated filter against the aliased table.
func filterClause(d db.Dialect, alias string, f domain.Filter) (string, []any, error) {
	f = f.Normalized()
	col := alias + "." + f.Field
	switch f.Operator {
	case domain.OpIn, domain.OpNotIn:
		list, ok := f.Value.([]any)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s expects a list", domain.ErrInvalidCondition, f.Operator)
		}
		if len(list) == 0 {
			if f.Operator == domain.OpIn {
				return "1 = 0", nil, nil
			}
			return "1 = 1", nil, nil
		}
		args := make([]any, len(list))
		for i, v := range list {
			args[i] = filterArg(v)
		}
		return col + " " + string(f.Operator) + " (" + placeholders(len(list)) + ")", args, nil
	case domain.OpLike:
		return col + " " + d.Like() + " ?", []any{filterArg(f.Value)}, nil
	case domain.OpNotLike:
		return col + " " + d.NotLike() + " ?", []any{filterArg(f.Value)}, nil
	case domain.OpNeq:
		return col + " <> ?", []any{filterArg(f.Value)}, nil
	case domain.OpEq, domain.OpLt, domain.OpLte, domain.OpGt, domain.OpGte:
		if f.Value == nil {
			if f.Operator == domain.OpEq {
				return col + " IS NULL", nil, nil
			}
			return "", nil, fmt.Errorf("%w: %s against null", domain.ErrInvalidCondition, f.Operator)
		}
		return col + " " + string(f.Operator) + " ?", []any{filterArg(f.Value)}, nil
	}
	return "", nil, fmt.Errorf("%w: operator %q", domain.ErrInvalidCondition, f.Operator)
}

// filterArg narrows JSON numbers to integers when they carry no fraction,
// so they compare cleanly against integer columns.
func filterArg(v any) any {
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n)
		}
	case bool:
		return boolToInt(n)
	}
	return v
}
