package repository

import (
	"testing"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeTextSearchValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "%abc%"},
		{"  abc ", "%abc%"},
		{"^abc", "abc%"},
		{"abc$", "%abc"},
		{"^abc$", "abc"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\tmp`, `%c:\\tmp%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, makeTextSearchValue(tt.in))
		})
	}
}

func TestIsIntegerText(t *testing.T) {
	assert.True(t, isIntegerText("42"))
	assert.True(t, isIntegerText(" 7 "))
	assert.False(t, isIntegerText(""))
	assert.False(t, isIntegerText("4.2"))
	assert.False(t, isIntegerText("pc42"))
}

func TestWhereClause(t *testing.T) {
	var w whereClause
	assert.Empty(t, w.String())

	w.add("a = ?", 1)
	w.addIn("b", []int64{2, 3})
	w.addNotIn("c", nil)
	w.addAny([]string{"d = ?", "e = ?"}, []any{4, 5})
	assert.Equal(t, " WHERE a = ? AND b IN (?, ?) AND (d = ? OR e = ?)", w.String())
	assert.Equal(t, []any{1, int64(2), int64(3), 4, 5}, w.args)

	var empty whereClause
	empty.addIn("id", []int64{})
	assert.Equal(t, " WHERE 1 = 0", empty.String())
}

func TestWhereClause_EntityScope(t *testing.T) {
	var w whereClause
	w.addEntityScope("t.entities_id", "t.is_recursive", &EntityScope{IDs: []int64{3}, Ancestors: []int64{0, 1}})
	assert.Equal(t, " WHERE (t.entities_id IN (?) OR (t.is_recursive = 1 AND t.entities_id IN (?, ?)))", w.String())
	assert.Equal(t, []any{int64(3), int64(0), int64(1)}, w.args)

	var flat whereClause
	flat.addEntityScope("t.entities_id", "", &EntityScope{IDs: []int64{3}, Ancestors: []int64{0}})
	assert.Equal(t, " WHERE t.entities_id IN (?)", flat.String())

	var none whereClause
	none.addEntityScope("t.entities_id", "", nil)
	assert.Empty(t, none.String())
}

func TestFilterClause(t *testing.T) {
	tests := []struct {
		name     string
		dialect  db.Dialect
		filter   domain.Filter
		wantSQL  string
		wantArgs []any
	}{
		{"default equals", db.SQLite, domain.Filter{Field: "name", Value: "x"}, "t.name = ?", []any{"x"}},
		{"null", db.SQLite, domain.Filter{Field: "comment", Operator: "=", Value: nil}, "t.comment IS NULL", nil},
		{"not equal", db.SQLite, domain.Filter{Field: "level", Operator: "!=", Value: float64(2)}, "t.level <> ?", []any{int64(2)}},
		{"bool", db.SQLite, domain.Filter{Field: "is_active", Value: true}, "t.is_active = ?", []any{1}},
		{"like sqlite", db.SQLite, domain.Filter{Field: "name", Operator: "like", Value: "%3%"}, "t.name LIKE ?", []any{"%3%"}},
		{"like postgres", db.Postgres, domain.Filter{Field: "name", Operator: "LIKE", Value: "%3%"}, "t.name ILIKE ?", []any{"%3%"}},
		{"in", db.SQLite, domain.Filter{Field: "id", Operator: "IN", Value: []any{float64(1), float64(2)}}, "t.id IN (?, ?)", []any{int64(1), int64(2)}},
		{"empty in", db.SQLite, domain.Filter{Field: "id", Operator: "IN", Value: []any{}}, "1 = 0", nil},
		{"empty not in", db.SQLite, domain.Filter{Field: "id", Operator: "NOT IN", Value: []any{}}, "1 = 1", nil},
		{"fraction kept", db.SQLite, domain.Filter{Field: "level", Operator: ">", Value: 1.5}, "t.level > ?", []any{1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := filterClause(tt.dialect, "t", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}

	_, _, err := filterClause(db.SQLite, "t", domain.Filter{Field: "level", Operator: "<", Value: nil})
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)
	_, _, err = filterClause(db.SQLite, "t", domain.Filter{Field: "id", Operator: "IN", Value: "1,2"})
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)
}
