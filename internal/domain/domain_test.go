package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCompleteName(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" ", nil},
		{">", nil},
		{" > ", nil},
		{"foo", []string{"foo"}},
		{"foo > bar", []string{"foo", "bar"}},
		{"foo>bar", []string{"foo", "bar"}},
		{">foo>>bar>", []string{"foo", "bar"}},
		{" foo >   > bar > ", []string{"foo", "bar"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SplitCompleteName(tc.in), "input %q", tc.in)
	}
}

func TestJoinCompleteName(t *testing.T) {
	assert.Equal(t, "foo > bar", JoinCompleteName("foo", "bar"))
	assert.Equal(t, "foo", ChildCompleteName("", "foo"))
	assert.Equal(t, "a > b", ChildCompleteName("a", "b"))
}

func TestFormatUserName(t *testing.T) {
	assert.Equal(t, "glpi", FormatUserName("glpi", "", ""))
	assert.Equal(t, "glpi", FormatUserName("glpi", "", "John"))
	assert.Equal(t, "Doe John", FormatUserName("jdoe", "Doe", "John"))
	assert.Equal(t, "Doe", FormatUserName("jdoe", "Doe", ""))
}

func TestRights(t *testing.T) {
	r := Rights{"computer": RightRead}
	assert.True(t, r.Have("computer", RightRead))
	assert.False(t, r.Have("computer", RightUpdate))
	assert.False(t, r.Have("printer", RightRead))

	r.Merge(Rights{"computer": RightUpdate, "printer": RightRead})
	assert.True(t, r.Have("computer", RightRead|RightUpdate))
	assert.True(t, r.Have("printer", RightRead))
}

func TestLookupItemType(t *testing.T) {
	loc, ok := LookupItemType("Location")
	require.True(t, ok)
	assert.True(t, loc.Tree)
	assert.Equal(t, "locations_id", loc.ForeignKey())
	assert.Equal(t, loc.ParentField, loc.ForeignKey())

	byTable, ok := LookupTable("glpi_taskcategories")
	require.True(t, ok)
	assert.Equal(t, "TaskCategory", byTable.Name)

	fk, ok := LookupForeignKey("budgettypes_id")
	require.True(t, ok)
	assert.Equal(t, "BudgetType", fk.Name)

	_, ok = LookupItemType("NotAType")
	assert.False(t, ok)
	_, ok = LookupForeignKey("name")
	assert.False(t, ok)
}

func TestFilterValidate(t *testing.T) {
	loc, _ := LookupItemType("Location")

	require.NoError(t, Filter{Field: "name", Operator: "like", Value: "%3%"}.Validate(loc))
	require.NoError(t, Filter{Field: "locations_id", Value: 1}.Validate(loc))
	require.NoError(t, Filter{Field: "id", Operator: OpIn, Value: []any{1, 2}}.Validate(loc))

	err := Filter{Field: "serial", Value: "x"}.Validate(loc)
	assert.ErrorIs(t, err, ErrInvalidCondition)

	err = Filter{Field: "name", Operator: "; DROP", Value: "x"}.Validate(loc)
	assert.ErrorIs(t, err, ErrInvalidCondition)

	err = Filter{Field: "id", Operator: OpIn, Value: 3}.Validate(loc)
	assert.ErrorIs(t, err, ErrInvalidCondition)

	assert.Equal(t, OpEq, Filter{Field: "name"}.Normalized().Operator)
}

func TestValueOr(t *testing.T) {
	assert.Equal(t, 3, ValueOr(3))
	assert.Equal(t, 5, ValueOr(3, nil, Ptr(5)))
	assert.Equal(t, "a", CoalesceStr("", "a", "b"))
}
