package repository_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemType(t *testing.T, name string) domain.ItemType {
	t.Helper()
	typ, ok := domain.LookupItemType(name)
	require.True(t, ok, "item type %s", name)
	return typ
}

func names(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestItemRepo_CreateTreeDerivesCompleteName(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	loc := itemType(t, "Location")

	parent := testutil.NewTestItem("Building A")
	require.NoError(t, repo.Create(ctx, loc, parent))
	child := testutil.NewTestItem("Floor 2", testutil.WithParent(parent.ID))
	require.NoError(t, repo.Create(ctx, loc, child))

	fetched, err := repo.GetByID(ctx, loc, child.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Building A > Floor 2", fetched.CompleteName)
	assert.Equal(t, 2, fetched.Level)
	assert.Equal(t, parent.ID, fetched.ParentID)
}

func TestItemRepo_CreateUnknownParent(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLItemRepo(database, database.Dialect)

	err := repo.Create(context.Background(), itemType(t, "Location"), testutil.NewTestItem("orphan", testutil.WithParent(999)))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepo_GetByIDNotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLItemRepo(database, database.Dialect)

	_, err := repo.GetByID(context.Background(), itemType(t, "Computer"), 42, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepo_SearchRecursiveRowsVisibleFromChildEntity(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	tree := repository.NewEntityTree(repository.NewSQLEntityRepo(database, database.Dialect))
	ctx := context.Background()

	scope, err := tree.Scope(ctx, []int64{fx.ID("Entity", "_test_child_2")})
	require.NoError(t, err)

	cats, err := repo.Search(ctx, repository.ItemQuery{Type: itemType(t, "TaskCategory"), Scope: scope})
	require.NoError(t, err)
	assert.Equal(t, []string{"_cat_1", "_subcat_1"}, names(cats))

	computers, err := repo.Search(ctx, repository.ItemQuery{Type: itemType(t, "Computer"), Scope: scope})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_pc21", "_test_pc22"}, names(computers))

	printers, err := repo.Search(ctx, repository.ItemQuery{Type: itemType(t, "Printer"), Scope: scope})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_printer_all", "_test_printer_ent2"}, names(printers))
}

func TestItemRepo_SearchExcludesDeletedAndTemplates(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	computer := itemType(t, "Computer")

	testutil.CreateItem(t, database, "Computer", "live")
	deleted := testutil.CreateItem(t, database, "Computer", "gone", testutil.WithDeleted())
	testutil.CreateItem(t, database, "Computer", "blueprint", testutil.WithTemplate())

	items, err := repo.Search(ctx, repository.ItemQuery{Type: computer})
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, names(items))

	// Direct lookups still see deleted rows.
	fetched, err := repo.GetByID(ctx, computer, deleted, "")
	require.NoError(t, err)
	assert.True(t, fetched.IsDeleted)
}

func TestItemRepo_SearchText(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	computer := itemType(t, "Computer")

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"substring", "22", []string{"_test_pc22"}},
		{"anchored start", "^_test_pc1", []string{"_test_pc11", "_test_pc12"}},
		{"anchored end", "1$", []string{"_test_pc01", "_test_pc11", "_test_pc21"}},
		{"no match", "zzz", nil},
		{"blank ignored", "   ", []string{"_test_pc01", "_test_pc02", "_test_pc11", "_test_pc12", "_test_pc21", "_test_pc22"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := repo.Search(ctx, repository.ItemQuery{Type: computer, Search: tt.search})
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, items)
				return
			}
			assert.Equal(t, tt.want, names(items))
		})
	}
}

func TestItemRepo_SearchEscapesWildcards(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()

	testutil.CreateItem(t, database, "UserTitle", "a_b")
	testutil.CreateItem(t, database, "UserTitle", "axb")
	testutil.CreateItem(t, database, "UserTitle", "100%")
	testutil.CreateItem(t, database, "UserTitle", "1000")

	items, err := repo.Search(ctx, repository.ItemQuery{Type: itemType(t, "UserTitle"), Search: "a_b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, names(items))

	items, err = repo.Search(ctx, repository.ItemQuery{Type: itemType(t, "UserTitle"), Search: "0%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100%"}, names(items))
}

func TestItemRepo_SearchID(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	doctype := itemType(t, "DocumentType")
	id := strconv.FormatInt(fx.ID("DocumentType", "markdown"), 10)

	items, err := repo.Search(ctx, repository.ItemQuery{Type: doctype, Search: id})
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = repo.Search(ctx, repository.ItemQuery{Type: doctype, Search: id, SearchID: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"markdown"}, names(items))
}

func TestItemRepo_SearchProductNumber(t *testing.T) {
	database := testutil.NewTestDB(t)
	testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)

	items, err := repo.Search(context.Background(), repository.ItemQuery{Type: itemType(t, "ComputerModel"), Search: "CMP_56"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "_test_computermodel_2", items[0].Name)
	assert.Equal(t, "CMP_567AEC68", items[0].ProductNumber)
}

func TestItemRepo_SearchTranslated(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	cat := itemType(t, "TaskCategory")

	items, err := repo.Search(ctx, repository.ItemQuery{Type: cat, Language: testutil.FixtureLanguage})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "FR - _cat_1", items[0].Name)
	assert.Equal(t, "Comment for category _cat_1", items[0].Comment, "untranslated comment falls back")
	assert.Equal(t, "FR - _cat_1 > FR - _subcat_1", items[1].CompleteName)
	assert.Equal(t, "FR - Commentaire pour sous-catégorie _subcat_1", items[1].Comment)

	items, err = repo.Search(ctx, repository.ItemQuery{Type: cat, Language: testutil.FixtureLanguage, Search: "FR - _sub"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, fx.ID("TaskCategory", "_subcat_1"), items[0].ID)

	// Languages without overrides fall back to the stored values.
	items, err = repo.Search(ctx, repository.ItemQuery{Type: cat, Language: "de_DE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"_cat_1", "_subcat_1"}, names(items))
}

func TestItemRepo_SearchFilters(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	computer := itemType(t, "Computer")

	items, err := repo.Search(ctx, repository.ItemQuery{
		Type:    computer,
		Filters: []domain.Filter{{Field: "name", Operator: domain.OpLike, Value: "%2%"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_pc02", "_test_pc12", "_test_pc21", "_test_pc22"}, names(items))

	items, err = repo.Search(ctx, repository.ItemQuery{
		Type: computer,
		Filters: []domain.Filter{{
			Field:    "entities_id",
			Operator: "in",
			Value:    []any{float64(fx.ID("Entity", "_test_child_1"))},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_pc11", "_test_pc12"}, names(items))

	_, err = repo.Search(ctx, repository.ItemQuery{
		Type:    computer,
		Filters: []domain.Filter{{Field: "password", Value: "x"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)
}

func TestItemRepo_OnlyAndExcludeIDs(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	computer := itemType(t, "Computer")

	items, err := repo.Search(ctx, repository.ItemQuery{
		Type:       computer,
		OnlyIDs:    []int64{fx.ID("Computer", "_test_pc01"), fx.ID("Computer", "_test_pc02")},
		ExcludeIDs: []int64{fx.ID("Computer", "_test_pc02")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_pc01"}, names(items))

	items, err = repo.Search(ctx, repository.ItemQuery{Type: computer, OnlyIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemRepo_GroupByEntityOrdering(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()

	testutil.CreateItem(t, database, "Computer", "_test_pc00", testutil.WithEntity(fx.ID("Entity", "_test_child_2")))

	items, err := repo.Search(ctx, repository.ItemQuery{Type: itemType(t, "Computer"), GroupByEntity: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"_test_pc01", "_test_pc02",
		"_test_pc11", "_test_pc12",
		"_test_pc00", "_test_pc21", "_test_pc22",
	}, names(items))
}

func TestItemRepo_PagingAndCount(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	loc := itemType(t, "Location")

	for i := 0; i < 12; i++ {
		testutil.CreateItem(t, database, "Location", "Room "+strconv.Itoa(10+i))
	}

	q := repository.ItemQuery{Type: loc, Offset: 10, Limit: 5}
	items, err := repo.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Room 20", "Room 21"}, names(items))

	n, err := repo.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 12, n, "count ignores paging")
}

func TestItemRepo_ExtraColumns(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()

	items, err := repo.Search(ctx, repository.ItemQuery{
		Type:    itemType(t, "Location"),
		OnlyIDs: []int64{fx.ID("Location", "_location01")},
		Columns: []string{"building", "entities_id"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]string{
		"building":    "",
		"entities_id": strconv.FormatInt(fx.ID("Entity", "_test_root_entity"), 10),
	}, items[0].Extra)

	_, err = repo.Search(ctx, repository.ItemQuery{Type: itemType(t, "Location"), Columns: []string{"secret"}})
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)
}

func TestItemRepo_Descendants(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	cat := itemType(t, "TaskCategory")

	ids, err := repo.Descendants(ctx, cat, fx.ID("TaskCategory", "_cat_1"))
	require.NoError(t, err)
	assert.Equal(t, []int64{fx.ID("TaskCategory", "_cat_1"), fx.ID("TaskCategory", "_subcat_1")}, ids)

	ids, err = repo.Descendants(ctx, cat, fx.ID("TaskCategory", "_subcat_1"))
	require.NoError(t, err)
	assert.Equal(t, []int64{fx.ID("TaskCategory", "_subcat_1")}, ids)

	ids, err = repo.Descendants(ctx, itemType(t, "Computer"), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids, "flat types have no descendants")
}

func TestItemRepo_FindTwin(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	ctx := context.Background()
	cat := itemType(t, "TaskCategory")

	id, err := repo.FindTwin(ctx, cat, "_subcat_1", fx.ID("TaskCategory", "_cat_1"), domain.RootEntityID)
	require.NoError(t, err)
	assert.Equal(t, fx.ID("TaskCategory", "_subcat_1"), id)

	_, err = repo.FindTwin(ctx, cat, "_subcat_1", 0, domain.RootEntityID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "same name under another parent")

	_, err = repo.FindTwin(ctx, cat, "_cat_1", 0, fx.ID("Entity", "_test_child_1"))
	assert.ErrorIs(t, err, domain.ErrNotFound, "same name in another entity")

	id, err = repo.FindTwin(ctx, itemType(t, "DocumentType"), "markdown", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, fx.ID("DocumentType", "markdown"), id)
}
