package repository_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateNames(cs []repository.ConnectCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestConnectRepo_Candidates(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLConnectRepo(database, database.Dialect)
	ctx := context.Background()
	printer := itemType(t, "Printer")

	got, err := repo.Candidates(ctx, repository.ConnectQuery{Type: printer})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_printer_all", "_test_printer_ent0", "_test_printer_ent1", "_test_printer_ent2"}, candidateNames(got))
	assert.Equal(t, "Root entity > _test_root_entity", got[0].EntityCompleteName)
	assert.Equal(t, "Root entity > _test_root_entity > _test_child_2", got[3].EntityCompleteName)

	pc := fx.ID("Computer", "_test_pc01")
	require.NoError(t, repo.Connect(ctx, pc, "Printer", fx.ID("Printer", "_test_printer_ent0")))
	require.NoError(t, repo.Connect(ctx, pc, "Printer", fx.ID("Printer", "_test_printer_all")))

	got, err = repo.Candidates(ctx, repository.ConnectQuery{Type: printer})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_printer_all", "_test_printer_ent1", "_test_printer_ent2"}, candidateNames(got),
		"connected devices drop out unless global")

	got, err = repo.Candidates(ctx, repository.ConnectQuery{Type: printer, OnlyGlobal: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_printer_all"}, candidateNames(got))
}

func TestConnectRepo_CandidatesFiltered(t *testing.T) {
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)
	repo := repository.NewSQLConnectRepo(database, database.Dialect)
	ctx := context.Background()
	printer := itemType(t, "Printer")

	testutil.CreateItem(t, database, "Printer", "lab printer",
		testutil.WithEntity(fx.ID("Entity", "_test_child_1")), testutil.WithSerial("SN-4471", "INV-09"))

	got, err := repo.Candidates(ctx, repository.ConnectQuery{Type: printer, Search: "ent0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"_test_printer_ent0"}, candidateNames(got))

	got, err = repo.Candidates(ctx, repository.ConnectQuery{Type: printer, Search: "INV-0"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SN-4471", got[0].Serial)
	assert.Equal(t, "INV-09", got[0].OtherSerial)

	got, err = repo.Candidates(ctx, repository.ConnectQuery{
		Type:       printer,
		Scope:      &repository.EntityScope{IDs: []int64{fx.ID("Entity", "_test_child_1")}},
		ExcludeIDs: []int64{fx.ID("Printer", "_test_printer_ent1")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lab printer"}, candidateNames(got))
}
