package seed

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/dropdown/internal/config"
	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/service"
	"github.com/alexanderramin/dropdown/internal/session"
	"github.com/alexanderramin/dropdown/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRight(t *testing.T) {
	r, err := ParseRight("read, update")
	require.NoError(t, err)
	assert.Equal(t, domain.RightRead|domain.RightUpdate, r)

	r, err = ParseRight("all")
	require.NoError(t, err)
	assert.Equal(t, domain.RightAll, r)

	_, err = ParseRight("read,fly")
	assert.ErrorContains(t, err, `unknown right "fly"`)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("entities:\n  - ref: a\n    name: A\n    colour: red\n"))
	assert.Error(t, err)

	ds, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, ds.Entities)
}

func TestValidate_Sample(t *testing.T) {
	ds, err := LoadFile("testdata/sample.yaml")
	require.NoError(t, err)
	assert.Empty(t, Validate(ds))
}

func TestValidate_Errors(t *testing.T) {
	ds := &Dataset{
		Entities: []EntitySeed{
			{Ref: "child", Name: "Child", Parent: "parent"},
			{Ref: "parent", Name: "Parent"},
			{Ref: "parent", Name: ""},
		},
		Profiles: []ProfileSeed{{Name: "P", Rights: map[string]string{"computer": "fly"}}},
		Users: []UserSeed{
			{Login: "u", Profiles: []AssignmentSeed{{Profile: "Q"}}},
			{Login: "u", Entity: "nowhere"},
		},
		Dropdowns: []DropdownSeed{
			{ItemType: "Computer", Name: "pc"},
			{ItemType: "DocumentType", CompleteName: "a > b"},
			{ItemType: "Nope", Name: "x"},
			{ItemType: "Location"},
		},
		Assets: []AssetSeed{{ItemType: "Printer", Name: "p", Location: "floor"}},
	}

	var msgs []string
	for _, err := range Validate(ds) {
		msgs = append(msgs, err.Error())
	}
	assert.ElementsMatch(t, []string{
		`entities[0].parent: ref "parent" not found (must appear earlier in entities list)`,
		`entities[2].name is required`,
		`entities[2].ref: duplicate ref "parent"`,
		`profiles[0].rights.computer: unknown right "fly"`,
		`users[0].profiles[0].profile: profile "Q" not found`,
		`users[1].login: duplicate login "u"`,
		`users[1].entity: ref "nowhere" not found`,
		`dropdowns[0].itemtype: Computer cannot be imported, list it under assets`,
		`dropdowns[1].completename: DocumentType is not a tree`,
		`dropdowns[2].itemtype: unknown item type "Nope"`,
		`dropdowns[3]: name or completename is required`,
		`assets[0].location: ref "floor" not found`,
	}, msgs)
}

func TestLoad_Sample(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	ds, err := LoadFile("testdata/sample.yaml")
	require.NoError(t, err)
	sum, err := NewLoader(uow, nil).Load(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, &Summary{
		Entities: 2, Profiles: 2, Users: 2, Dropdowns: 3, Translations: 1, Assets: 2, Netpoints: 1,
	}, sum)

	cfg := config.Default()
	cfg.Dropdown.Translate = true
	settings := service.SettingsFromConfig(&cfg)
	repos := service.NewSQLRepos(database)
	sessions := service.NewSessionService(repos, session.NewStore(time.Hour), settings)
	dropdown := service.NewDropdownService(repos, settings)

	alice, err := sessions.Login(ctx, contract.LoginRequest{Login: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "fr_FR", alice.Language)

	req := contract.NewValueRequest("Location")
	req.IDORToken = alice.NewIDORToken("Location", "")
	req.SearchText = "1"
	res, err := dropdown.Value(ctx, alice, req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	var texts []string
	var walk func([]contract.Option)
	walk = func(opts []contract.Option) {
		for _, o := range opts {
			if o.ID != nil {
				texts = append(texts, o.Text)
			}
			walk(o.Children)
		}
	}
	walk(res.Results)
	assert.Contains(t, texts, "Étage 1")

	bob, err := sessions.Login(ctx, contract.LoginRequest{Login: "bob"})
	require.NoError(t, err)
	assert.False(t, bob.Rights.Have("computer", domain.RightUpdate))
	assert.True(t, bob.Rights.Have("location", domain.RightUpdate))
}

func TestLoad_InvalidDataWritesNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	ds := &Dataset{Entities: []EntitySeed{{Ref: "a"}}}

	_, err := NewLoader(uow, nil).Load(context.Background(), ds)
	require.ErrorContains(t, err, "entities[0].name is required")

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM glpi_entities`).Scan(&n))
	assert.Equal(t, 1, n, "only the root entity")
}

func TestLoad_RollsBackAccountsOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthWriteUoW{DB: database, FailOn: 2}
	ds := &Dataset{
		Entities: []EntitySeed{{Ref: "a", Name: "A"}, {Ref: "b", Name: "B"}},
	}

	_, err := NewLoader(uow, nil).Load(context.Background(), ds)
	require.Error(t, err)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM glpi_entities`).Scan(&n))
	assert.Equal(t, 1, n)
}

func countRows(t *testing.T, database *db.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestLoad_AssetFailureWritesNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	// writes: entity A, location Floor, pc1, pc2
	uow := &testutil.FailOnNthWriteUoW{DB: database, FailOn: 4}
	ds := &Dataset{
		Entities:  []EntitySeed{{Ref: "a", Name: "A"}},
		Dropdowns: []DropdownSeed{{ItemType: "Location", Name: "Floor", Entity: "a"}},
		Assets: []AssetSeed{
			{ItemType: "Computer", Name: "pc1", Entity: "a"},
			{ItemType: "Computer", Name: "pc2", Entity: "a"},
		},
	}

	_, err := NewLoader(uow, nil).Load(context.Background(), ds)
	require.Error(t, err)

	assert.Equal(t, 1, countRows(t, database, "glpi_entities"), "only the root entity")
	assert.Zero(t, countRows(t, database, "glpi_locations"))
	assert.Zero(t, countRows(t, database, "glpi_computers"))
}

func TestLoad_TwiceReusesRows(t *testing.T) {
	database := testutil.NewTestDB(t)
	loader := NewLoader(testutil.NewTestUoW(database), nil)
	ctx := context.Background()

	ds, err := LoadFile("testdata/sample.yaml")
	require.NoError(t, err)
	first, err := loader.Load(ctx, ds)
	require.NoError(t, err)

	tables := []string{
		"glpi_entities", "glpi_profiles", "glpi_users", "glpi_profiles_users",
		"glpi_locations", "glpi_computers", "glpi_netpoints", "glpi_dropdowntranslations",
	}
	before := make(map[string]int, len(tables))
	for _, table := range tables {
		before[table] = countRows(t, database, table)
	}

	second, err := loader.Load(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	for _, table := range tables {
		assert.Equal(t, before[table], countRows(t, database, table), table)
	}
}

func TestLoad_InvalidatesCaches(t *testing.T) {
	database := testutil.NewTestDB(t)
	tree := repository.NewEntityTree(repository.NewSQLEntityRepo(database, database.Dialect))
	ctx := context.Background()

	n, err := tree.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	ds, err := LoadFile("testdata/sample.yaml")
	require.NoError(t, err)
	_, err = NewLoader(testutil.NewTestUoW(database), nil).WithCaches(tree).Load(ctx, ds)
	require.NoError(t, err)

	n, err = tree.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
