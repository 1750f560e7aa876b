package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/dropdown/internal/config"
	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/session"
	"github.com/alexanderramin/dropdown/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db       *db.DB
	fx       *testutil.Fixture
	repos    Repos
	settings Settings
	store    *session.Store
	dropdown DropdownService
	sessions SessionService
	imports  ImportService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	fx := testutil.SeedFixture(t, database)

	cfg := config.Default()
	cfg.Dropdown.Translate = true
	settings := SettingsFromConfig(&cfg)
	repos := NewSQLRepos(database)
	store := session.NewStore(time.Hour)

	return &testEnv{
		db:       database,
		fx:       fx,
		repos:    repos,
		settings: settings,
		store:    store,
		dropdown: NewDropdownService(repos, settings),
		sessions: NewSessionService(repos, store, settings),
		imports:  NewImportService(testutil.NewTestUoW(database)),
	}
}

type loginOption func(*contract.LoginRequest)

func withShowIDs() loginOption {
	return func(r *contract.LoginRequest) {
		show := true
		r.ShowIDs = &show
	}
}

func withFlatTree() loginOption {
	return func(r *contract.LoginRequest) {
		flat := true
		r.FlatTree = &flat
	}
}

func withLanguage(code string) loginOption {
	return func(r *contract.LoginRequest) {
		r.Language = code
	}
}

func (e *testEnv) login(t *testing.T, login string, opts ...loginOption) *session.Session {
	t.Helper()
	req := contract.LoginRequest{Login: login}
	for _, opt := range opts {
		opt(&req)
	}
	sess, err := e.sessions.Login(context.Background(), req)
	require.NoError(t, err)
	return sess
}

// valueRequest builds a Value request carrying a valid token for its
// itemtype and entity restriction.
func valueRequest(sess *session.Session, itemtype string, mods ...func(*contract.ValueRequest)) contract.ValueRequest {
	req := contract.NewValueRequest(itemtype)
	for _, mod := range mods {
		mod(&req)
	}
	req.IDORToken = sess.NewIDORToken(itemtype, req.EntityRestrict.String())
	return req
}

func requireOptions(t *testing.T, want, got []contract.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func lvl(n int) *int {
	return contract.Lvl(n)
}
