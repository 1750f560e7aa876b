package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// computerSearch searches the fixture computers as _test_user.
func computerSearch(t *testing.T) (searchFunc, *App) {
	t.Helper()
	app, _ := testApp(t)
	ctx := context.Background()
	sess, err := app.Sessions.Login(ctx, contract.LoginRequest{Login: "_test_user"})
	require.NoError(t, err)
	token := sess.NewIDORToken("Computer", "")

	return func(ctx context.Context, text string, page int) (*contract.Results, error) {
		req := contract.NewValueRequest("Computer")
		req.IDORToken = token
		req.SearchText = text
		req.Page = page
		req.PageLimit = pickPageSize
		return app.Dropdown.Value(ctx, sess, req)
	}, app
}

func newPickDriver(t *testing.T, search searchFunc) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, newPickModel(context.Background(), "Computer", search), teatest.WithSize(80, 24))
	d.DrainInit()
	return d
}

func pickState(t *testing.T, d *teatest.Driver) pickModel {
	t.Helper()
	m, ok := d.Model.(pickModel)
	require.True(t, ok)
	return m
}

func TestPick_TypeAndChoose(t *testing.T) {
	search, _ := computerSearch(t)
	d := newPickDriver(t, search)

	d.Type("_test_pc2")
	view := d.View()
	assert.Contains(t, view, "_test_pc21")
	assert.Contains(t, view, "_test_pc22")
	assert.NotContains(t, view, "_test_pc11")

	d.Keys("down")
	d.Keys("enter")

	m := pickState(t, d)
	require.NotNil(t, m.chosen)
	assert.Equal(t, "_test_pc22", m.chosen.Text)
	assert.True(t, d.Quitting)
	assert.Zero(t, d.Skipped)
}

func TestPick_CursorSkipsGroups(t *testing.T) {
	search, _ := computerSearch(t)
	d := newPickDriver(t, search)

	d.Type("_test_pc2")
	m := pickState(t, d)
	require.GreaterOrEqual(t, m.cursor, 0)
	assert.False(t, m.rows[m.cursor].group)

	d.Keys("up")
	d.Keys("up")
	assert.Equal(t, m.cursor, pickState(t, d).cursor)
}

func TestPick_BackspaceWidensSearch(t *testing.T) {
	search, _ := computerSearch(t)
	d := newPickDriver(t, search)

	d.Type("_test_pc22")
	assert.NotContains(t, d.View(), "_test_pc21")

	d.Keys("backspace")
	assert.Contains(t, d.View(), "_test_pc21")
}

func TestPick_EscCancels(t *testing.T) {
	search, _ := computerSearch(t)
	d := newPickDriver(t, search)

	d.Keys("esc")

	m := pickState(t, d)
	assert.Nil(t, m.chosen)
	assert.True(t, m.quitting)
	assert.Empty(t, d.View())
}

func TestPick_NoResults(t *testing.T) {
	search, _ := computerSearch(t)
	d := newPickDriver(t, search)

	d.Type("zzz")
	assert.Contains(t, d.View(), "No results.")

	d.Keys("enter")
	assert.Nil(t, pickState(t, d).chosen)
	assert.False(t, d.Quitting)
}

func TestPick_ShowsSearchError(t *testing.T) {
	d := newPickDriver(t, func(context.Context, string, int) (*contract.Results, error) {
		return nil, errors.New("boom")
	})

	assert.Contains(t, d.View(), "Error: boom")
}

func TestPick_DropsStaleResults(t *testing.T) {
	search, _ := computerSearch(t)
	d := newPickDriver(t, search)
	before := pickState(t, d).rows

	d.Send(resultsMsg{seq: -1, results: &contract.Results{}})
	assert.Equal(t, before, pickState(t, d).rows)
}

func TestPick_Paging(t *testing.T) {
	var pages []int
	full := make([]contract.Option, pickPageSize)
	for i := range full {
		full[i] = contract.Option{ID: int64(i + 1), Text: "row"}
	}
	d := newPickDriver(t, func(_ context.Context, _ string, page int) (*contract.Results, error) {
		pages = append(pages, page)
		return &contract.Results{Results: full, Count: len(full)}, nil
	})

	d.Keys("pgup")
	d.Keys("pgdown")
	d.Keys("pgup")

	assert.Equal(t, []int{1, 2, 1}, pages)
	assert.Contains(t, d.View(), "page 1")
}

func TestFlattenOptions(t *testing.T) {
	rows := flattenOptions([]contract.Option{
		{ID: int64(0), Text: "-----"},
		{Text: "Root entity", Children: []contract.Option{
			{ID: int64(1), Text: "_cat_1", Level: contract.Lvl(1)},
			{ID: int64(2), Text: "_subcat_1", Level: contract.Lvl(2)},
		}},
		{ID: int64(3), Text: "parent", Level: contract.Lvl(1), Disabled: true},
	})

	require.Len(t, rows, 5)
	assert.Equal(t, 0, rows[0].level)
	assert.True(t, rows[1].group)
	assert.Equal(t, 1, rows[2].level)
	assert.Equal(t, 2, rows[3].level)
	assert.False(t, rows[4].selectable())
}
