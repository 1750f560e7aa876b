package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/dropdown/internal/cli/formatter"
	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const pickPageSize = 15

// searchFunc fetches one page of options for the text typed so far.
type searchFunc func(ctx context.Context, text string, page int) (*contract.Results, error)

// pickRow is one line of the flattened option tree.
type pickRow struct {
	option contract.Option
	level  int
	group  bool
}

func (r pickRow) selectable() bool {
	return !r.group && !r.option.Disabled
}

// resultsMsg carries the answer of a search. seq identifies the query so
// answers to stale input are dropped.
type resultsMsg struct {
	seq     int
	results *contract.Results
	err     error
}

var pickKeys = struct {
	up, down, next, prev, choose, quit key.Binding
}{
	up:     key.NewBinding(key.WithKeys("up", "ctrl+k")),
	down:   key.NewBinding(key.WithKeys("down", "ctrl+j")),
	next:   key.NewBinding(key.WithKeys("pgdown", "ctrl+n")),
	prev:   key.NewBinding(key.WithKeys("pgup", "ctrl+p")),
	choose: key.NewBinding(key.WithKeys("enter")),
	quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c")),
}

// pickModel is an interactive search-as-you-type dropdown.
type pickModel struct {
	ctx    context.Context
	title  string
	search searchFunc
	input  textinput.Model

	rows   []pickRow
	count  int
	page   int
	cursor int
	seq    int
	err    error

	chosen   *contract.Option
	quitting bool
}

func newPickModel(ctx context.Context, title string, search searchFunc) pickModel {
	ti := textinput.New()
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()
	ti.Prompt = "› "
	ti.Placeholder = "type to search"
	ti.CharLimit = 200
	return pickModel{ctx: ctx, title: title, search: search, input: ti, page: 1}
}

func (m pickModel) Init() tea.Cmd {
	return m.query()
}

func (m pickModel) query() tea.Cmd {
	seq, text, page := m.seq, m.input.Value(), m.page
	return func() tea.Msg {
		res, err := m.search(m.ctx, text, page)
		return resultsMsg{seq: seq, results: res, err: err}
	}
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		return m, nil

	case resultsMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.err = msg.err
		m.rows, m.count = nil, 0
		if msg.results != nil {
			m.rows = flattenOptions(msg.results.Results)
			m.count = msg.results.Count
		}
		m.cursor = m.nextSelectable(-1, 1)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pickKeys.quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, pickKeys.choose):
			if m.cursor >= 0 && m.cursor < len(m.rows) {
				opt := m.rows[m.cursor].option
				m.chosen = &opt
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, pickKeys.up):
			if c := m.nextSelectable(m.cursor, -1); c >= 0 {
				m.cursor = c
			}
			return m, nil
		case key.Matches(msg, pickKeys.down):
			if c := m.nextSelectable(m.cursor, 1); c >= 0 {
				m.cursor = c
			}
			return m, nil
		case key.Matches(msg, pickKeys.next):
			if m.count < pickPageSize {
				return m, nil
			}
			m.page++
			m.seq++
			return m, m.query()
		case key.Matches(msg, pickKeys.prev):
			if m.page == 1 {
				return m, nil
			}
			m.page--
			m.seq++
			return m, m.query()
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() == before {
			return m, cmd
		}
		m.page = 1
		m.seq++
		return m, tea.Batch(cmd, m.query())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// nextSelectable returns the first selectable row after from in direction
// dir, or -1.
func (m pickModel) nextSelectable(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.rows); i += dir {
		if m.rows[i].selectable() {
			return i
		}
	}
	return -1
}

func (m pickModel) View() string {
	if m.quitting || m.chosen != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatter.Header(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("No results."))
		b.WriteString("\n")
		return b.String()
	}
	for i, row := range m.rows {
		indent := strings.Repeat("  ", row.level)
		switch {
		case row.group:
			b.WriteString("  " + indent + formatter.StyleGroup.Render(row.option.Text))
		case i == m.cursor:
			b.WriteString(formatter.StyleSelected.Render("› " + indent + row.option.Text))
		case row.option.Disabled:
			b.WriteString("  " + indent + formatter.Dim(row.option.Text))
		default:
			b.WriteString("  " + indent + row.option.Text)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(formatter.Dim(fmt.Sprintf("page %d  ·  ↑/↓ move  ·  pgup/pgdn page  ·  enter choose  ·  esc cancel", m.page)))
	b.WriteString("\n")
	return b.String()
}

// flattenOptions lays a result tree out as rows. Groups keep their
// children below them, one level deeper.
func flattenOptions(opts []contract.Option) []pickRow {
	var rows []pickRow
	var walk func(opts []contract.Option, base int)
	walk = func(opts []contract.Option, base int) {
		for _, o := range opts {
			if o.ID == nil && len(o.Children) > 0 {
				rows = append(rows, pickRow{option: o, level: base, group: true})
				walk(o.Children, base+1)
				continue
			}
			level := base
			if o.Level != nil && *o.Level > 1 {
				level += *o.Level - 1
			}
			rows = append(rows, pickRow{option: o, level: level})
		}
	}
	walk(opts, 0)
	return rows
}

func newPickCmd(app *App) *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "pick ITEMTYPE",
		Short: "Search a dropdown interactively and print the chosen ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := app.session(ctx)
			if err != nil {
				return err
			}
			restrict, err := contract.ParseEntityRestrict(entity)
			if err != nil {
				return err
			}
			itemtype := args[0]
			token := sess.NewIDORToken(itemtype, restrict.String())
			search := func(ctx context.Context, text string, page int) (*contract.Results, error) {
				req := contract.NewValueRequest(itemtype)
				req.IDORToken = token
				req.SearchText = text
				req.Page = page
				req.PageLimit = pickPageSize
				req.EntityRestrict = restrict
				return app.Dropdown.Value(ctx, sess, req)
			}

			p := tea.NewProgram(
				newPickModel(ctx, itemtype, search),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.ErrOrStderr()),
			)
			final, err := p.Run()
			if err != nil {
				return err
			}
			m := final.(pickModel)
			if m.chosen == nil {
				return nil
			}
			return app.render(cmd.OutOrStdout(), m.chosen, func() string {
				return fmt.Sprintf("%v\n", m.chosen.ID)
			})
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Entity restriction")
	return cmd
}
