// Package tui is the interactive todo list. It mirrors the backend's records
// and turns key presses into remote calls, re-fetching the whole list after
// every add and delete.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/bridge"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/view"
)

// Remote is the backend as the list sees it. *client.Client satisfies it.
type Remote interface {
	AddTodo(ctx context.Context, description string) error
	GetTodos(ctx context.Context) ([]model.Todo, error)
	UpdateTodo(ctx context.Context, todo model.Todo) error
	DeleteTodo(ctx context.Context, id int64) error
}

// rowItem adapts view.Row to bubbles/list.Item
type rowItem struct{ row view.Row }

func (i rowItem) FilterValue() string { return i.row.Description }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	fmt.Fprint(w, it.row.Line(index == m.Index()))
}

type focus int

const (
	focusList focus = iota
	focusInput
)

// Model implements tea.Model.
type Model struct {
	ctx    context.Context
	remote Remote
	logger *log.Logger
	keys   keyMap

	list  list.Model
	input textinput.Model
	focus focus

	width, height int
}

// New builds the list. Nothing is fetched until Init.
func New(ctx context.Context, remote Remote, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keys := defaultKeys()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = view.Header(nil)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = view.TitleStyle
	l.Styles.HelpStyle = view.HelpStyle
	l.Styles.PaginationStyle = view.HelpStyle
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 0

	return Model{
		ctx:    ctx,
		remote: remote,
		logger: logger,
		keys:   keys,
		list:   l,
		input:  ti,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, remote Remote, logger *log.Logger) error {
	p := tea.NewProgram(New(ctx, remote, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Rows is what the list currently shows, top to bottom.
func (m Model) Rows() []view.Row {
	items := m.list.Items()
	rows := make([]view.Row, 0, len(items))
	for _, it := range items {
		if r, ok := it.(rowItem); ok {
			rows = append(rows, r.row)
		}
	}
	return rows
}

// InputValue is the text currently typed into the add field.
func (m Model) InputValue() string { return m.input.Value() }

func (m Model) Init() tea.Cmd { return m.render() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-7)
		m.input.Width = msg.Width - 10
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SubmitMsg:
		// cleared now, before the add-call resolves
		m.input.SetValue("")
		return m, m.add(msg.Text)

	case addedMsg:
		return m, m.render()

	case ToggleStatusMsg:
		// the checkbox flips itself, as a native one would; no re-fetch
		cmd := m.setChecked(msg.ID, msg.Status == model.Complete)
		return m, tea.Batch(cmd, m.update(model.Todo{ID: msg.ID, Description: msg.Description, Status: msg.Status}))

	case updatedMsg:
		m.logger.Debug("updated", "id", msg.id)
		return m, nil

	case DeleteMsg:
		return m, m.deleteThenRender(msg.ID)

	case RenderMsg:
		return m, m.render()

	case renderedMsg:
		// whichever render arrives last wins
		rows := view.Rows(msg.todos)
		items := make([]list.Item, 0, len(rows))
		for _, r := range rows {
			items = append(items, rowItem{r})
		}
		m.list.Title = view.Header(rows)
		cmd := m.list.SetItems(items)
		// keep the cursor on a row when the list shrank under it
		if n := len(items); n > 0 && m.list.Index() >= n {
			m.list.Select(n - 1)
		}
		return m, cmd

	case errMsg:
		m.logger.Error("remote call failed", "cmd", msg.cmd, "err", msg.err)
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.focus == focusInput {
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.Update(SubmitMsg{Text: m.input.Value()})
		case key.Matches(msg, m.keys.Back):
			m.focus = focusList
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.focus = focusInput
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Refresh):
		return m.Update(RenderMsg{})
	case key.Matches(msg, m.keys.Toggle):
		if r, ok := m.selected(); ok {
			return m.Update(ToggleStatusMsg{ID: r.ID, Description: r.Description, Status: r.Status().Toggle()})
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.selected(); ok {
			return m.Update(DeleteMsg{ID: r.ID})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selected() (view.Row, bool) {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return view.Row{}, false
	}
	return it.row, true
}

func (m *Model) setChecked(id int64, checked bool) tea.Cmd {
	for i, it := range m.list.Items() {
		r, ok := it.(rowItem)
		if !ok || r.row.ID != id {
			continue
		}
		r.row.Checked = checked
		cmd := m.list.SetItem(i, r)
		m.list.Title = view.Header(m.Rows())
		return cmd
	}
	return nil
}

// ---- remote calls, each run by Bubble Tea off the update loop ----

func (m Model) render() tea.Cmd {
	ctx, remote := m.ctx, m.remote
	return func() tea.Msg {
		todos, err := remote.GetTodos(ctx)
		if err != nil {
			return errMsg{cmd: bridge.CmdGetTodos, err: err}
		}
		return renderedMsg{todos: todos}
	}
}

func (m Model) add(text string) tea.Cmd {
	ctx, remote := m.ctx, m.remote
	return func() tea.Msg {
		if err := remote.AddTodo(ctx, text); err != nil {
			return errMsg{cmd: bridge.CmdAddTodo, err: err}
		}
		return addedMsg{}
	}
}

func (m Model) update(t model.Todo) tea.Cmd {
	ctx, remote := m.ctx, m.remote
	return func() tea.Msg {
		if err := remote.UpdateTodo(ctx, t); err != nil {
			return errMsg{cmd: bridge.CmdUpdateTodo, err: err}
		}
		return updatedMsg{id: t.ID}
	}
}

// deleteThenRender awaits the delete and then a full fetch in one command.
func (m Model) deleteThenRender(id int64) tea.Cmd {
	ctx, remote := m.ctx, m.remote
	return func() tea.Msg {
		if err := remote.DeleteTodo(ctx, id); err != nil {
			return errMsg{cmd: bridge.CmdDeleteTodo, err: err}
		}
		todos, err := remote.GetTodos(ctx)
		if err != nil {
			return errMsg{cmd: bridge.CmdGetTodos, err: err}
		}
		return renderedMsg{todos: todos}
	}
}

func (m Model) View() string {
	content := m.list.View()

	title := "Add task"
	if m.focus == focusInput {
		title += view.MutedStyle.Render("  enter submit · esc back")
	} else {
		title += view.MutedStyle.Render("  press a to type")
	}
	content += "\n" + view.PanelStyle.Render(title+"\n"+m.input.View())
	return view.PanelStyle.Render(content)
}
