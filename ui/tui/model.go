// Package tui is the terminal front end of the task tracker.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/ui/viewstate"
)

// Form field indices.
const (
	fieldName = iota
	fieldDescription
	fieldStatus
	fieldCount
)

// opDoneMsg reports that a controller call finished.
type opDoneMsg struct {
	err error
}

// dismissMsg clears notification seq when its timer fires.
type dismissMsg struct {
	seq uint64
}

type form struct {
	name        string
	description string
	status      task.Status
	focus       int
}

func formFrom(in viewstate.Input) form {
	return form{name: in.Name, description: in.Description, status: in.Status}
}

func (f form) input() viewstate.Input {
	return viewstate.Input{Name: f.name, Description: f.description, Status: f.status}
}

type model struct {
	ctrl  *viewstate.Controller
	state viewstate.State

	cursor  int
	form    form
	confirm *task.Task
	busy    bool
	width   int

	// scheduled is the newest notification with a pending dismiss timer.
	scheduled uint64
}

func newModel(ctrl *viewstate.Controller) model {
	return model{ctrl: ctrl, state: ctrl.Snapshot()}
}

// run executes fn off the UI loop.
func (m model) run(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: fn(context.Background())}
	}
}

func (m model) Init() tea.Cmd {
	return m.run(m.ctrl.Refresh)
}

// sync reloads the controller state and schedules the dismiss timer
// for a notification that has none yet.
func (m model) sync() (model, tea.Cmd) {
	m.state = m.ctrl.Snapshot()

	rows := len(m.state.View().Rows)
	if m.cursor >= rows {
		m.cursor = max(rows-1, 0)
	}

	n := m.state.Notification
	if n == nil || n.Seq <= m.scheduled {
		return m, nil
	}
	m.scheduled = n.Seq
	seq := n.Seq
	return m, tea.Tick(viewstate.NotificationTTL, func(_ time.Time) tea.Msg {
		return dismissMsg{seq: seq}
	})
}

func (m model) selected() (task.Task, bool) {
	rows := m.state.View().Rows
	if m.cursor < 0 || m.cursor >= len(rows) {
		return task.Task{}, false
	}
	return rows[m.cursor], true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case opDoneMsg:
		m.busy = false
		return m.sync()

	case dismissMsg:
		m.ctrl.Dismiss(msg.seq)
		return m.sync()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.confirm != nil:
			return m.updateConfirm(msg)
		case m.state.FormOpen:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.state.View().Rows)-1 {
			m.cursor++
		}
		return m, nil
	case "r":
		m.busy = true
		return m, m.run(m.ctrl.Refresh)
	case "f":
		m.ctrl.SetFilter(m.state.Filter.Next())
		m.cursor = 0
		return m.sync()
	case "s":
		m.ctrl.SetSort(m.state.Sort.Next())
		return m.sync()
	case "n":
		m.ctrl.StartCreate()
		m.form = form{}
		return m.sync()
	}

	t, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch msg.String() {
	case "e", "enter":
		m.ctrl.StartEdit(t)
		m.form = formFrom(viewstate.InputFrom(t))
		return m.sync()
	case " ", "space", "t":
		m.busy = true
		return m, m.run(func(ctx context.Context) error {
			return m.ctrl.Toggle(ctx, t)
		})
	case "d":
		m.confirm = &t
		return m, nil
	}
	return m, nil
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := *m.confirm
	m.confirm = nil

	switch msg.String() {
	case "y", "Y":
		m.busy = true
		return m, m.run(func(ctx context.Context) error {
			return m.ctrl.Remove(ctx, target.ID)
		})
	}
	return m, nil
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.ctrl.CancelEdit()
		return m.sync()
	case tea.KeyTab, tea.KeyDown:
		m.form.focus = (m.form.focus + 1) % fieldCount
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.form.focus = (m.form.focus - 1 + fieldCount) % fieldCount
		return m, nil
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		m.form = m.form.backspace()
		return m, nil
	case tea.KeyLeft, tea.KeyRight:
		if m.form.focus == fieldStatus {
			m.form.status = m.form.status.Opposite()
		}
		return m, nil
	case tea.KeySpace:
		if m.form.focus == fieldStatus {
			m.form.status = m.form.status.Opposite()
			return m, nil
		}
		m.form = m.form.insert(" ")
		return m, nil
	case tea.KeyRunes:
		m.form = m.form.insert(string(msg.Runes))
		return m, nil
	}
	return m, nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	in := m.form.input()
	editing := m.state.Editing

	m.busy = true
	return m, m.run(func(ctx context.Context) error {
		if editing != nil {
			return m.ctrl.Update(ctx, editing.ID, in)
		}
		return m.ctrl.Create(ctx, in)
	})
}

func (f form) insert(s string) form {
	switch f.focus {
	case fieldName:
		f.name += s
	case fieldDescription:
		f.description += s
	}
	return f
}

func (f form) backspace() form {
	trim := func(s string) string {
		r := []rune(s)
		if len(r) == 0 {
			return s
		}
		return string(r[:len(r)-1])
	}
	switch f.focus {
	case fieldName:
		f.name = trim(f.name)
	case fieldDescription:
		f.description = trim(f.description)
	}
	return f
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" Todo "))
	c := m.state.View().Counts
	b.WriteString(counterStyle.Render(fmt.Sprintf("  Total: %d  Pending: %d  Done: %d", c.Total, c.Pending, c.Done)))
	b.WriteString("\n\n")

	if n := m.state.Notification; n != nil {
		b.WriteString(styleForNotification(n.Kind).Render(n.Message))
		b.WriteString("\n\n")
	}

	if m.state.FormOpen {
		b.WriteString(m.viewForm())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("tab: next field | space/←/→: status | enter: save | esc: cancel"))
		return b.String()
	}

	b.WriteString(m.viewList())
	b.WriteString("\n")

	if m.confirm != nil {
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %q? (y/n)", m.confirm.Name)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("n: new | e: edit | space: toggle | d: delete | f: filter | s: sort | r: refresh | q: quit"))
	return b.String()
}

func (m model) viewList() string {
	var b strings.Builder
	v := m.state.View()

	b.WriteString(mutedStyle.Render(fmt.Sprintf("filter: %s  sort: %s", v.Filter, v.Sort)))
	if m.state.Loading || m.busy {
		b.WriteString(mutedStyle.Render("  loading..."))
	}
	b.WriteString("\n")

	if len(v.Rows) == 0 {
		b.WriteString(mutedStyle.Render(v.Empty.Message()))
		return panelStyle.Render(b.String())
	}

	for i, t := range v.Rows {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		box := "[ ]"
		if t.Status == task.StatusDone {
			box = "[x]"
		}
		line := styleForStatus(t.Status).Render(fmt.Sprintf("%s %s", box, t.Name))
		if t.Description != "" {
			line += mutedStyle.Render("  " + t.Description)
		}
		b.WriteString(prefix + line)
		if i < len(v.Rows)-1 {
			b.WriteString("\n")
		}
	}
	return panelStyle.Render(b.String())
}

func (m model) viewForm() string {
	title := "New task"
	if m.state.Editing != nil {
		title = "Edit task"
	}

	label := func(field int, name string) string {
		if m.form.focus == field {
			return focusStyle.Render("> " + name)
		}
		return "  " + name
	}

	lines := []string{
		focusStyle.Render(title),
		"",
		label(fieldName, "Name:        ") + m.form.name,
		label(fieldDescription, "Description: ") + m.form.description,
		label(fieldStatus, "Status:      ") + styleForStatus(m.form.status).Render(m.form.status.String()),
	}
	return formStyle.Render(strings.Join(lines, "\n"))
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctrl *viewstate.Controller) error {
	p := tea.NewProgram(newModel(ctrl), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
