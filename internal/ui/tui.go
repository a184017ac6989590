// Package ui provides the terminal kanban board.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"smartkanban/internal/board"
	"smartkanban/internal/model"
)

// RunTUI shows the board until the user quits or ctx ends. The board is
// refreshed every interval while the program runs.
func RunTUI(ctx context.Context, b *board.Board, interval time.Duration, title string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go b.Poll(ctx, interval)

	m := NewModel(ctx, b, title)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithReportFocus())
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

type Model struct {
	ctx   context.Context
	board *board.Board
	title string

	col, row int
	// selected is the id of the highlighted task; the cursor follows it
	// across refreshes and moves.
	selected string
	width    int

	// At most one of prompt and confirm is set; while set, keys go to it.
	prompt  *prompt
	confirm *confirm
}

// prompt reads a line of text at the bottom of the board.
type prompt struct {
	label  string
	value  []rune
	submit func(string) tea.Cmd
}

// confirm asks a yes/no question; y runs the action, any other key cancels.
type confirm struct {
	question string
	action   func() tea.Cmd
}

type changedMsg struct{}

// doneMsg ends an action command. Failures are already on the board.
type doneMsg struct{}

// selectMsg puts the cursor on a task once it exists.
type selectMsg struct{ id string }

func NewModel(ctx context.Context, b *board.Board, title string) *Model {
	return &Model{ctx: ctx, board: b, title: title, width: 100}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), waitForChange(m.board.Changed()))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.FocusMsg:
		m.board.Wake()
	case changedMsg:
		m.follow()
		return m, waitForChange(m.board.Changed())
	case selectMsg:
		m.selected = msg.id
		m.follow()
	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case m.prompt != nil:
			return m, m.handleInput(msg)
		case m.confirm != nil:
			c := m.confirm
			m.confirm = nil
			if msg.String() == "y" {
				return m, c.action()
			}
			return m, nil
		}
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "ctrl+c", "q":
		return tea.Quit
	case "left", "h":
		m.cursor(m.col-1, m.row)
	case "right", "l":
		m.cursor(m.col+1, m.row)
	case "up", "k":
		m.cursor(m.col, m.row-1)
	case "down", "j":
		m.cursor(m.col, m.row+1)
	case "<", "H":
		return m.moveTo(m.col - 1)
	case ">", "L":
		return m.moveTo(m.col + 1)
	case "1", "2", "3", "4":
		return m.moveTo(int(key[0] - '1'))
	case "p":
		m.board.CycleFilter()
		m.cursor(m.col, 0)
	case "r":
		return m.refreshCmd()
	case "esc":
		m.board.DismissError()
	case "n":
		status := model.Statuses[m.col]
		m.ask("New task", "", func(title string) tea.Cmd { return m.createTask(title, status) })
	case "N":
		m.ask("New project", "", m.createProject)
	case "e":
		if task, ok := m.Selected(); ok {
			m.ask("Title", task.Title, func(title string) tea.Cmd { return m.rename(task.ID, title) })
		}
	case "d":
		if task, ok := m.Selected(); ok {
			m.confirm = &confirm{
				question: fmt.Sprintf("Delete %q? (y/n)", task.Title),
				action:   func() tea.Cmd { return m.deleteTask(task.ID) },
			}
		}
	}
	return nil
}

func (m *Model) ask(label, initial string, submit func(string) tea.Cmd) {
	m.prompt = &prompt{label: label, value: []rune(initial), submit: submit}
}

// handleInput edits the open prompt. Enter with only blanks cancels.
func (m *Model) handleInput(msg tea.KeyMsg) tea.Cmd {
	p := m.prompt
	switch msg.Type {
	case tea.KeyEnter:
		m.prompt = nil
		value := strings.TrimSpace(string(p.value))
		if value == "" {
			return nil
		}
		return p.submit(value)
	case tea.KeyEsc:
		m.prompt = nil
	case tea.KeyBackspace:
		if len(p.value) > 0 {
			p.value = p.value[:len(p.value)-1]
		}
	case tea.KeySpace:
		p.value = append(p.value, ' ')
	case tea.KeyRunes:
		p.value = append(p.value, msg.Runes...)
	}
	return nil
}

// createTask adds the task to the shown project, or to the default
// project when all projects are shown.
func (m *Model) createTask(title string, status model.Status) tea.Cmd {
	projectID := m.board.Filter()
	if projectID == "" {
		p, ok := m.board.DefaultProject()
		if !ok {
			return nil
		}
		projectID = p.ID
	}
	return func() tea.Msg {
		task, err := m.board.CreateTask(m.ctx, model.TaskInput{Title: title, Status: status, ProjectID: projectID})
		if err != nil {
			return doneMsg{}
		}
		return selectMsg{id: task.ID}
	}
}

func (m *Model) createProject(name string) tea.Cmd {
	return func() tea.Msg {
		_, _ = m.board.CreateProject(m.ctx, name, "")
		return doneMsg{}
	}
}

func (m *Model) rename(taskID, title string) tea.Cmd {
	return func() tea.Msg {
		_, _ = m.board.UpdateTask(m.ctx, taskID, model.TaskPatch{Title: &title})
		return doneMsg{}
	}
}

func (m *Model) deleteTask(taskID string) tea.Cmd {
	return func() tea.Msg {
		_ = m.board.DeleteTask(m.ctx, taskID)
		return doneMsg{}
	}
}

// Selected returns the highlighted task, if any.
func (m *Model) Selected() (model.Task, bool) {
	cols := m.board.Columns()
	if m.col < 0 || m.col >= len(cols) {
		return model.Task{}, false
	}
	tasks := cols[m.col].Tasks
	if m.row < 0 || m.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.row], true
}

func (m *Model) cursor(col, row int) {
	cols := m.board.Columns()
	m.col = clamp(col, 0, len(cols)-1)
	m.row = clamp(row, 0, len(cols[m.col].Tasks)-1)
	m.selected = ""
	if t, ok := m.Selected(); ok {
		m.selected = t.ID
	}
}

// follow puts the cursor back on the selected task after the board changed.
func (m *Model) follow() {
	if m.selected != "" {
		for c, col := range m.board.Columns() {
			for r, t := range col.Tasks {
				if t.ID == m.selected {
					m.col, m.row = c, r
					return
				}
			}
		}
	}
	m.cursor(m.col, m.row)
}

func (m *Model) moveTo(col int) tea.Cmd {
	task, ok := m.Selected()
	if !ok || col < 0 || col >= len(model.Statuses) {
		return nil
	}
	target := model.Statuses[col]
	m.selected = task.ID
	return func() tea.Msg {
		_ = m.board.Move(m.ctx, task.ID, target)
		return doneMsg{}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		_ = m.board.Refresh(m.ctx)
		return doneMsg{}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
