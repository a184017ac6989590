package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"smartkanban/internal/board"
	"smartkanban/internal/model"
)

var statusLabels = map[model.Status]string{
	model.StatusTodo:       "To Do",
	model.StatusInProgress: "In Progress",
	model.StatusChecking:   "Checking",
	model.StatusCompleted:  "Completed",
}

var priorityColors = map[model.Priority]lipgloss.Color{
	model.PriorityLow:    lipgloss.Color("#22c55e"),
	model.PriorityMedium: lipgloss.Color("#f59e0b"),
	model.PriorityHigh:   lipgloss.Color("#ef4444"),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366f1"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#b91c1c")).Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	columnStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4b5563")).Padding(0, 1)
	focusStyle   = columnStyle.BorderForeground(lipgloss.Color("#6366f1"))
	selectStyle  = lipgloss.NewStyle().Reverse(true)
	pendingStyle = lipgloss.NewStyle().Faint(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366f1"))
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "  " + m.filterLabel() + "\n")

	if err := m.board.Err(); err != nil {
		b.WriteString(errorStyle.Render("Error: "+err.Error()+"  (esc to dismiss)") + "\n")
	}
	if !m.board.Loaded() {
		b.WriteString("\nLoading...\n")
		b.WriteString(helpStyle.Render(helpLine) + "\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.renderColumns())
	b.WriteString("\n")
	switch {
	case m.prompt != nil:
		b.WriteString(promptStyle.Render(m.prompt.label+": ") + string(m.prompt.value) + "█\n")
	case m.confirm != nil:
		b.WriteString(promptStyle.Render(m.confirm.question) + "\n")
	default:
		b.WriteString(helpStyle.Render(helpLine) + "\n")
	}
	return b.String()
}

const helpLine = "←→↑↓ select · </> move · 1-4 drop on column · n new · e edit · d delete · N new project · p project · r refresh · q quit"

func (m *Model) filterLabel() string {
	id := m.board.Filter()
	if id == "" {
		return "All projects"
	}
	p, ok := m.board.Project(id)
	if !ok {
		return "All projects"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("● " + p.Name)
}

func (m *Model) renderColumns() string {
	cols := m.board.Columns()
	width := m.width/len(cols) - 4
	if width < 12 {
		width = 12
	}

	rendered := make([]string, len(cols))
	for c, col := range cols {
		lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", statusLabels[col.Status], len(col.Tasks)))}
		for r, t := range col.Tasks {
			line := m.renderCard(t, width)
			if c == m.col && r == m.row {
				line = selectStyle.Render(line)
			}
			lines = append(lines, line)
		}
		style := columnStyle
		if c == m.col {
			style = focusStyle
		}
		rendered[c] = style.Width(width).Render(strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderCard(t model.Task, width int) string {
	title := truncate(t.Title, width-2)
	marker := "·"
	if c, ok := priorityColors[t.Priority]; ok {
		marker = lipgloss.NewStyle().Foreground(c).Render("●")
	}
	line := marker + " " + title
	if m.board.Pending(t.ID) {
		line = pendingStyle.Render(line + " …")
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// WriteList prints the board's columns as plain text.
func WriteList(w io.Writer, b *board.Board) error {
	projects := map[string]string{}
	for _, p := range b.Projects() {
		projects[p.ID] = p.Name
	}

	for i, col := range b.Columns() {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s (%d)\n", statusLabels[col.Status], len(col.Tasks)); err != nil {
			return err
		}
		for _, t := range col.Tasks {
			if _, err := fmt.Fprintf(w, "  %s  %s  [%s] %s\n", t.ID, t.Title, t.Priority, projects[t.ProjectID]); err != nil {
				return err
			}
		}
	}
	return nil
}
