package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/store"
	"github.com/nhle/comtech-lite/internal/theme"
	"github.com/nhle/comtech-lite/internal/ui"
)

const (
	minColumnWidth = 26
	cardHeight     = 4
)

// SelectedJobMsg asks the parent to open a job.
type SelectedJobMsg struct {
	JobID string
}

// MoveJobMsg asks the parent to move a job to another stage.
type MoveJobMsg struct {
	JobID string
	Stage model.Stage
}

// NewJobMsg asks the parent to open the job form for a new job in Stage.
type NewJobMsg struct {
	Stage model.Stage
}

// Model is the kanban board: one column per stage.
type Model struct {
	keys    *keys.KeyMap
	money   pricing.Formatter
	columns []store.Column
	col     int
	rows    []int // cursor row per column
	offset  int   // first visible column
	width   int
	height  int
}

// New creates a board with no jobs.
func New(k *keys.KeyMap, money pricing.Formatter, width, height int) Model {
	m := Model{
		keys:   k,
		money:  money,
		rows:   make([]int, len(model.Stages)),
		width:  width,
		height: height,
	}
	m.columns = store.Board(nil)
	return m
}

// SetJobs regroups jobs into columns, keeping the cursor on the same job
// when it is still present.
func (m *Model) SetJobs(jobs []model.Job) {
	selected, hadSelection := m.SelectedJob()
	m.columns = store.Board(jobs)

	if hadSelection {
		for c, col := range m.columns {
			for r, j := range col.Jobs {
				if j.ID == selected.ID {
					m.col = c
					m.rows[c] = r
					m.scrollToCursor()
					return
				}
			}
		}
	}
	for c := range m.columns {
		m.rows[c] = min(m.rows[c], max(len(m.columns[c].Jobs)-1, 0))
	}
}

// SelectedJob returns the job under the cursor.
func (m Model) SelectedJob() (model.Job, bool) {
	if m.col < 0 || m.col >= len(m.columns) {
		return model.Job{}, false
	}
	jobs := m.columns[m.col].Jobs
	r := m.rows[m.col]
	if r < 0 || r >= len(jobs) {
		return model.Job{}, false
	}
	return jobs[r], true
}

// FocusedStage returns the stage of the focused column.
func (m Model) FocusedStage() model.Stage {
	return m.columns[m.col].Stage
}

// Update handles navigation and stage moves.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
		m.scrollToCursor()

	case key.Matches(km, m.keys.Right):
		if m.col < len(m.columns)-1 {
			m.col++
		}
		m.scrollToCursor()

	case key.Matches(km, m.keys.Down):
		if m.rows[m.col] < len(m.columns[m.col].Jobs)-1 {
			m.rows[m.col]++
		}

	case key.Matches(km, m.keys.Up):
		if m.rows[m.col] > 0 {
			m.rows[m.col]--
		}

	case key.Matches(km, m.keys.Select):
		if j, ok := m.SelectedJob(); ok {
			return m, func() tea.Msg { return SelectedJobMsg{JobID: j.ID} }
		}

	case key.Matches(km, m.keys.New):
		stage := m.FocusedStage()
		return m, func() tea.Msg { return NewJobMsg{Stage: stage} }

	case key.Matches(km, m.keys.MovePrev):
		cmd := m.move(-1)
		return m, cmd

	case key.Matches(km, m.keys.MoveNext):
		cmd := m.move(1)
		return m, cmd
	}

	return m, nil
}

// move shifts the selected job one stage left or right and follows it.
func (m *Model) move(dir int) tea.Cmd {
	j, ok := m.SelectedJob()
	if !ok {
		return nil
	}
	target := j.Status.Next()
	if dir < 0 {
		target = j.Status.Prev()
	}
	if target == j.Status {
		return nil
	}
	m.col = target.Index()
	m.scrollToCursor()
	return func() tea.Msg { return MoveJobMsg{JobID: j.ID, Stage: target} }
}

func (m *Model) scrollToCursor() {
	_, visible := ui.NewLayout(m.width, m.height).ColumnWidth(len(m.columns), minColumnWidth)
	if m.col < m.offset {
		m.offset = m.col
	}
	if m.col >= m.offset+visible {
		m.offset = m.col - visible + 1
	}
}

// View renders the visible columns side by side.
func (m Model) View() string {
	width, visible := ui.NewLayout(m.width, m.height).ColumnWidth(len(m.columns), minColumnWidth)
	end := min(m.offset+visible, len(m.columns))

	rendered := make([]string, 0, end-m.offset)
	for c := m.offset; c < end; c++ {
		rendered = append(rendered, m.renderColumn(c, width))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if m.offset > 0 || end < len(m.columns) {
		more := theme.HintStyle.Render(fmt.Sprintf("columns %d-%d of %d", m.offset+1, end, len(m.columns)))
		board = lipgloss.JoinVertical(lipgloss.Left, board, more)
	}
	return board
}

func (m Model) renderColumn(c, width int) string {
	col := m.columns[c]
	style := theme.ColumnStyle
	if c == m.col {
		style = theme.ActiveColumnStyle
	}
	inner := max(width-4, 8) // border + padding

	var b strings.Builder
	title := fmt.Sprintf("%s (%d)", col.Stage, len(col.Jobs))
	b.WriteString(theme.StageStyle(col.Stage).Render(truncate(title, inner)))
	b.WriteString("\n")

	capacity := max((m.height-5)/cardHeight, 1)
	start := 0
	if r := m.rows[c]; r >= capacity {
		start = r - capacity + 1
	}
	last := min(start+capacity, len(col.Jobs))

	if len(col.Jobs) == 0 {
		b.WriteString(theme.DimmedStyle.Render("—"))
	}
	for r := start; r < last; r++ {
		b.WriteString("\n")
		b.WriteString(m.renderCard(col.Jobs[r], inner, c == m.col && r == m.rows[c]))
	}
	if last < len(col.Jobs) {
		b.WriteString("\n")
		b.WriteString(theme.HintStyle.Render(fmt.Sprintf("+%d more", len(col.Jobs)-last)))
	}

	return style.
		Width(width - 2).
		Height(max(m.height-3, 3)).
		Render(b.String())
}

func (m Model) renderCard(j model.Job, width int, selected bool) string {
	sub := j.Reference
	if sub == "" {
		sub = j.PrimaryNumber
	}
	lines := []string{
		truncate(j.Customer, width-2),
		theme.DimmedStyle.Render(truncate(sub, width-2)),
		m.money.Format(pricing.TotalInc(j)),
	}
	card := strings.Join(lines, "\n")

	if selected {
		return theme.SelectedItemStyle.Width(width).Render(card)
	}
	return theme.ListItemStyle.Width(width).Render(card)
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.scrollToCursor()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
