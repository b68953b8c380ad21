package jobtable

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/theme"
)

// SelectedJobMsg asks the parent to open a job.
type SelectedJobMsg struct {
	JobID string
}

// Model lists jobs as a table with totals.
type Model struct {
	keys  *keys.KeyMap
	money pricing.Formatter
	table table.Model
	jobs  []model.Job
}

// New creates an empty job table.
func New(k *keys.KeyMap, money pricing.Formatter, width, height int) Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(max(height-2, 3)),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorWhite).
		Background(theme.ColorBlue).
		Bold(false)
	t.SetStyles(styles)

	m := Model{keys: k, money: money, table: t}
	m.SetSize(width, height)
	return m
}

func columns(width int) []table.Column {
	// Fixed columns, customer takes what is left.
	fixed := []table.Column{
		{Title: "Reference", Width: 12},
		{Title: "Stage", Width: 20},
		{Title: "Number", Width: 12},
		{Title: "Services", Width: 8},
		{Title: "Total inc", Width: 12},
		{Title: "Updated", Width: 10},
	}
	used := 0
	for _, c := range fixed {
		used += c.Width + 2
	}
	customer := table.Column{Title: "Customer", Width: max(width-used-2, 12)}
	return append([]table.Column{customer}, fixed...)
}

// SetJobs replaces the rows.
func (m *Model) SetJobs(jobs []model.Job) {
	m.jobs = jobs
	rows := make([]table.Row, len(jobs))
	for i, j := range jobs {
		rows[i] = table.Row{
			j.Customer,
			j.Reference,
			string(j.Status),
			j.PrimaryNumber,
			itoa(len(j.Services)),
			m.money.Format(pricing.TotalInc(j)),
			j.UpdatedAt,
		}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// SelectedJob returns the job under the cursor.
func (m Model) SelectedJob() (model.Job, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.jobs) {
		return model.Job{}, false
	}
	return m.jobs[c], true
}

// Update handles table navigation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Select) {
		if j, ok := m.SelectedJob(); ok {
			return m, func() tea.Msg { return SelectedJobMsg{JobID: j.ID} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table.
func (m Model) View() string {
	if len(m.jobs) == 0 {
		return theme.HintStyle.Padding(1, 2).Render("No jobs match. Press 'n' to add one.")
	}
	return m.table.View()
}

// SetSize updates the table dimensions.
func (m *Model) SetSize(width, height int) {
	m.table.SetColumns(columns(width))
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-2, 3))
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
