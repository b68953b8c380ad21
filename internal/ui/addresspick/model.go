// Package addresspick is a type-ahead picker that fills a job's address
// from place suggestions.
package addresspick

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/address"
	"github.com/nhle/comtech-lite/internal/theme"
)

// Suggester looks up address predictions.
type Suggester interface {
	Suggest(ctx context.Context, input string) ([]address.Suggestion, error)
}

// PickedMsg carries the chosen address for a job.
type PickedMsg struct {
	JobID   string
	Address string
}

// CancelMsg is dispatched when the picker is closed without a choice.
type CancelMsg struct{}

type searchMsg struct{ seq int }

type resultsMsg struct {
	seq         int
	suggestions []address.Suggestion
	err         error
}

// Debounce is how long typing must pause before a lookup runs.
const Debounce = 300 * time.Millisecond

// Model is the address picker view.
type Model struct {
	suggester   Suggester
	input       textinput.Model
	jobID       string
	suggestions []address.Suggestion
	cursor      int
	seq         int
	err         error
	width       int
}

// New creates a picker. A nil suggester still allows free-text entry.
func New(s Suggester, width int) Model {
	ti := textinput.New()
	ti.Placeholder = "start typing an address..."
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = max(width-8, 10)
	return Model{suggester: s, input: ti, width: width}
}

// Start opens the picker for a job, seeded with its current address.
func (m *Model) Start(jobID, current string) tea.Cmd {
	m.jobID = jobID
	m.suggestions = nil
	m.cursor = 0
	m.err = nil
	m.input.SetValue(current)
	m.input.CursorEnd()
	return tea.Batch(m.input.Focus(), m.schedule())
}

func (m *Model) schedule() tea.Cmd {
	m.seq++
	seq := m.seq
	return tea.Tick(Debounce, func(time.Time) tea.Msg { return searchMsg{seq: seq} })
}

func (m Model) search(seq int) tea.Cmd {
	s := m.suggester
	input := m.input.Value()
	if s == nil || len([]rune(strings.TrimSpace(input))) < address.MinInputLen {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		out, err := s.Suggest(ctx, input)
		return resultsMsg{seq: seq, suggestions: out, err: err}
	}
}

// Update handles messages for the picker.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.search(msg.seq)

	case resultsMsg:
		// Drop answers to inputs the user has already typed past.
		if msg.seq != m.seq {
			return m, nil
		}
		m.suggestions = msg.suggestions
		m.err = msg.err
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, func() tea.Msg { return CancelMsg{} }
		case tea.KeyDown:
			if m.cursor < len(m.suggestions)-1 {
				m.cursor++
			}
			return m, nil
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyEnter:
			picked := strings.TrimSpace(m.input.Value())
			if m.cursor < len(m.suggestions) {
				picked = m.suggestions[m.cursor].Description
			}
			id := m.jobID
			return m, func() tea.Msg { return PickedMsg{JobID: id, Address: picked} }
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.suggestions = nil
			return m, tea.Batch(cmd, m.schedule())
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the picker.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Address lookup"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.err.Error()))
	case m.suggester == nil:
		b.WriteString(theme.HintStyle.Render("Lookup is off: no Places API key. Enter saves the text as typed."))
	default:
		for i, s := range m.suggestions {
			if i == m.cursor {
				b.WriteString(theme.SelectedItemStyle.Render(s.Description))
			} else {
				b.WriteString(theme.ListItemStyle.Render(s.Description))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.DimmedStyle.Render("↑/↓ choose | enter save | esc cancel"))
	return theme.PanelStyle.Width(max(m.width-4, 20)).Render(b.String())
}

// SetSize updates the picker width.
func (m *Model) SetSize(width int) {
	m.width = width
	m.input.Width = max(width-8, 10)
}
