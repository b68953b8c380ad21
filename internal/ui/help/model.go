package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/theme"
	"github.com/nhle/comtech-lite/internal/ui/command"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	m.help.Width = m.width - 4
	m.help.ShowAll = true

	var stages []string
	for _, s := range model.Stages {
		stages = append(stages, theme.StageStyle(s).Render(string(s)))
	}

	var cmds []string
	for _, c := range command.Commands {
		cmds = append(cmds, theme.LabelStyle.Width(20).Render(":"+c.Usage)+theme.DimmedStyle.Render(c.Help))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		theme.TitleStyle.Render("Pipeline"),
		lipgloss.JoinHorizontal(lipgloss.Top, joinArrows(stages)...),
		"",
		theme.TitleStyle.Render("Commands"),
		lipgloss.JoinVertical(lipgloss.Left, cmds...),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

func joinArrows(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, theme.DimmedStyle.Render(" → "))
		}
		out = append(out, p)
	}
	return out
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
