package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/theme"
)

// Spec describes one palette command.
type Spec struct {
	Name  string
	Usage string
	Help  string

	// MinArgs and MaxArgs bound the argument count; MaxArgs < 0 means
	// the rest of the line is one argument.
	MinArgs, MaxArgs int
}

// Commands lists everything the palette understands.
var Commands = []Spec{
	{Name: "board", Usage: "board", Help: "show the pipeline board"},
	{Name: "table", Usage: "table", Help: "show the job table"},
	{Name: "prices", Usage: "prices", Help: "open the price book"},
	{Name: "export", Usage: "export [path]", Help: "write all jobs to CSV", MaxArgs: -1},
	{Name: "import", Usage: "import <path>", Help: "replace all jobs from CSV", MinArgs: 1, MaxArgs: -1},
	{Name: "seed", Usage: "seed", Help: "load the KNG July 2025 price book"},
	{Name: "settings", Usage: "settings", Help: "address lookup and mailbox settings"},
	{Name: "clear", Usage: "clear", Help: "delete every job"},
	{Name: "stage", Usage: "stage <name|all>", Help: "filter jobs by stage", MinArgs: 1, MaxArgs: -1},
	{Name: "help", Usage: "help", Help: "show keyboard shortcuts"},
	{Name: "quit", Usage: "quit", Help: "exit"},
}

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Name string
	Arg  string
}

// ErrorMsg is emitted when the typed line does not parse.
type ErrorMsg struct {
	Err error
}

// Parse resolves a palette line. Unique prefixes of a command name are
// accepted.
func Parse(line string) (CommandMsg, error) {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	if name == "" {
		return CommandMsg{}, fmt.Errorf("empty command")
	}

	var match *Spec
	for i := range Commands {
		c := &Commands[i]
		if c.Name == name {
			match = c
			break
		}
		if strings.HasPrefix(c.Name, name) {
			if match != nil {
				return CommandMsg{}, fmt.Errorf("ambiguous command %q", name)
			}
			match = c
		}
	}
	if match == nil {
		return CommandMsg{}, fmt.Errorf("unknown command %q", name)
	}

	switch {
	case rest == "" && match.MinArgs > 0:
		return CommandMsg{}, fmt.Errorf("usage: %s", match.Usage)
	case rest != "" && match.MaxArgs == 0:
		return CommandMsg{}, fmt.Errorf("%s takes no arguments", match.Name)
	}
	return CommandMsg{Name: match.Name, Arg: rest}, nil
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = c.Name
	}
	ti.SetSuggestions(names)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.Type == tea.KeyEnter {
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return m, nil
		}
		cmd, err := Parse(line)
		if err != nil {
			return m, func() tea.Msg { return ErrorMsg{Err: err} }
		}
		return m, func() tea.Msg { return cmd }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Command Palette")

	var rows []string
	for _, c := range Commands {
		rows = append(rows, theme.LabelStyle.Width(20).Render(c.Usage)+theme.DimmedStyle.Render(c.Help))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), "", strings.Join(rows, "\n"))

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
