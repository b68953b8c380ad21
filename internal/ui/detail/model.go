package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/theme"
)

// BackMsg signals the parent to navigate back to the job list.
type BackMsg struct{}

// ActionMsg asks the parent to run an action on the shown job.
type ActionMsg struct {
	Action Action
	JobID  string

	// Arg is the todo id, todo text, stage or file path, depending on Action.
	Arg string
}

// Action names a detail view request.
type Action string

// Detail view actions.
const (
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionMove       Action = "move"
	ActionAddTodo    Action = "add_todo"
	ActionToggleTodo Action = "toggle_todo"
	ActionAttach     Action = "attach"
	ActionAddress    Action = "address"
)

type mode int

const (
	modeView mode = iota
	modeTodoInput
	modeAttachInput
	modeConfirmDelete
)

// Model is the job detail view component.
type Model struct {
	job      *model.Job
	viewport viewport.Model
	input    textinput.Model
	confirm  *huh.Form
	yes      *bool
	mode     mode
	todo     int
	keys     *keys.KeyMap
	money    pricing.Formatter
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, money pricing.Formatter, width, height int) Model {
	vp := viewport.New(width, max(height-2, 1))
	vp.Style = lipgloss.NewStyle()

	ti := textinput.New()
	ti.CharLimit = 500

	return Model{
		viewport: vp,
		input:    ti,
		yes:      new(bool),
		keys:     k,
		money:    money,
		width:    width,
		height:   height,
	}
}

// SetJob updates the job being displayed. The todo cursor survives
// refreshes of the same job.
func (m *Model) SetJob(j model.Job) {
	same := m.job != nil && m.job.ID == j.ID
	m.job = &j
	if !same {
		m.todo = 0
		m.mode = modeView
		m.viewport.GotoTop()
	}
	m.todo = min(m.todo, max(len(j.Todos)-1, 0))
	m.viewport.SetContent(m.renderContent())
}

// Job returns the job being displayed.
func (m Model) Job() (model.Job, bool) {
	if m.job == nil {
		return model.Job{}, false
	}
	return *m.job, true
}

// Editing reports whether an input owns the keyboard.
func (m Model) Editing() bool {
	return m.mode != modeView
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeTodoInput, modeAttachInput:
		return m.updateInput(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || m.job == nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	id := m.job.ID
	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(km, m.keys.Edit):
		return m, action(ActionEdit, id, "")

	case key.Matches(km, m.keys.Delete):
		*m.yes = false
		m.confirm = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete job %q?", m.job.Customer)).
				Description("Todos and attachments go with it.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(m.yes),
		)).WithWidth(min(max(m.width-4, 40), 80))
		m.mode = modeConfirmDelete
		return m, m.confirm.Init()

	case key.Matches(km, m.keys.MovePrev):
		return m, action(ActionMove, id, string(m.job.Status.Prev()))

	case key.Matches(km, m.keys.MoveNext):
		return m, action(ActionMove, id, string(m.job.Status.Next()))

	case key.Matches(km, m.keys.Address):
		return m, action(ActionAddress, id, "")

	case key.Matches(km, m.keys.AddTodo):
		cmd := m.startInput(modeTodoInput, "New todo")
		return m, cmd

	case key.Matches(km, m.keys.Attach):
		cmd := m.startInput(modeAttachInput, "File path")
		return m, cmd

	case key.Matches(km, m.keys.Toggle):
		if m.todo < len(m.job.Todos) {
			return m, action(ActionToggleTodo, id, m.job.Todos[m.todo].ID)
		}
		return m, nil

	case key.Matches(km, m.keys.Down):
		if m.todo < len(m.job.Todos)-1 {
			m.todo++
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case key.Matches(km, m.keys.Up):
		if m.todo > 0 {
			m.todo--
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	// Delegate to viewport for scrolling (pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func action(a Action, id, arg string) tea.Cmd {
	return func() tea.Msg { return ActionMsg{Action: a, JobID: id, Arg: arg} }
}

func (m *Model) startInput(md mode, placeholder string) tea.Cmd {
	m.mode = md
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m Model) updateInput(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEsc:
			m.mode = modeView
			m.input.Blur()
			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			a := ActionAddTodo
			if m.mode == modeAttachInput {
				a = ActionAttach
			}
			m.mode = modeView
			m.input.Blur()
			if text == "" || m.job == nil {
				return m, nil
			}
			return m, action(a, m.job.ID, text)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		m.mode = modeView
		if *m.yes && m.job != nil {
			return m, action(ActionDelete, m.job.ID, "")
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeView
		return m, nil
	}
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.job == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No job selected")
	}

	switch m.mode {
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirm.View())
	case modeTodoInput, modeAttachInput:
		return m.viewport.View() + "\n" + m.input.View()
	}
	return m.viewport.View()
}

func (m Model) renderContent() string {
	j := m.job
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(j.Customer))
	sections = append(sections, theme.StageStyle(j.Status).Render(string(j.Status)))
	sections = append(sections, "")

	field := func(label, value string) {
		if value != "" {
			sections = append(sections, theme.LabelStyle.Render(label)+value)
		}
	}
	field("Site", j.Site)
	field("Reference", j.Reference)
	field("Address", j.Address)
	field("Primary number", j.PrimaryNumber)
	if len(j.NumbersList) > 0 {
		field("Numbers", strings.Join(j.NumbersList, ", "))
	}
	field("Billing", contactLine(j.BillingContact))
	field("Site contact", contactLine(j.SiteContact))
	field("Created", j.CreatedAt)
	field("Updated", j.UpdatedAt)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	section := func(title string) {
		sections = append(sections, "", separator, "", titleStyle.Render(title))
	}

	section(fmt.Sprintf("Services (%d)", len(j.Services)))
	if len(j.Services) == 0 {
		sections = append(sections, theme.HintStyle.Render("No services"))
	}
	for _, l := range j.Services {
		row := fmt.Sprintf("%s x %s @ %s = %s", l.Name, l.Qty.String(), m.money.Format(l.UnitPrice), m.money.Format(pricing.LineTotal(l)))
		if l.UnitNote != "" {
			row += " " + theme.DimmedStyle.Render(l.UnitNote)
		}
		sections = append(sections, "  "+row)
	}
	if len(j.Adjustments) > 0 {
		sections = append(sections, "")
		for _, a := range j.Adjustments {
			sections = append(sections, "  "+a.Label+": "+m.money.Format(a.AmountEx))
		}
	}

	t := pricing.Summarize(*j)
	sections = append(sections, "")
	sections = append(sections, theme.LabelStyle.Render("Subtotal ex")+m.money.Format(t.SubtotalEx))
	sections = append(sections, theme.LabelStyle.Render("Adjustments ex")+m.money.Format(t.AdjustmentSumEx))
	sections = append(sections, theme.LabelStyle.Render("Total ex")+m.money.Format(t.TotalEx))
	sections = append(sections, theme.LabelStyle.Render("GST")+m.money.Format(t.GST))
	sections = append(sections, theme.LabelStyle.Render("Total inc")+theme.MoneyStyle.Render(m.money.Format(t.TotalInc)))

	section(fmt.Sprintf("Todos (%d)", len(j.Todos)))
	if len(j.Todos) == 0 {
		sections = append(sections, theme.HintStyle.Render("No todos. Press 't' to add one."))
	}
	for i, td := range j.Todos {
		box := "[ ]"
		if td.Done {
			box = "[x]"
		}
		row := box + " " + td.Text
		if i == m.todo {
			sections = append(sections, theme.SelectedItemStyle.Render(row))
		} else {
			sections = append(sections, theme.ListItemStyle.Render(row))
		}
	}

	section(fmt.Sprintf("Attachments (%d)", len(j.Attachments)))
	for _, a := range j.Attachments {
		sections = append(sections, fmt.Sprintf("  %s  %s  %s", a.Name, theme.DimmedStyle.Render(a.Type), humanSize(a.Size)))
	}

	if strings.TrimSpace(j.Notes) != "" {
		section("Notes")
		sections = append(sections, j.Notes)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
	if m.job != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

func contactLine(c model.Contact) string {
	var parts []string
	for _, s := range []string{c.Name, c.Email, c.Phone} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " · ")
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
