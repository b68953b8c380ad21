package pricebook

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/store"
	"github.com/nhle/comtech-lite/internal/theme"
)

// CloseMsg signals the parent to close the price book view.
type CloseMsg struct{}

type bookMode int

const (
	modeList bookMode = iota
	modeForm
	modeConfirmDelete
	modeConfirmSeed
)

type formBindings struct {
	name      string
	unitPrice string
	category  string
	unitNote  string
	confirm   bool
}

type savedMsg struct {
	what string
	err  error
}

// Model is the Bubble Tea model for price book management.
type Model struct {
	mode        bookMode
	store       *store.Store
	keys        *keys.KeyMap
	money       pricing.Formatter
	groups      []store.Category
	items       []model.PriceItem
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new price book model.
func New(s *store.Store, k *keys.KeyMap, money pricing.Formatter, width, height int) Model {
	m := Model{
		mode:  modeList,
		store: s,
		keys:  k,
		money: money,
		fb:    &formBindings{},
		width: width, height: height,
	}
	m.SetItems(s.PriceBook())
	return m
}

// SetItems refreshes the list, grouped by category.
func (m *Model) SetItems(items []model.PriceItem) {
	m.groups = store.GroupByCategory(items)
	var flat []model.PriceItem
	for _, g := range m.groups {
		flat = append(flat, g.Items...)
	}
	m.items = flat
	if m.selectedIdx >= len(m.items) {
		m.selectedIdx = max(len(m.items)-1, 0)
	}
}

// Selected returns the item under the cursor.
func (m Model) Selected() (model.PriceItem, bool) {
	if m.selectedIdx >= len(m.items) {
		return model.PriceItem{}, false
	}
	return m.items[m.selectedIdx], true
}

// Editing reports whether a form owns the keyboard.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = msg.what
		}
		m.mode = modeList
		m.SetItems(m.store.PriceBook())
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.items) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.items)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.items) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.items) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		*m.fb = formBindings{}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		p, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.editingID = p.ID
		*m.fb = formBindings{
			name:      p.Name,
			unitPrice: p.UnitPrice.StringFixed(2),
			category:  p.Category,
			unitNote:  p.UnitNote,
		}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		p, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(
			fmt.Sprintf("Delete %q?", p.Name),
			"Jobs already priced from it keep their lines.",
		)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()

	case key.Matches(msg, m.keys.Seed):
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(
			"Load the KNG July 2025 price book?",
			"This replaces every item in the current price book.",
		)
		m.mode = modeConfirmSeed
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	title := "New price item"
	if m.editingID != "" {
		title = "Edit price item"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Unit price (ex GST)").
				Placeholder("0.00").
				Value(&m.fb.unitPrice).
				Validate(validatePrice),
			huh.NewInput().
				Title("Category").
				Placeholder("e.g. Telephony – Services").
				Value(&m.fb.category),
			huh.NewInput().
				Title("Unit note").
				Placeholder("e.g. (Per Channel)").
				Value(&m.fb.unitNote),
		).Title(title),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(title, description string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete, modeConfirmSeed:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, m.saveItem()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if !m.fb.confirm {
			m.mode = modeList
			return m, nil
		}
		if m.mode == modeConfirmSeed {
			return m, m.seed()
		}
		if p, ok := m.Selected(); ok {
			return m, m.deleteItem(p.ID)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the price book.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete, modeConfirmSeed:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Price Book (%d)", len(m.items))))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(theme.HintStyle.Render("No items yet. Press 'n' to add one or 'S' to load KNG July 2025."))
	}

	groupStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorCyan)
	idx := 0
	for _, g := range m.groups {
		b.WriteString(groupStyle.Render(g.Name))
		b.WriteString("\n")
		for _, p := range g.Items {
			label := fmt.Sprintf("%s  %s", p.Name, m.money.Format(p.UnitPrice))
			if p.UnitNote != "" {
				label += " " + p.UnitNote
			}
			if idx == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
			idx++
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.DimmedStyle.Render(
		"n new | e edit | d delete | S load KNG July 2025 | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validatePrice(s string) error {
	if _, err := parsePrice(s); err != nil {
		return fmt.Errorf("enter a price like 49 or 49.95")
	}
	return nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

func (m Model) saveItem() tea.Cmd {
	s := m.store
	fb := *m.fb
	editID := m.editingID
	return func() tea.Msg {
		price, err := parsePrice(fb.unitPrice)
		if err != nil {
			return savedMsg{err: err}
		}
		name := strings.TrimSpace(fb.name)
		category := strings.TrimSpace(fb.category)
		note := strings.TrimSpace(fb.unitNote)
		if editID == "" {
			_, err := s.AddPriceItem(context.Background(), name, price, category, note)
			return savedMsg{what: "Item added", err: err}
		}
		err = s.UpdatePriceItem(context.Background(), editID, model.PriceItemPatch{
			Name:      &name,
			UnitPrice: &price,
			Category:  &category,
			UnitNote:  &note,
		})
		return savedMsg{what: "Item saved", err: err}
	}
}

func (m Model) deleteItem(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.RemovePriceItem(context.Background(), id)
		return savedMsg{what: "Item deleted", err: err}
	}
}

func (m Model) seed() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.SeedPriceBookKNGJuly2025(context.Background())
		return savedMsg{what: "Loaded KNG July 2025", err: err}
	}
}
