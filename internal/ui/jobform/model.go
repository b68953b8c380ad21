package jobform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/theme"
)

// SubmittedMsg carries the finished job. ID is empty for a new job.
type SubmittedMsg struct {
	ID  string
	Job model.Job
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	customer  string
	site      string
	reference string
	address   string
	numbers   string
	primary   string
	stage     model.Stage

	billingName, billingEmail, billingPhone string
	siteName, siteEmail, sitePhone          string

	services    string
	picked      []string
	adjustments string
	notes       string
}

// Model is the Bubble Tea model for the job create/edit form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	editing   model.Job
	editMode  bool
	priceBook []model.PriceItem
	width     int
	height    int
}

// New creates a new job form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{stage: model.StageInTray},
		width:  width,
		height: height,
	}
}

// SetPriceBook sets the items offered by the price book picker.
func (m *Model) SetPriceBook(items []model.PriceItem) {
	m.priceBook = items
}

// StartCreate initializes the form for a new job in the given stage.
func (m *Model) StartCreate(stage model.Stage) tea.Cmd {
	if !stage.IsValid() {
		stage = model.StageInTray
	}
	m.editMode = false
	m.editing = model.Job{}
	*m.fb = formBindings{stage: stage}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form from an existing job.
func (m *Model) StartEdit(j model.Job) tea.Cmd {
	m.editMode = true
	m.editing = j.Clone()
	*m.fb = formBindings{
		customer:     j.Customer,
		site:         j.Site,
		reference:    j.Reference,
		address:      j.Address,
		numbers:      strings.Join(j.NumbersList, "\n"),
		primary:      j.PrimaryNumber,
		stage:        j.Status,
		billingName:  j.BillingContact.Name,
		billingEmail: j.BillingContact.Email,
		billingPhone: j.BillingContact.Phone,
		siteName:     j.SiteContact.Name,
		siteEmail:    j.SiteContact.Email,
		sitePhone:    j.SiteContact.Phone,
		services:     FormatServiceLines(j.Services),
		adjustments:  FormatAdjustments(j.Adjustments),
		notes:        j.Notes,
	}
	if !m.fb.stage.IsValid() {
		m.fb.stage = model.StageInTray
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the job form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the job form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := "New Job"
	if m.editMode {
		title = "Edit Job: " + m.editing.Customer
	}
	content := theme.TitleStyle.Render(title) + "\n" + m.form.View()
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Draft assembles the job from the current field values. Picked price
// book items are appended as single-quantity lines.
func (m Model) Draft() (model.Job, error) {
	fb := m.fb
	services, err := ParseServiceLines(fb.services, m.editing.Services)
	if err != nil {
		return model.Job{}, fmt.Errorf("services: %w", err)
	}
	for _, id := range fb.picked {
		for _, p := range m.priceBook {
			if p.ID == id {
				services = append(services, p.ToServiceLine(decimal.NewFromInt(1)))
				break
			}
		}
	}
	adjs, err := ParseAdjustments(fb.adjustments, m.editing.Adjustments)
	if err != nil {
		return model.Job{}, fmt.Errorf("adjustments: %w", err)
	}

	j := m.editing.Clone()
	j.Customer = strings.TrimSpace(fb.customer)
	j.Site = strings.TrimSpace(fb.site)
	j.Reference = strings.TrimSpace(fb.reference)
	j.Address = strings.TrimSpace(fb.address)
	j.NumbersList = ParseNumbers(fb.numbers)
	j.PrimaryNumber = strings.TrimSpace(fb.primary)
	if j.PrimaryNumber == "" && len(j.NumbersList) > 0 {
		j.PrimaryNumber = j.NumbersList[0]
	}
	j.Status = fb.stage
	j.BillingContact = model.Contact{Name: strings.TrimSpace(fb.billingName), Email: strings.TrimSpace(fb.billingEmail), Phone: strings.TrimSpace(fb.billingPhone)}
	j.SiteContact = model.Contact{Name: strings.TrimSpace(fb.siteName), Email: strings.TrimSpace(fb.siteEmail), Phone: strings.TrimSpace(fb.sitePhone)}
	j.Services = services
	j.Adjustments = adjs
	j.Notes = fb.notes
	return j, nil
}

func (m Model) handleSubmit() tea.Cmd {
	j, err := m.Draft()
	if err != nil {
		// Field validation already ran; reaching here means the price
		// book changed under the form. Treat it as a cancel.
		return func() tea.Msg { return CancelMsg{} }
	}
	id := ""
	if m.editMode {
		id = m.editing.ID
	}
	return func() tea.Msg { return SubmittedMsg{ID: id, Job: j} }
}

func (m *Model) buildForm() *huh.Form {
	stageOpts := make([]huh.Option[model.Stage], len(model.Stages))
	for i, s := range model.Stages {
		stageOpts[i] = huh.NewOption(string(s), s)
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Customer").
				Placeholder("Who is the job for?").
				Value(&m.fb.customer).
				Validate(validateRequired("Customer")),
			huh.NewInput().Title("Site").Value(&m.fb.site),
			huh.NewInput().Title("Reference").Placeholder("Optional").Value(&m.fb.reference),
			huh.NewInput().Title("Address").Value(&m.fb.address),
			huh.NewSelect[model.Stage]().
				Title("Stage").
				Options(stageOpts...).
				Value(&m.fb.stage),
		).Title("Job"),
		huh.NewGroup(
			huh.NewText().
				Title("Numbers").
				Placeholder("One per line").
				Value(&m.fb.numbers),
			huh.NewInput().
				Title("Primary number").
				Placeholder("Blank uses the first number").
				Value(&m.fb.primary),
		).Title("Numbers"),
		huh.NewGroup(
			huh.NewInput().Title("Billing contact").Value(&m.fb.billingName),
			huh.NewInput().Title("Billing email").Value(&m.fb.billingEmail),
			huh.NewInput().Title("Billing phone").Value(&m.fb.billingPhone),
			huh.NewInput().Title("Site contact").Value(&m.fb.siteName),
			huh.NewInput().Title("Site email").Value(&m.fb.siteEmail),
			huh.NewInput().Title("Site phone").Value(&m.fb.sitePhone),
		).Title("Contacts"),
	}

	pricing := []huh.Field{
		huh.NewText().
			Title("Services").
			Description("name @ qty @ unit price (ex GST)").
			Value(&m.fb.services).
			Validate(func(s string) error {
				_, err := ParseServiceLines(s, nil)
				return err
			}),
	}
	if picker := m.priceBookField(); picker != nil {
		pricing = append(pricing, picker)
	}
	pricing = append(pricing,
		huh.NewText().
			Title("Adjustments").
			Description("label @ amount (ex GST, negative for discounts)").
			Value(&m.fb.adjustments).
			Validate(func(s string) error {
				_, err := ParseAdjustments(s, nil)
				return err
			}),
		huh.NewText().Title("Notes").Value(&m.fb.notes),
	)
	groups = append(groups, huh.NewGroup(pricing...).Title("Pricing"))

	return huh.NewForm(groups...).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m *Model) priceBookField() huh.Field {
	if len(m.priceBook) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.priceBook))
	for i, p := range m.priceBook {
		label := fmt.Sprintf("%s  $%s", p.Name, p.UnitPrice.StringFixed(2))
		if p.UnitNote != "" {
			label += " " + p.UnitNote
		}
		opts[i] = huh.NewOption(label, p.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Add from price book").
		Options(opts...).
		Filterable(true).
		Value(&m.fb.picked)
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
