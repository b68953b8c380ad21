// Package settings is the view for the external integrations: the
// Places API used for address lookup and the IMAP mailbox attachments
// are pulled from. Secrets go to the keyring, everything else to the
// config file.
package settings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/comtech-lite/internal/address"
	"github.com/nhle/comtech-lite/internal/attach"
	"github.com/nhle/comtech-lite/internal/credential"
	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/theme"
)

// Integration identifies one configurable service.
type Integration int

const (
	Places Integration = iota
	Mailbox
)

var integrations = []Integration{Places, Mailbox}

func (i Integration) String() string {
	if i == Mailbox {
		return "Mailbox"
	}
	return "Places"
}

func (i Integration) secretKey() string {
	if i == Mailbox {
		return credential.IMAPPassword
	}
	return credential.PlacesAPIKey
}

// Secrets reads and writes integration secrets.
type Secrets interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Checker tests an integration with the given configuration and secret.
type Checker func(ctx context.Context, i Integration, cfg model.AppConfig, secret string) error

// Options wires the view to configuration and secret storage.
type Options struct {
	Config model.AppConfig

	// Secrets may be nil when no keyring is available.
	Secrets Secrets

	// Save persists the non-secret settings.
	Save func(model.AppConfig) error

	// Check defaults to CheckConnection.
	Check Checker
}

// DoneMsg signals the view should close.
type DoneMsg struct{}

// SavedMsg is emitted after settings were persisted. Places is nil when
// no API key is stored in the keyring.
type SavedMsg struct {
	Config model.AppConfig
	Places *address.Client
}

type savedMsg struct {
	integration Integration
	cfg         model.AppConfig
	places      *address.Client
	err         error
}

type checkedMsg struct {
	integration Integration
	err         error
}

type clearedMsg struct {
	integration Integration
	err         error
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeChecking
	modeResult
	modeConfirmClear
)

// formBindings lives on the heap so huh's pointers survive model copies.
type formBindings struct {
	placesKey     string
	placesCountry string
	placesURL     string

	mailHost     string
	mailPort     string
	mailUser     string
	mailPassword string
	mailTLS      bool
	mailFolder   string

	confirm bool
}

// Model is the settings view.
type Model struct {
	mode     mode
	opts     Options
	cfg      model.AppConfig
	selected int
	editing  Integration

	form    *huh.Form
	fb      *formBindings
	spinner spinner.Model

	checkErr error
	notice   string

	keys          *keys.KeyMap
	width, height int
}

// New creates the settings view.
func New(opts Options, k *keys.KeyMap, width, height int) Model {
	if opts.Check == nil {
		opts.Check = CheckConnection
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		opts:    opts,
		cfg:     opts.Config,
		fb:      &formBindings{},
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Config returns the settings as last saved.
func (m Model) Config() model.AppConfig {
	return m.cfg
}

// Editing reports whether a form or confirmation owns the keyboard.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.notice = "Error: " + msg.err.Error()
			return m, nil
		}
		m.cfg = msg.cfg
		m.notice = msg.integration.String() + " settings saved"
		out := SavedMsg{Config: msg.cfg, Places: msg.places}
		return m, func() tea.Msg { return out }

	case clearedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.notice = "Error: " + msg.err.Error()
			return m, nil
		}
		m.notice = msg.integration.String() + " secret removed"
		return m, nil

	case checkedMsg:
		if m.mode != modeChecking {
			return m, nil
		}
		m.mode = modeResult
		m.checkErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.mode != modeChecking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.handleListKeys(msg)
		case modeChecking:
			if msg.String() == "esc" {
				m.mode = modeList
			}
			return m, nil
		case modeResult:
			return m.handleResultKeys(msg)
		}
	}

	if m.mode == modeForm || m.mode == modeConfirmClear {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.notice = ""
		return m, func() tea.Msg { return DoneMsg{} }

	case key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + 1) % len(integrations)

	case key.Matches(msg, m.keys.Up):
		m.selected = (m.selected + len(integrations) - 1) % len(integrations)

	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Edit):
		m.notice = ""
		cmd := m.startForm(integrations[m.selected])
		return m, cmd

	case msg.String() == "t":
		m.notice = ""
		cmd := m.startCheck(integrations[m.selected])
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		if m.opts.Secrets == nil {
			m.notice = "No keyring available"
			return m, nil
		}
		m.notice = ""
		m.editing = integrations[m.selected]
		m.fb.confirm = false
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Remove the stored %s secret?", m.editing)).
					Affirmative("Yes, remove").
					Negative("Cancel").
					Value(&m.fb.confirm),
			),
		).WithWidth(m.formWidth())
		m.mode = modeConfirmClear
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeList
		m.checkErr = nil
	case "r":
		if m.checkErr != nil {
			cmd := m.startCheck(m.editing)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) startCheck(i Integration) tea.Cmd {
	m.editing = i
	m.mode = modeChecking
	m.checkErr = nil

	var secret string
	if m.opts.Secrets != nil {
		secret, _ = m.opts.Secrets.Get(i.secretKey())
	}
	check := m.opts.Check
	cfg := m.cfg
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		return checkedMsg{integration: i, err: check(ctx, i, cfg, secret)}
	})
}

func (m *Model) startForm(i Integration) tea.Cmd {
	m.editing = i
	m.mode = modeForm

	// Secrets are never pre-filled; a blank entry keeps the stored one.
	*m.fb = formBindings{
		placesCountry: m.cfg.Address.Country,
		placesURL:     m.cfg.Address.BaseURL,
		mailHost:      m.cfg.Mail.Host,
		mailPort:      m.cfg.Mail.Port,
		mailUser:      m.cfg.Mail.Username,
		mailTLS:       m.cfg.Mail.TLS,
		mailFolder:    m.cfg.Mail.Folder,
	}

	if i == Mailbox {
		m.form = m.buildMailForm()
	} else {
		m.form = m.buildPlacesForm()
	}
	return m.form.Init()
}

func (m *Model) buildPlacesForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API key").
				Description("Google Places key; leave blank to keep the stored key").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.placesKey),
			huh.NewInput().
				Title("Country").
				Description("Two-letter code suggestions are restricted to, or blank").
				Placeholder("au").
				Value(&m.fb.placesCountry).
				Validate(validateCountry),
			huh.NewInput().
				Title("Base URL").
				Value(&m.fb.placesURL).
				Validate(validateURL),
		).Title("Address lookup"),
	).WithWidth(m.formWidth())
}

func (m *Model) buildMailForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP host").
				Placeholder("imap.example.com").
				Value(&m.fb.mailHost).
				Validate(validateRequired("IMAP host")),
			huh.NewInput().
				Title("IMAP port").
				Placeholder("993").
				Value(&m.fb.mailPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Placeholder("ops@example.com").
				Value(&m.fb.mailUser).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Leave blank to keep the stored password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.mailPassword),
			huh.NewConfirm().
				Title("Use TLS").
				Description("No uses STARTTLS").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.mailTLS),
			huh.NewInput().
				Title("Folder").
				Placeholder("INBOX").
				Value(&m.fb.mailFolder),
		).Title("Mailbox"),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.mode == modeConfirmClear {
			if !m.fb.confirm {
				m.mode = modeList
				return m, nil
			}
			return m, m.clearSecret(m.editing)
		}
		return m, m.save(m.editing)
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// apply returns cfg with the form values for i merged in.
func (fb formBindings) apply(i Integration, cfg model.AppConfig) model.AppConfig {
	if i == Mailbox {
		folder := strings.TrimSpace(fb.mailFolder)
		if folder == "" {
			folder = "INBOX"
		}
		cfg.Mail = model.MailConfig{
			Host:     strings.TrimSpace(fb.mailHost),
			Port:     strings.TrimSpace(fb.mailPort),
			Username: strings.TrimSpace(fb.mailUser),
			TLS:      fb.mailTLS,
			Folder:   folder,
		}
		return cfg
	}
	cfg.Address.Country = strings.ToLower(strings.TrimSpace(fb.placesCountry))
	cfg.Address.BaseURL = strings.TrimSpace(fb.placesURL)
	return cfg
}

func (fb formBindings) secret(i Integration) string {
	if i == Mailbox {
		return strings.TrimSpace(fb.mailPassword)
	}
	return strings.TrimSpace(fb.placesKey)
}

func (m Model) save(i Integration) tea.Cmd {
	fb := *m.fb
	cfg := fb.apply(i, m.cfg)
	secrets := m.opts.Secrets
	persist := m.opts.Save
	return func() tea.Msg {
		if s := fb.secret(i); s != "" {
			if secrets == nil {
				return savedMsg{integration: i, err: errors.New("no keyring available to store the secret")}
			}
			if err := secrets.Set(i.secretKey(), s); err != nil {
				return savedMsg{integration: i, err: err}
			}
		}
		if persist != nil {
			if err := persist(cfg); err != nil {
				return savedMsg{integration: i, err: err}
			}
		}

		out := savedMsg{integration: i, cfg: cfg}
		if secrets != nil {
			if k, err := secrets.Get(credential.PlacesAPIKey); err == nil && k != "" {
				out.places = address.NewClient(cfg.Address.BaseURL, k, cfg.Address.Country)
			}
		}
		return out
	}
}

func (m Model) clearSecret(i Integration) tea.Cmd {
	secrets := m.opts.Secrets
	return func() tea.Msg {
		err := secrets.Delete(i.secretKey())
		if errors.Is(err, credential.ErrNotFound) {
			err = nil
		}
		return clearedMsg{integration: i, err: err}
	}
}

// CheckConnection makes one real request against the integration.
func CheckConnection(ctx context.Context, i Integration, cfg model.AppConfig, secret string) error {
	if secret == "" {
		return fmt.Errorf("no %s secret stored", strings.ToLower(i.String()))
	}
	if i == Mailbox {
		if cfg.Mail.Host == "" {
			return errors.New("IMAP host is not set")
		}
		_, err := attach.NewMailbox(cfg.Mail, secret).Recent(ctx, 1, 1)
		return err
	}
	_, err := address.NewClient(cfg.Address.BaseURL, secret, cfg.Address.Country).Suggest(ctx, "1 George Street")
	return err
}

// View renders the settings view.
func (m Model) View() string {
	var content string
	switch m.mode {
	case modeForm, modeConfirmClear:
		if m.form != nil {
			content = m.form.View()
		}
	case modeChecking:
		content = fmt.Sprintf("%s Testing %s...\n\nPress esc to cancel.", m.spinner.View(), m.editing)
	case modeResult:
		content = m.viewResult()
	default:
		content = m.viewList()
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	for i, in := range integrations {
		line := fmt.Sprintf("%-9s %s", in, m.describe(in))
		if i == m.selected {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render("enter edit | t test | d remove secret | esc back"))
	return b.String()
}

func (m Model) describe(i Integration) string {
	stored := "no secret"
	if m.opts.Secrets == nil {
		stored = "no keyring"
	} else if v, err := m.opts.Secrets.Get(i.secretKey()); err == nil && v != "" {
		stored = "secret stored"
	}

	if i == Mailbox {
		if m.cfg.Mail.Host == "" {
			return "not configured"
		}
		return fmt.Sprintf("%s@%s:%s/%s  [%s]", m.cfg.Mail.Username, m.cfg.Mail.Host,
			m.cfg.Mail.Port, m.cfg.Mail.Folder, stored)
	}
	country := m.cfg.Address.Country
	if country == "" {
		country = "any country"
	}
	return fmt.Sprintf("%s  [%s]", country, stored)
}

func (m Model) viewResult() string {
	if m.checkErr != nil {
		return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render(m.editing.String()+" check failed") +
			"\n\n" + m.checkErr.Error() + "\n\n" +
			theme.DimmedStyle.Render("r retry | enter/esc back")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render(m.editing.String()+" is working") +
		"\n\n" + theme.DimmedStyle.Render("enter/esc back")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateURL(s string) error {
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host")
	}
	return nil
}

func validatePort(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}

func validateCountry(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) != 2 {
		return fmt.Errorf("use a two-letter country code")
	}
	return nil
}
