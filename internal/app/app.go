package app

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/store"
	appsync "github.com/nhle/comtech-lite/internal/sync"
	"github.com/nhle/comtech-lite/internal/theme"
	"github.com/nhle/comtech-lite/internal/ui"
	"github.com/nhle/comtech-lite/internal/ui/addresspick"
	"github.com/nhle/comtech-lite/internal/ui/board"
	"github.com/nhle/comtech-lite/internal/ui/command"
	"github.com/nhle/comtech-lite/internal/ui/detail"
	helpview "github.com/nhle/comtech-lite/internal/ui/help"
	"github.com/nhle/comtech-lite/internal/ui/jobform"
	"github.com/nhle/comtech-lite/internal/ui/jobtable"
	"github.com/nhle/comtech-lite/internal/ui/pricebook"
	"github.com/nhle/comtech-lite/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewTable
	ViewDetail
	ViewForm
	ViewPriceBook
	ViewAddress
	ViewSettings
	ViewHelp
	ViewCommand
)

// Options wires the root model to its collaborators.
type Options struct {
	Store *store.Store
	Money pricing.Formatter

	// Suggester backs the address picker. Nil leaves free-text entry only.
	Suggester addresspick.Suggester

	// ExportDir receives CSV exports written without an explicit path.
	ExportDir string

	// ReloadInterval is how often the slot is polled for outside writes.
	ReloadInterval time.Duration

	// Settings wires the integrations view to config and keyring.
	Settings settings.Options

	Logger *slog.Logger
	Now    func() time.Time
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	listView     ViewState
	layout       ui.Layout
	store        *store.Store
	watcher      *appsync.Watcher
	keys         *keys.KeyMap
	money        pricing.Formatter
	log          *slog.Logger
	now          func() time.Time
	exportDir    string

	board       board.Model
	table       jobtable.Model
	detail      detail.Model
	form        jobform.Model
	prices      pricebook.Model
	address     addresspick.Model
	settings    settings.Model
	helpView    helpview.Model
	commandView command.Model

	search    textinput.Model
	searching bool
	filter    store.JobFilter
	state     store.State

	notice string
	ready  bool
}

// New creates the root application model.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "customer, number, service..."

	m := Model{
		currentView: ViewBoard,
		listView:    ViewBoard,
		store:       opts.Store,
		watcher:     appsync.New(opts.Store, opts.ReloadInterval, opts.Logger),
		keys:        k,
		money:       opts.Money,
		log:         opts.Logger,
		now:         opts.Now,
		exportDir:   opts.ExportDir,
		board:       board.New(k, opts.Money, 80, 24),
		table:       jobtable.New(k, opts.Money, 80, 24),
		detail:      detail.New(k, opts.Money, 80, 24),
		form:        jobform.New(80, 24),
		prices:      pricebook.New(opts.Store, k, opts.Money, 80, 24),
		address:     addresspick.New(opts.Suggester, 80),
		settings:    settings.New(opts.Settings, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		search:      search,
	}
	m.refresh(opts.Store.Snapshot())
	return m
}

// Init starts watching the store for changes.
func (m Model) Init() tea.Cmd {
	return m.watcher.Start()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.board.SetSize(w, h)
		m.table.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.prices.SetSize(w, h)
		m.address.SetSize(w)
		m.settings.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.ChangedMsg:
		m.refresh(msg.State)
		return m, m.watcher.WaitForChange()

	case appsync.ReloadErrorMsg:
		m.notice = "Reload failed: " + msg.Err.Error()
		return m, m.watcher.WaitForChange()

	case resultMsg:
		if msg.err != nil {
			m.log.Warn("action failed", "action", msg.action, "error", msg.err)
			m.notice = "Error: " + msg.err.Error()
		} else {
			m.notice = msg.notice
		}
		// Refresh directly too; the watcher may not be running.
		m.refresh(m.store.Snapshot())
		return m, nil

	case board.SelectedJobMsg:
		return m.openDetail(msg.JobID)

	case jobtable.SelectedJobMsg:
		return m.openDetail(msg.JobID)

	case board.MoveJobMsg:
		return m, m.moveJob(msg.JobID, msg.Stage)

	case board.NewJobMsg:
		return m.openCreate(msg.Stage)

	case detail.BackMsg:
		m.currentView = m.listView
		return m, nil

	case detail.ActionMsg:
		return m.handleDetailAction(msg)

	case jobform.SubmittedMsg:
		m.currentView = m.previousView
		return m, m.saveJob(msg.ID, msg.Job)

	case jobform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case addresspick.PickedMsg:
		m.currentView = ViewDetail
		return m, m.setAddress(msg.JobID, msg.Address)

	case addresspick.CancelMsg:
		m.currentView = ViewDetail
		return m, nil

	case pricebook.CloseMsg:
		m.currentView = m.listView
		return m, nil

	case settings.SavedMsg:
		if msg.Places != nil {
			m.address = addresspick.New(msg.Places, m.layout.ContentWidth())
		}
		return m, nil

	case settings.DoneMsg:
		m.currentView = m.listView
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(msg)

	case command.ErrorMsg:
		m.currentView = m.previousView
		m.notice = "Error: " + msg.Err.Error()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.watcher.Stop()
			return m, tea.Quit
		}
		m.notice = ""
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.inputFocused() {
			break
		}
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// inputFocused reports whether the active view is capturing text.
func (m Model) inputFocused() bool {
	switch m.currentView {
	case ViewForm, ViewAddress, ViewCommand:
		return true
	case ViewDetail:
		return m.detail.Editing()
	case ViewPriceBook:
		return m.prices.Editing()
	case ViewSettings:
		return m.settings.Editing()
	}
	return false
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	onList := m.currentView == ViewBoard || m.currentView == ViewTable

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case m.currentView == ViewHelp && key.Matches(msg, m.keys.Back):
		m.currentView = m.previousView
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case !onList:
		return m, nil, false

	case key.Matches(msg, m.keys.Quit):
		m.watcher.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.filter.Query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.StageNext):
		m.filter.Stage = nextStageFilter(m.filter.Stage)
		m.refresh(m.state)
		return m, nil, true

	case key.Matches(msg, m.keys.ToggleView):
		if m.listView == ViewBoard {
			m.listView = ViewTable
		} else {
			m.listView = ViewBoard
		}
		m.currentView = m.listView
		return m, nil, true

	case key.Matches(msg, m.keys.PriceBook):
		m.previousView = m.currentView
		m.currentView = ViewPriceBook
		return m, nil, true

	case key.Matches(msg, m.keys.Settings):
		m.previousView = m.currentView
		m.currentView = ViewSettings
		return m, nil, true

	case key.Matches(msg, m.keys.Edit):
		if j, ok := m.selectedJob(); ok {
			next, cmd := m.openEdit(j)
			return next, cmd, true
		}
		return m, nil, true

	case m.currentView == ViewTable && key.Matches(msg, m.keys.New):
		stage := m.filter.Stage
		if stage == "" {
			stage = model.StageInTray
		}
		next, cmd := m.openCreate(stage)
		return next, cmd, true
	}
	return m, nil, false
}

// nextStageFilter cycles all → each stage → all.
func nextStageFilter(s model.Stage) model.Stage {
	if s == "" {
		return model.Stages[0]
	}
	i := s.Index()
	if i < 0 || i == len(model.Stages)-1 {
		return ""
	}
	return model.Stages[i+1]
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.filter.Query = ""
		m.refresh(m.state)
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Query = m.search.Value()
	m.refresh(m.state)
	return m, cmd
}

func (m Model) selectedJob() (model.Job, bool) {
	if m.currentView == ViewTable {
		return m.table.SelectedJob()
	}
	return m.board.SelectedJob()
}

func (m Model) openDetail(id string) (tea.Model, tea.Cmd) {
	j, err := m.store.Job(id)
	if err != nil {
		m.notice = "Error: " + err.Error()
		return m, nil
	}
	m.detail.SetJob(j)
	m.currentView = ViewDetail
	return m, nil
}

func (m Model) openCreate(stage model.Stage) (tea.Model, tea.Cmd) {
	m.previousView = m.currentView
	m.currentView = ViewForm
	cmd := m.form.StartCreate(stage)
	return m, cmd
}

func (m Model) openEdit(j model.Job) (tea.Model, tea.Cmd) {
	m.previousView = m.currentView
	m.currentView = ViewForm
	cmd := m.form.StartEdit(j)
	return m, cmd
}

func (m Model) handleDetailAction(msg detail.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case detail.ActionEdit:
		j, err := m.store.Job(msg.JobID)
		if err != nil {
			m.notice = "Error: " + err.Error()
			return m, nil
		}
		return m.openEdit(j)
	case detail.ActionDelete:
		m.currentView = m.listView
		return m, m.removeJob(msg.JobID)
	case detail.ActionMove:
		return m, m.moveJob(msg.JobID, model.Stage(msg.Arg))
	case detail.ActionAddTodo:
		return m, m.addTodo(msg.JobID, msg.Arg)
	case detail.ActionToggleTodo:
		return m, m.toggleTodo(msg.JobID, msg.Arg)
	case detail.ActionAttach:
		return m, m.attachFile(msg.JobID, msg.Arg)
	case detail.ActionAddress:
		j, err := m.store.Job(msg.JobID)
		if err != nil {
			m.notice = "Error: " + err.Error()
			return m, nil
		}
		m.currentView = ViewAddress
		cmd := m.address.Start(j.ID, j.Address)
		return m, cmd
	}
	return m, nil
}

// refresh pushes a state snapshot into every view.
func (m *Model) refresh(st store.State) {
	m.state = st
	jobs := store.FilterJobs(st.Jobs, m.filter)
	m.board.SetJobs(jobs)
	m.table.SetJobs(jobs)
	m.prices.SetItems(st.PriceBook)
	m.form.SetPriceBook(st.PriceBook)

	if shown, ok := m.detail.Job(); ok {
		i := slices.IndexFunc(st.Jobs, func(j model.Job) bool { return j.ID == shown.ID })
		switch {
		case i >= 0:
			m.detail.SetJob(st.Jobs[i])
		case m.currentView == ViewDetail || m.currentView == ViewAddress:
			m.currentView = m.listView
			m.notice = "Job was removed"
		}
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBoard:
		m.board, cmd = m.board.Update(msg)
	case ViewTable:
		m.table, cmd = m.table.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewPriceBook:
		m.prices, cmd = m.prices.Update(msg)
	case ViewAddress:
		m.address, cmd = m.address.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Comtech Lite", m.summary())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.Render(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBoard:
		return m.board.View()
	case ViewTable:
		return m.table.View()
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewPriceBook:
		return m.prices.View()
	case ViewAddress:
		return m.address.View()
	case ViewSettings:
		return m.settings.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// summary describes the jobs currently shown and the active filter.
func (m Model) summary() string {
	jobs := store.FilterJobs(m.state.Jobs, m.filter)
	total := decimal.Zero
	for _, j := range jobs {
		total = total.Add(pricing.TotalInc(j))
	}

	parts := []string{fmt.Sprintf("%d of %d jobs", len(jobs), len(m.state.Jobs))}
	if m.filter.Stage != "" {
		parts = append(parts, "stage: "+string(m.filter.Stage))
	}
	if m.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.filter.Query))
	}
	parts = append(parts, m.money.Format(total)+" inc GST")
	return strings.Join(parts, " | ")
}

// statusLine returns the search input, a notice, or keyboard hints.
func (m Model) statusLine() string {
	if m.searching {
		return m.search.View()
	}
	if m.notice != "" {
		return theme.NoticeStyle.Render(m.notice)
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | e edit | d delete | H/L stage | t todo | x toggle | a attach | A address"
	case ViewForm:
		return "enter next | shift+tab back | esc cancel"
	case ViewPriceBook:
		return "n new | e edit | d delete | S seed | esc back"
	case ViewAddress:
		return "↑/↓ choose | enter save | esc cancel"
	case ViewSettings:
		return "enter edit | t test | d remove secret | esc back"
	case ViewTable:
		return "q quit | ? help | n new | e edit | / search | s stage | tab board | p prices | , settings"
	default:
		return "q quit | ? help | n new | H/L move | / search | s stage | tab table | p prices | , settings"
	}
}
