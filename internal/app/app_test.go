package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/address"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/store"
	"github.com/nhle/comtech-lite/internal/ui/board"
	"github.com/nhle/comtech-lite/internal/ui/command"
	"github.com/nhle/comtech-lite/internal/ui/detail"
	"github.com/nhle/comtech-lite/internal/ui/jobform"
	"github.com/nhle/comtech-lite/internal/ui/settings"
	"github.com/nhle/comtech-lite/tests/testutil"
)

var fixedNow = func() time.Time { return time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC) }

func newApp(t *testing.T) (Model, *store.Store) {
	t.Helper()
	s, _ := testutil.NewTestStore(t, store.WithClock(fixedNow))
	m := New(Options{Store: s, Money: pricing.Formatter{}, ExportDir: t.TempDir(), Now: fixedNow})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 240, Height: 40})
	return next.(Model), s
}

// run feeds msg to m and then runs the returned command once, feeding its
// message back in. Only use it where the command is a single store action.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	return next.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_AddJobFromForm(t *testing.T) {
	m, s := newApp(t)

	m = run(t, m, jobform.SubmittedMsg{Job: model.Job{
		Customer:    "Acme",
		NumbersList: []string{" 0299990000 ", ""},
		Status:      model.StageScoping,
	}})

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{"0299990000"}, jobs[0].NumbersList)
	assert.Equal(t, "Added Acme", m.notice)
	assert.Contains(t, m.View(), "Acme")
}

func TestApp_SaveDropsNonPositiveLines(t *testing.T) {
	m, s := newApp(t)

	m = run(t, m, jobform.SubmittedMsg{Job: model.Job{
		Customer: "Acme",
		Services: []model.ServiceLine{
			{Name: "SIP Port", UnitPrice: decimal.NewFromInt(49), Qty: decimal.NewFromInt(2)},
			{Name: "Handset", UnitPrice: decimal.NewFromInt(120), Qty: decimal.NewFromInt(-1)},
			{Name: "Spare", UnitPrice: decimal.NewFromInt(10), Qty: decimal.Zero},
		},
	}})

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	require.Len(t, jobs[0].Services, 1)
	assert.Equal(t, "SIP Port", jobs[0].Services[0].Name)
	assert.Equal(t, "Added Acme", m.notice)
}

func TestApp_InvalidJobShowsError(t *testing.T) {
	m, s := newApp(t)
	m = run(t, m, jobform.SubmittedMsg{Job: model.Job{Customer: "  "}})

	assert.Empty(t, s.Jobs())
	assert.Contains(t, m.notice, "customer is required")
}

func TestApp_EditKeepsTodos(t *testing.T) {
	m, s := newApp(t)
	ctx := context.Background()
	j, err := s.AddJob(ctx, model.Job{Customer: "Acme"})
	require.NoError(t, err)
	_, err = s.AddTodo(ctx, j.ID, "Port numbers")
	require.NoError(t, err)

	edited := j
	edited.Customer = "Acme Pty Ltd"
	run(t, m, jobform.SubmittedMsg{ID: j.ID, Job: edited})

	got, err := s.Job(j.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Pty Ltd", got.Customer)
	assert.Len(t, got.Todos, 1)
}

func TestApp_BoardMoveAndDetailActions(t *testing.T) {
	m, s := newApp(t)
	ctx := context.Background()
	j, err := s.AddJob(ctx, model.Job{Customer: "Acme"})
	require.NoError(t, err)

	m = run(t, m, board.MoveJobMsg{JobID: j.ID, Stage: model.StageScheduled})
	got, _ := s.Job(j.ID)
	assert.Equal(t, model.StageScheduled, got.Status)

	next, _ := m.Update(board.SelectedJobMsg{JobID: j.ID})
	m = next.(Model)
	assert.Equal(t, ViewDetail, m.currentView)

	m = run(t, m, detail.ActionMsg{Action: detail.ActionAddTodo, JobID: j.ID, Arg: "Book tech"})
	got, _ = s.Job(j.ID)
	require.Len(t, got.Todos, 1)

	m = run(t, m, detail.ActionMsg{Action: detail.ActionToggleTodo, JobID: j.ID, Arg: got.Todos[0].ID})
	got, _ = s.Job(j.ID)
	assert.True(t, got.Todos[0].Done)

	m = run(t, m, detail.ActionMsg{Action: detail.ActionDelete, JobID: j.ID})
	assert.Empty(t, s.Jobs())
	assert.Equal(t, ViewBoard, m.currentView)
}

func TestApp_AttachFile(t *testing.T) {
	m, s := newApp(t)
	j, err := s.AddJob(context.Background(), model.Job{Customer: "Acme"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	m = run(t, m, detail.ActionMsg{Action: detail.ActionAttach, JobID: j.ID, Arg: path})
	got, _ := s.Job(j.ID)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "notes.txt", got.Attachments[0].Name)
	assert.Equal(t, "Attached 1 file(s)", m.notice)

	m = run(t, m, detail.ActionMsg{Action: detail.ActionAttach, JobID: j.ID, Arg: filepath.Join(t.TempDir(), "missing.pdf")})
	assert.Contains(t, m.notice, "Error")
}

func TestApp_ExportImportCommands(t *testing.T) {
	m, s := newApp(t)
	ctx := context.Background()
	_, err := s.AddJob(ctx, model.Job{Customer: "Acme"})
	require.NoError(t, err)

	m = run(t, m, command.CommandMsg{Name: "export"})
	path := filepath.Join(m.exportDir, "comtech-lite-2025-07-09.csv")
	assert.FileExists(t, path)
	assert.Contains(t, m.notice, "Exported 1 jobs")

	m = run(t, m, command.CommandMsg{Name: "clear"})
	assert.Empty(t, s.Jobs())

	m = run(t, m, command.CommandMsg{Name: "import", Arg: path})
	require.Len(t, s.Jobs(), 1)
	assert.Equal(t, "Acme", s.Jobs()[0].Customer)
	assert.Equal(t, "Imported 1 jobs", m.notice)
}

func TestApp_StageFilter(t *testing.T) {
	m, s := newApp(t)
	ctx := context.Background()
	_, err := s.AddJob(ctx, model.Job{Customer: "Acme", Status: model.StageOnHold})
	require.NoError(t, err)
	_, err = s.AddJob(ctx, model.Job{Customer: "Beta"})
	require.NoError(t, err)
	m.refresh(s.Snapshot())

	next, _ := m.Update(command.CommandMsg{Name: "stage", Arg: "on hold"})
	m = next.(Model)
	assert.Equal(t, model.StageOnHold, m.filter.Stage)
	assert.Contains(t, m.summary(), "1 of 2 jobs")

	next, _ = m.Update(command.CommandMsg{Name: "stage", Arg: "all"})
	m = next.(Model)
	assert.Contains(t, m.summary(), "2 of 2 jobs")

	next, _ = m.Update(command.CommandMsg{Name: "stage", Arg: "Nowhere"})
	m = next.(Model)
	assert.Contains(t, m.notice, "unknown stage")
}

func TestApp_SearchKeys(t *testing.T) {
	m, s := newApp(t)
	ctx := context.Background()
	_, err := s.AddJob(ctx, model.Job{Customer: "Acme"})
	require.NoError(t, err)
	_, err = s.AddJob(ctx, model.Job{Customer: "Beta"})
	require.NoError(t, err)
	m.refresh(s.Snapshot())

	next, _ := m.Update(keyMsg("/"))
	m = next.(Model)
	require.True(t, m.searching)

	next, _ = m.Update(keyMsg("beta"))
	m = next.(Model)
	assert.Equal(t, "beta", m.filter.Query)
	assert.Contains(t, m.summary(), "1 of 2 jobs")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.False(t, m.searching)
	assert.Empty(t, m.filter.Query)
}

func TestApp_ToggleViewAndHelp(t *testing.T) {
	m, _ := newApp(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, ViewTable, m.currentView)

	next, _ = m.Update(keyMsg("?"))
	m = next.(Model)
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.Equal(t, ViewTable, m.currentView)
}

func TestApp_RemovedJobLeavesDetail(t *testing.T) {
	m, s := newApp(t)
	ctx := context.Background()
	j, err := s.AddJob(ctx, model.Job{Customer: "Acme"})
	require.NoError(t, err)

	next, _ := m.Update(board.SelectedJobMsg{JobID: j.ID})
	m = next.(Model)
	require.NoError(t, s.RemoveJob(ctx, j.ID))

	m.refresh(s.Snapshot())
	assert.Equal(t, ViewBoard, m.currentView)
	assert.Equal(t, "Job was removed", m.notice)
}

func TestNextStageFilter(t *testing.T) {
	assert.Equal(t, model.StageInTray, nextStageFilter(""))
	assert.Equal(t, model.StageScoping, nextStageFilter(model.StageInTray))
	assert.Equal(t, model.Stage(""), nextStageFilter(model.StageOnHold))
}

func TestApp_SettingsView(t *testing.T) {
	m, _ := newApp(t)

	next, _ := m.Update(keyMsg(","))
	m = next.(Model)
	assert.Equal(t, ViewSettings, m.currentView)
	assert.Contains(t, m.View(), "Settings")
	assert.Contains(t, m.View(), "no keyring")

	next, _ = m.Update(settings.SavedMsg{Places: address.NewClient("https://example.com", "k", "au")})
	m = next.(Model)
	assert.Equal(t, ViewSettings, m.currentView)

	next, _ = m.Update(settings.DoneMsg{})
	m = next.(Model)
	assert.Equal(t, ViewBoard, m.currentView)

	next, _ = m.Update(command.CommandMsg{Name: "settings"})
	m = next.(Model)
	assert.Equal(t, ViewSettings, m.currentView)
}
