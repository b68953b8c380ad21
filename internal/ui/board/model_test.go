package board

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newBoard(jobs ...model.Job) Model {
	m := New(keys.DefaultKeyMap(), pricing.Formatter{}, 240, 30)
	m.SetJobs(jobs)
	return m
}

func TestBoard_NavigateAndSelect(t *testing.T) {
	m := newBoard(
		model.Job{ID: "a", Customer: "Acme", Status: model.StageInTray},
		model.Job{ID: "b", Customer: "Beta", Status: model.StageScoping},
		model.Job{ID: "c", Customer: "Gamma", Status: model.StageScoping},
	)

	j, ok := m.SelectedJob()
	require.True(t, ok)
	assert.Equal(t, "a", j.ID)

	m, _ = m.Update(runes("l"))
	m, _ = m.Update(runes("j"))
	j, ok = m.SelectedJob()
	require.True(t, ok)
	assert.Equal(t, "c", j.ID)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedJobMsg{JobID: "c"}, cmd())
}

func TestBoard_MoveFollowsJob(t *testing.T) {
	m := newBoard(model.Job{ID: "a", Customer: "Acme", Status: model.StageInTray})

	m, cmd := m.Update(runes("L"))
	require.NotNil(t, cmd)
	assert.Equal(t, MoveJobMsg{JobID: "a", Stage: model.StageScoping}, cmd())
	assert.Equal(t, model.StageScoping, m.FocusedStage())

	// The store echoes the move back; the cursor stays on the job.
	m.SetJobs([]model.Job{{ID: "a", Customer: "Acme", Status: model.StageScoping}})
	j, ok := m.SelectedJob()
	require.True(t, ok)
	assert.Equal(t, "a", j.ID)
}

func TestBoard_MoveClampsAtEnds(t *testing.T) {
	m := newBoard(model.Job{ID: "a", Customer: "Acme", Status: model.StageInTray})

	_, cmd := m.Update(runes("H"))
	assert.Nil(t, cmd)
}

func TestBoard_NewUsesFocusedStage(t *testing.T) {
	m := newBoard()
	m, _ = m.Update(runes("l"))
	m, _ = m.Update(runes("l"))

	_, cmd := m.Update(runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, NewJobMsg{Stage: model.StageSubmittedToCarrier}, cmd())
}

func TestBoard_ViewShowsEveryStage(t *testing.T) {
	m := newBoard(model.Job{ID: "a", Customer: "Acme", Status: model.StageOnHold})
	out := m.View()
	for _, st := range model.Stages {
		assert.Contains(t, out, string(st))
	}
	assert.Contains(t, out, "Acme")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "", truncate("abc", 0))
}
