package detail

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleJob() model.Job {
	return model.Job{
		ID:       "j1",
		Customer: "Acme",
		Status:   model.StageScoping,
		Services: []model.ServiceLine{
			{ID: "s1", Name: "SIP", UnitPrice: decimal.NewFromInt(100), Qty: decimal.NewFromInt(2)},
		},
		Adjustments: []model.Adjustment{{ID: "a1", Label: "Discount", AmountEx: decimal.NewFromInt(-20)}},
		Todos: []model.Todo{
			{ID: "t1", Text: "Port request"},
			{ID: "t2", Text: "Book install", Done: true},
		},
		Attachments: []model.Attachment{{ID: "f1", Name: "bill.pdf", Type: "application/pdf", Size: 2048}},
	}
}

func newDetail() Model {
	m := New(keys.DefaultKeyMap(), pricing.Formatter{}, 100, 60)
	m.SetJob(sampleJob())
	return m
}

func TestDetail_RendersTotals(t *testing.T) {
	m := newDetail()
	view := m.View()

	assert.Contains(t, view, "Acme")
	assert.Contains(t, view, "$200.00")
	assert.Contains(t, view, "$180.00")
	assert.Contains(t, view, "$198.00")
	assert.Contains(t, view, "[x] Book install")
	assert.Contains(t, view, "bill.pdf")
	assert.Contains(t, view, "2.0 KB")
}

func TestDetail_ToggleFocusedTodo(t *testing.T) {
	m := newDetail()
	m, _ = m.Update(runes("j"))
	_, cmd := m.Update(runes("x"))
	require.NotNil(t, cmd)
	assert.Equal(t, ActionMsg{Action: ActionToggleTodo, JobID: "j1", Arg: "t2"}, cmd())
}

func TestDetail_MoveUsesNeighbourStages(t *testing.T) {
	m := newDetail()
	_, cmd := m.Update(runes("L"))
	assert.Equal(t, ActionMsg{Action: ActionMove, JobID: "j1", Arg: string(model.StageSubmittedToCarrier)}, cmd())

	_, cmd = m.Update(runes("H"))
	assert.Equal(t, ActionMsg{Action: ActionMove, JobID: "j1", Arg: string(model.StageInTray)}, cmd())
}

func TestDetail_AddTodoInput(t *testing.T) {
	m := newDetail()
	m, _ = m.Update(runes("t"))
	require.True(t, m.Editing())

	m, _ = m.Update(runes("Call carrier"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Editing())
	require.NotNil(t, cmd)
	assert.Equal(t, ActionMsg{Action: ActionAddTodo, JobID: "j1", Arg: "Call carrier"}, cmd())
}

func TestDetail_InputEscCancels(t *testing.T) {
	m := newDetail()
	m, _ = m.Update(runes("a"))
	m, _ = m.Update(runes("/tmp/x.pdf"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())
	assert.Nil(t, cmd)
}

func TestDetail_BackAndEdit(t *testing.T) {
	m := newDetail()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, BackMsg{}, cmd())

	_, cmd = m.Update(runes("e"))
	assert.Equal(t, ActionMsg{Action: ActionEdit, JobID: "j1"}, cmd())
}

func TestDetail_SetJobKeepsCursorForSameJob(t *testing.T) {
	m := newDetail()
	m, _ = m.Update(runes("j"))

	j := sampleJob()
	j.Todos = j.Todos[:1]
	m.SetJob(j)
	assert.Equal(t, 0, m.todo)

	other := sampleJob()
	other.ID = "j2"
	m.SetJob(other)
	assert.Equal(t, 0, m.todo)
}

func TestDetail_Empty(t *testing.T) {
	m := New(keys.DefaultKeyMap(), pricing.Formatter{}, 80, 20)
	_, ok := m.Job()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No job selected")
}
