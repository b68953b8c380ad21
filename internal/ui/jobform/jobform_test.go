package jobform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/model"
)

func TestParseNumbers(t *testing.T) {
	assert.Equal(t, []string{"0299990000", "0299990001", "1300"}, ParseNumbers(" 0299990000\n\n0299990001, 1300 "))
	assert.Empty(t, ParseNumbers("  \n"))
}

func TestParseServiceLines(t *testing.T) {
	lines, err := ParseServiceLines("SIP Port @ 2 @ 49\n\nLabour @ home @ 1.5 @ $1,200.50\n", nil)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "SIP Port", lines[0].Name)
	assert.True(t, lines[0].Qty.Equal(decimal.NewFromInt(2)))
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(49)))

	assert.Equal(t, "Labour @ home", lines[1].Name)
	assert.True(t, lines[1].Qty.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, lines[1].UnitPrice.Equal(decimal.RequireFromString("1200.50")))
}

func TestParseServiceLines_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"too few parts", "SIP @ 2", "line 1"},
		{"bad qty", "SIP @ two @ 49", "bad qty"},
		{"bad price", "ok @ 1 @ 1\nSIP @ 2 @ abc", "line 2: bad price"},
		{"no name", " @ 1 @ 2", "name is required"},
		{"negative qty", "SIP @ -1 @ 2", "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseServiceLines(tt.in, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseServiceLines_ReusesPrevious(t *testing.T) {
	prev := []model.ServiceLine{
		{ID: "l1", ServiceID: "p1", Name: "SIP", UnitNote: "(Per Channel)"},
	}
	lines, err := ParseServiceLines("SIP @ 3 @ 10\nSIP @ 1 @ 10", prev)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "l1", lines[0].ID)
	assert.Equal(t, "p1", lines[0].ServiceID)
	assert.Equal(t, "(Per Channel)", lines[0].UnitNote)
	assert.Empty(t, lines[1].ID)
}

func TestServiceLinesRoundTrip(t *testing.T) {
	in := []model.ServiceLine{
		{Name: "SIP", Qty: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("49.5")},
	}
	text := FormatServiceLines(in)
	assert.Equal(t, "SIP @ 2 @ 49.50", text)

	out, err := ParseServiceLines(text, nil)
	require.NoError(t, err)
	assert.True(t, out[0].UnitPrice.Equal(in[0].UnitPrice))
}

func TestParseAdjustments(t *testing.T) {
	adjs, err := ParseAdjustments("Loyalty discount @ -50\nFreight @ $12.5\n @ 3", []model.Adjustment{{ID: "a1", Label: "Freight"}})
	require.NoError(t, err)
	require.Len(t, adjs, 3)
	assert.True(t, adjs[0].AmountEx.Equal(decimal.NewFromInt(-50)))
	assert.Equal(t, "a1", adjs[1].ID)
	assert.Empty(t, adjs[2].Label)

	_, err = ParseAdjustments("no amount here", nil)
	assert.Error(t, err)

	assert.Equal(t, "Freight @ 12.50", FormatAdjustments(adjs[1:2]))
}

func TestDraft_EditKeepsIdentity(t *testing.T) {
	job := model.Job{
		ID:            "j1",
		Customer:      "Acme",
		NumbersList:   []string{"0299990000", "0299990001"},
		PrimaryNumber: "0299990001",
		Status:        model.StageScheduled,
		Services: []model.ServiceLine{
			{ID: "l1", Name: "SIP", Qty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(49)},
		},
		Todos:     []model.Todo{{ID: "t1", Text: "Call carrier"}},
		CreatedAt: "2025-07-01",
	}

	m := New(100, 40)
	m.StartEdit(job)
	draft, err := m.Draft()
	require.NoError(t, err)

	assert.Equal(t, "j1", draft.ID)
	assert.Equal(t, job.NumbersList, draft.NumbersList)
	assert.Equal(t, "0299990001", draft.PrimaryNumber)
	assert.Equal(t, model.StageScheduled, draft.Status)
	assert.Equal(t, "l1", draft.Services[0].ID)
	assert.Equal(t, job.Todos, draft.Todos)
	assert.Equal(t, "2025-07-01", draft.CreatedAt)
}

func TestDraft_CreateDefaultsAndPicks(t *testing.T) {
	m := New(100, 40)
	m.SetPriceBook([]model.PriceItem{
		{ID: "p1", Name: "3CX Install", UnitPrice: decimal.NewFromInt(899)},
	})
	m.StartCreate(model.StageScoping)

	m.fb.customer = "  Beta  "
	m.fb.numbers = "0299990000\n0299990001"
	m.fb.picked = []string{"p1", "missing"}

	draft, err := m.Draft()
	require.NoError(t, err)
	assert.Empty(t, draft.ID)
	assert.Equal(t, "Beta", draft.Customer)
	assert.Equal(t, model.StageScoping, draft.Status)
	assert.Equal(t, "0299990000", draft.PrimaryNumber)
	require.Len(t, draft.Services, 1)
	assert.Equal(t, "p1", draft.Services[0].ServiceID)
	assert.True(t, draft.Services[0].Qty.Equal(decimal.NewFromInt(1)))
}

func TestStartCreate_InvalidStageFallsBack(t *testing.T) {
	m := New(100, 40)
	m.StartCreate("Nowhere")
	assert.Equal(t, model.StageInTray, m.fb.stage)
}
