package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/model"
)

func sampleJobs() []model.Job {
	return []model.Job{
		{
			ID: "1", Customer: "Acme Co", Status: model.StageScoping,
			NumbersList: []string{"0299990000"},
			Services:    []model.ServiceLine{{Name: "SIP Port", Qty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(49)}},
		},
		{ID: "2", Customer: "Beta Pty", Reference: "PO-77", Status: model.StageComplete, Address: "12 High St"},
		{ID: "3", Customer: "Gamma", Status: model.StageScoping, PrimaryNumber: "0400111222"},
		{ID: "4", Customer: "Stray", Status: model.Stage("Archived")},
	}
}

func ids(jobs []model.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestFilterJobs(t *testing.T) {
	tests := []struct {
		name   string
		filter JobFilter
		want   []string
	}{
		{"empty matches all", JobFilter{}, []string{"1", "2", "3", "4"}},
		{"customer case-insensitive", JobFilter{Query: "ACME"}, []string{"1"}},
		{"service name", JobFilter{Query: "sip port"}, []string{"1"}},
		{"number in list", JobFilter{Query: "029999"}, []string{"1"}},
		{"primary number", JobFilter{Query: "0400"}, []string{"3"}},
		{"reference", JobFilter{Query: "po-77"}, []string{"2"}},
		{"address", JobFilter{Query: "high st"}, []string{"2"}},
		{"status text", JobFilter{Query: "complete"}, []string{"2"}},
		{"stage only", JobFilter{Stage: model.StageScoping}, []string{"1", "3"}},
		{"stage and query", JobFilter{Stage: model.StageScoping, Query: "gamma"}, []string{"3"}},
		{"no match", JobFilter{Query: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterJobs(sampleJobs(), tt.filter)))
		})
	}
}

func TestBoard(t *testing.T) {
	cols := Board(sampleJobs())
	require.Len(t, cols, len(model.Stages))

	for i, c := range cols {
		assert.Equal(t, model.Stages[i], c.Stage)
	}
	assert.Equal(t, []string{"1", "3"}, ids(cols[model.StageScoping.Index()].Jobs))
	assert.Equal(t, []string{"2"}, ids(cols[model.StageComplete.Index()].Jobs))
	assert.Empty(t, cols[model.StageInTray.Index()].Jobs)
}

func TestGroupByCategory(t *testing.T) {
	items := []model.PriceItem{
		{ID: "a", Name: "Port", Category: "Telephony"},
		{ID: "b", Name: "Misc"},
		{ID: "c", Name: "NBN 50", Category: "NBN"},
		{ID: "d", Name: "Trunk", Category: "Telephony"},
	}

	groups := GroupByCategory(items)
	require.Len(t, groups, 3)
	assert.Equal(t, "NBN", groups[0].Name)
	assert.Equal(t, "Telephony", groups[1].Name)
	assert.Equal(t, model.UncategorisedLabel, groups[2].Name)
	assert.Equal(t, "a", groups[1].Items[0].ID)
	assert.Equal(t, "d", groups[1].Items[1].ID)

	assert.Empty(t, GroupByCategory(nil))
}
