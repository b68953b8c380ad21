package addresspick

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/address"
)

type fakeSuggester struct {
	calls []string
	out   []address.Suggestion
	err   error
}

func (f *fakeSuggester) Suggest(_ context.Context, input string) ([]address.Suggestion, error) {
	f.calls = append(f.calls, input)
	return f.out, f.err
}

func TestPicker_StaleSearchIgnored(t *testing.T) {
	f := &fakeSuggester{out: []address.Suggestion{{Description: "1 George St, Sydney NSW"}}}
	m := New(f, 80)
	m.Start("j1", "1 Geo")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m, cmd := m.Update(searchMsg{seq: 1})
	assert.Nil(t, cmd, "superseded search must not run")

	m, cmd = m.Update(searchMsg{seq: m.seq})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Equal(t, []string{"1 Geor"}, f.calls)
	require.Len(t, m.suggestions, 1)
}

func TestPicker_EnterPicksHighlighted(t *testing.T) {
	m := New(&fakeSuggester{}, 80)
	m.Start("j1", "1 George")
	m, _ = m.Update(resultsMsg{seq: m.seq, suggestions: []address.Suggestion{
		{Description: "1 George St, Sydney NSW"},
		{Description: "1 George Rd, Perth WA"},
	}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, PickedMsg{JobID: "j1", Address: "1 George Rd, Perth WA"}, cmd())
}

func TestPicker_EnterWithoutSuggestionsKeepsText(t *testing.T) {
	m := New(nil, 80)
	m.Start("j1", "  12 Unlisted Lane ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, PickedMsg{JobID: "j1", Address: "12 Unlisted Lane"}, cmd())
	assert.Contains(t, m.View(), "no Places API key")
}

func TestPicker_ShortInputSkipsLookup(t *testing.T) {
	f := &fakeSuggester{}
	m := New(f, 80)
	m.Start("j1", "ab")
	_, cmd := m.Update(searchMsg{seq: m.seq})
	assert.Nil(t, cmd)
	assert.Empty(t, f.calls)
}

func TestPicker_ShowsLookupError(t *testing.T) {
	m := New(&fakeSuggester{}, 80)
	m.Start("j1", "1 George")
	m, _ = m.Update(resultsMsg{seq: m.seq, err: errors.New("places API error REQUEST_DENIED")})
	assert.Contains(t, m.View(), "REQUEST_DENIED")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, CancelMsg{}, cmd())
}
