package pricebook

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/store"
	"github.com/nhle/comtech-lite/tests/testutil"
)

func newBook(t *testing.T) (Model, *store.Store) {
	t.Helper()
	s, _ := testutil.NewTestStore(t)
	return New(s, keys.DefaultKeyMap(), pricing.Formatter{}, 100, 40), s
}

func runes(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestPriceBook_GroupedOrder(t *testing.T) {
	m, _ := newBook(t)

	p, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "3CX Install", p.Name, "Phone Systems sorts before Telephony")

	m, _ = m.Update(runes("j"))
	p, _ = m.Selected()
	assert.Equal(t, "SIP Port (single DID)", p.Name)

	m, _ = m.Update(runes("j"))
	p, _ = m.Selected()
	assert.Equal(t, "3CX Install", p.Name, "cursor wraps")

	view := m.View()
	assert.Contains(t, view, "Phone Systems – Services")
	assert.Contains(t, view, "$899.00")
}

func TestPriceBook_SaveNewItem(t *testing.T) {
	m, s := newBook(t)
	*m.fb = formBindings{name: " Fax2Email ", unitPrice: "$1,015.50", category: "Telephony – Services"}

	msg := m.saveItem()()
	m, _ = m.Update(msg)

	book := s.PriceBook()
	require.Len(t, book, 3)
	assert.Equal(t, "Fax2Email", book[0].Name)
	assert.True(t, book[0].UnitPrice.Equal(decimal.RequireFromString("1015.50")))
	assert.Equal(t, "Item added", m.statusMsg)
	assert.Len(t, m.items, 3)
}

func TestPriceBook_EditItem(t *testing.T) {
	m, s := newBook(t)
	p, _ := m.Selected()
	m.editingID = p.ID
	*m.fb = formBindings{name: "3CX Install", unitPrice: "950", category: ""}

	m, _ = m.Update(m.saveItem()())

	for _, item := range s.PriceBook() {
		if item.ID == p.ID {
			assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(950)))
			assert.Empty(t, item.Category)
		}
	}
	assert.Contains(t, m.View(), "Uncategorised")
}

func TestPriceBook_DeleteAndSeed(t *testing.T) {
	m, s := newBook(t)
	p, _ := m.Selected()

	m, _ = m.Update(m.deleteItem(p.ID)())
	assert.Len(t, s.PriceBook(), 1)
	assert.Len(t, m.items, 1)

	m, _ = m.Update(m.seed()())
	assert.Len(t, s.PriceBook(), 31)
	assert.Len(t, m.items, 31)
	assert.Equal(t, "Loaded KNG July 2025", m.statusMsg)
}

func TestPriceBook_BadPriceReported(t *testing.T) {
	m, _ := newBook(t)
	*m.fb = formBindings{name: "x", unitPrice: "cheap"}
	m, _ = m.Update(m.saveItem()())
	assert.Contains(t, m.statusMsg, "Error")
	assert.Error(t, validatePrice("cheap"))
	assert.NoError(t, validatePrice(" $49.95 "))
}

func TestPriceBook_EscCloses(t *testing.T) {
	m, _ := newBook(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
