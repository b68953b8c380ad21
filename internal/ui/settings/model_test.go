package settings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/credential"
	"github.com/nhle/comtech-lite/internal/keys"
	"github.com/nhle/comtech-lite/internal/model"
)

type harness struct {
	m     Model
	vault *credential.Vault
	saved []model.AppConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{vault: credential.NewVault(keyring.NewArrayKeyring(nil))}
	cfg := model.AppConfig{
		Address: model.AddressConfig{BaseURL: "https://maps.example.com/place", Country: "au"},
		Mail:    model.MailConfig{Port: "993", TLS: true, Folder: "INBOX"},
	}
	h.m = New(Options{
		Config:  cfg,
		Secrets: h.vault,
		Save: func(c model.AppConfig) error {
			h.saved = append(h.saved, c)
			return nil
		},
	}, keys.DefaultKeyMap(), 100, 30)
	return h
}

func TestSavePlaces_StoresSecretAndConfig(t *testing.T) {
	h := newHarness(t)
	h.m.startForm(Places)
	assert.True(t, h.m.Editing())
	assert.Equal(t, "au", h.m.fb.placesCountry)
	assert.Empty(t, h.m.fb.placesKey)

	h.m.fb.placesKey = " key-1 "
	h.m.fb.placesCountry = "NZ"

	m, cmd := h.m.Update(h.m.save(Places)())
	require.NotNil(t, cmd)
	assert.False(t, m.Editing())
	assert.Equal(t, "nz", m.Config().Address.Country)

	require.Len(t, h.saved, 1)
	assert.Equal(t, "nz", h.saved[0].Address.Country)

	got, err := h.vault.Get(credential.PlacesAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "key-1", got)

	out, ok := cmd().(SavedMsg)
	require.True(t, ok)
	assert.NotNil(t, out.Places)
	assert.Equal(t, "nz", out.Config.Address.Country)
	assert.Contains(t, m.View(), "Places settings saved")
}

func TestSave_BlankSecretKeepsStored(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.vault.Set(credential.IMAPPassword, "old-pw"))

	h.m.startForm(Mailbox)
	h.m.fb.mailHost = "imap.example.com"
	h.m.fb.mailUser = "ops@example.com"
	h.m.fb.mailFolder = " "

	m, _ := h.m.Update(h.m.save(Mailbox)())

	got, err := h.vault.Get(credential.IMAPPassword)
	require.NoError(t, err)
	assert.Equal(t, "old-pw", got)

	mail := m.Config().Mail
	assert.Equal(t, "imap.example.com", mail.Host)
	assert.Equal(t, "993", mail.Port)
	assert.Equal(t, "INBOX", mail.Folder)
	assert.True(t, mail.TLS)
	assert.Contains(t, m.View(), "ops@example.com@imap.example.com:993/INBOX")
	assert.Contains(t, m.View(), "secret stored")
}

func TestSave_NoKeyring(t *testing.T) {
	m := New(Options{Config: model.AppConfig{}}, keys.DefaultKeyMap(), 100, 30)
	m.startForm(Places)
	m.fb.placesKey = "k"
	m.fb.placesURL = "https://example.com"

	m, cmd := m.Update(m.save(Places)())
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "no keyring available")
	assert.Contains(t, m.View(), "no keyring")
}

func TestSave_PersistError(t *testing.T) {
	h := newHarness(t)
	h.m.opts.Save = func(model.AppConfig) error { return errors.New("disk full") }
	h.m.startForm(Places)

	m, cmd := h.m.Update(h.m.save(Places)())
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "disk full")
	assert.Equal(t, "au", m.Config().Address.Country)
}

func TestCheck_UsesStoredSecret(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.vault.Set(credential.PlacesAPIKey, "key-2"))

	var gotSecret string
	var gotIntegration Integration = -1
	h.m.opts.Check = func(_ context.Context, i Integration, _ model.AppConfig, secret string) error {
		gotIntegration, gotSecret = i, secret
		return errors.New("REQUEST_DENIED")
	}

	batch := h.m.startCheck(Places)
	require.NotNil(t, batch)
	assert.Contains(t, h.m.View(), "Testing Places")

	var result tea.Msg
	if msgs, ok := batch().(tea.BatchMsg); ok {
		for _, c := range msgs {
			if msg, ok := c().(checkedMsg); ok {
				result = msg
			}
		}
	}
	require.NotNil(t, result)
	assert.Equal(t, Places, gotIntegration)
	assert.Equal(t, "key-2", gotSecret)

	m, _ := h.m.Update(result)
	assert.Contains(t, m.View(), "Places check failed")
	assert.Contains(t, m.View(), "REQUEST_DENIED")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())
}

func TestCheckedMsg_IgnoredAfterCancel(t *testing.T) {
	h := newHarness(t)
	h.m.startCheck(Mailbox)

	m, _ := h.m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())

	m, _ = m.Update(checkedMsg{integration: Mailbox})
	assert.False(t, m.Editing())
}

func TestClearSecret(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.vault.Set(credential.PlacesAPIKey, "key-3"))

	m, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.NotNil(t, cmd)
	assert.Equal(t, modeConfirmClear, m.mode)

	m, _ = m.Update(m.clearSecret(Places)())
	assert.False(t, m.Editing())
	assert.Contains(t, m.View(), "Places secret removed")

	_, err := h.vault.Get(credential.PlacesAPIKey)
	assert.ErrorIs(t, err, credential.ErrNotFound)

	// Clearing twice is not an error.
	m, _ = m.Update(m.clearSecret(Places)())
	assert.Contains(t, m.View(), "secret removed")
}

func TestListNavigationAndBack(t *testing.T) {
	h := newHarness(t)

	m, _ := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, m.selected)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 0, m.selected)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, m.selected)
	assert.Contains(t, m.View(), "not configured")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, DoneMsg{}, cmd())
}

func TestCheckConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "good" {
			_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS"}`))
	}))
	defer srv.Close()

	cfg := model.AppConfig{Address: model.AddressConfig{BaseURL: srv.URL}}
	ctx := context.Background()

	assert.NoError(t, CheckConnection(ctx, Places, cfg, "good"))
	assert.ErrorContains(t, CheckConnection(ctx, Places, cfg, "bad"), "bad key")
	assert.ErrorContains(t, CheckConnection(ctx, Places, cfg, ""), "no places secret")
	assert.ErrorContains(t, CheckConnection(ctx, Mailbox, cfg, "pw"), "IMAP host")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validatePort("993"))
	assert.Error(t, validatePort(""))
	assert.Error(t, validatePort("99a"))

	assert.NoError(t, validateURL("https://maps.googleapis.com/maps/api/place"))
	assert.Error(t, validateURL("maps.googleapis.com"))

	assert.NoError(t, validateCountry(""))
	assert.NoError(t, validateCountry("au"))
	assert.Error(t, validateCountry("aus"))

	assert.Error(t, validateRequired("Host")(" "))
}
