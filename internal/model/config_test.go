package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "en-AU", cfg.Display.Locale)
	assert.Equal(t, "au", cfg.Address.Country)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, 5, cfg.Storage.ReloadSeconds)
	assert.Equal(t, "993", cfg.Mail.Port)
	assert.True(t, cfg.Mail.TLS)
	assert.Equal(t, "INBOX", cfg.Mail.Folder)
}

func TestLoadConfig_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "storage:\n  path: /tmp/jobs.db\nlog:\n  level: debug\nmail:\n  host: imap.example.com\n  tls: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/jobs.db", cfg.Storage.Path)
	assert.Equal(t, 5, cfg.Storage.ReloadSeconds, "sibling keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "en-AU", cfg.Display.Locale)
	assert.Equal(t, "imap.example.com", cfg.Mail.Host)
	assert.False(t, cfg.Mail.TLS)
	assert.Equal(t, "993", cfg.Mail.Port)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Storage.ReloadSeconds = 0
	cfg.Mail.Host = "imap.example.com"

	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Storage.ReloadSeconds)
	assert.Equal(t, "imap.example.com", got.Mail.Host)
}
