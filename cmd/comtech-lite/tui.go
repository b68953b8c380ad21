package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/address"
	"github.com/nhle/comtech-lite/internal/app"
	"github.com/nhle/comtech-lite/internal/credential"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/ui/addresspick"
	"github.com/nhle/comtech-lite/internal/ui/settings"
)

// Environment variables that take precedence over the keyring.
const (
	envPlacesAPIKey = "COMTECH_PLACES_API_KEY"
	envIMAPPassword = "COMTECH_IMAP_PASSWORD"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal board (default)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// The terminal belongs to the UI, so logs go to a file.
	logger, closeLog, err := fileLogger(cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = "."
	}

	var secrets settings.Secrets
	if v := openVault(); v != nil {
		secrets = v
	}

	m := app.New(app.Options{
		Store:          s,
		Money:          money(),
		Suggester:      addressSuggester(),
		ExportDir:      exportDir,
		ReloadInterval: time.Duration(cfg.Storage.ReloadSeconds) * time.Second,
		Settings: settings.Options{
			Config:  *cfg,
			Secrets: secrets,
			Save:    saveIntegrations,
		},
		Logger: logger,
	})

	slog.Info("tui starting", "db", cfg.Storage.Path, "version", Version)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	slog.Info("tui stopped")
	return nil
}

func fileLogger(path string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return logger, func() { _ = f.Close() }, nil
}

// addressSuggester returns a Places client when an API key is available.
func addressSuggester() addresspick.Suggester {
	c, err := placesClient()
	if err != nil {
		slog.Info("address lookup disabled", "reason", err)
		return nil
	}
	return c
}

func placesClient() (*address.Client, error) {
	key, err := credential.Lookup(openVault(), envPlacesAPIKey, credential.PlacesAPIKey)
	if err != nil {
		return nil, err
	}
	return address.NewClient(cfg.Address.BaseURL, key, cfg.Address.Country), nil
}

// saveIntegrations writes the address and mail sections into the config
// file, leaving the rest of the file and any flag overrides alone.
func saveIntegrations(c model.AppConfig) error {
	onDisk, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	onDisk.Address = c.Address
	onDisk.Mail = c.Mail
	if err := model.SaveConfig(configPath, onDisk); err != nil {
		return err
	}
	cfg.Address, cfg.Mail = c.Address, c.Mail
	return nil
}

// withTimeout bounds one-shot network commands.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}
