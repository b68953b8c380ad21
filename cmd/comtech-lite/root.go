package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/credential"
	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/store"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var (
	configPath string
	dbOverride string
	logLevel   string
	jsonOutput bool
)

// cfg is the configuration loaded before every command runs.
var cfg *model.AppConfig

var rootCmd = &cobra.Command{
	Use:           "comtech-lite",
	Short:         "Comtech Lite - job pipeline and quoting for telco installs",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(),
		"Config file path")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "",
		"State database path (overrides storage.path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides log.level)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(priceBookCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(statusCmd)
}

// setup loads .env, the config file and the CLI logger.
func setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	c, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if dbOverride != "" {
		c.Storage.Path = dbOverride
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore opens the configured slot and loads the store from it.
// The returned close func releases the database.
func openStore(ctx context.Context) (*store.Store, *store.SQLiteSlot, func(), error) {
	if dir := filepath.Dir(cfg.Storage.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("creating data directory %s: %w", dir, err)
		}
	}
	slot, err := store.NewSQLiteSlot(cfg.Storage.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := slot.Close(); err != nil {
			slog.Error("closing store", "error", err)
		}
	}

	s, err := store.New(ctx, slot, store.WithLogger(slog.Default()))
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return s, slot, closeFn, nil
}

// openVault opens the system keyring. Failures are logged and yield nil,
// so env vars still work on machines without a keyring.
func openVault() *credential.Vault {
	v, err := vault()
	if err != nil {
		slog.Debug("keyring unavailable", "error", err)
		return nil
	}
	return v
}

func money() pricing.Formatter {
	return pricing.NewFormatter(cfg.Display.Locale)
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
