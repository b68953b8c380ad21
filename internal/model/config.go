package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// StorageConfig locates the durable state.
type StorageConfig struct {
	// Path is the SQLite file holding the state slot.
	Path string `mapstructure:"path" yaml:"path"`

	// ReloadSeconds is how often the TUI checks the slot for writes made
	// by other processes. Zero disables the check.
	ReloadSeconds int `mapstructure:"reload_seconds" yaml:"reload_seconds"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// Locale is the BCP 47 tag used for currency formatting.
	Locale string `mapstructure:"locale" yaml:"locale"`
}

// AddressConfig holds settings for the address lookup service.
type AddressConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Country string `mapstructure:"country" yaml:"country"`
}

// MailConfig points at the IMAP mailbox attachments are pulled from.
// The password lives in the keyring, never here.
type MailConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Folder   string `mapstructure:"folder" yaml:"folder"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`

	// File receives logs while the TUI owns the terminal.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Address AddressConfig `mapstructure:"address" yaml:"address"`
	Mail    MailConfig    `mapstructure:"mail" yaml:"mail"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

const (
	defaultPlacesURL = "https://maps.googleapis.com/maps/api/place"
	defaultLocale    = "en-AU"
	defaultCountry   = "au"
)

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/comtech-lite/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "comtech-lite", "config.yaml")
}

// DefaultDataDir returns ~/.local/share/comtech-lite.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "comtech-lite")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dataDir := DefaultDataDir()
	return &AppConfig{
		Storage: StorageConfig{
			Path:          filepath.Join(dataDir, "comtech-lite.db"),
			ReloadSeconds: 5,
		},
		Display: DisplayConfig{
			Theme:  "default",
			Locale: defaultLocale,
		},
		Address: AddressConfig{
			BaseURL: defaultPlacesURL,
			Country: defaultCountry,
		},
		Mail: MailConfig{
			Port:   "993",
			TLS:    true,
			Folder: "INBOX",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "comtech-lite.log"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	defaults := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.reload_seconds", defaults.Storage.ReloadSeconds)
	v.SetDefault("display.theme", defaults.Display.Theme)
	v.SetDefault("display.locale", defaults.Display.Locale)
	v.SetDefault("address.base_url", defaults.Address.BaseURL)
	v.SetDefault("address.country", defaults.Address.Country)
	v.SetDefault("mail.port", defaults.Mail.Port)
	v.SetDefault("mail.tls", defaults.Mail.TLS)
	v.SetDefault("mail.folder", defaults.Mail.Folder)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("display", cfg.Display)
	v.Set("address", cfg.Address)
	v.Set("mail", cfg.Mail)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
