// Package credential keeps API keys and passwords in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "comtech-lite"

// Well-known keys.
const (
	PlacesAPIKey = "places-api-key"
	IMAPPassword = "imap-password"
)

// ErrNotFound is returned when no value is stored under a key.
var ErrNotFound = errors.New("credential not found")

// Vault reads and writes credentials in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// Open returns a Vault over the first available system backend.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/comtech-lite/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("comtech-lite-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Vault{ring: ring}, nil
}

// NewVault wraps an already opened keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Get retrieves a credential value by key.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (v *Vault) Set(key string, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (v *Vault) Delete(key string) error {
	err := v.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored credential keys.
func (v *Vault) Keys() ([]string, error) {
	keys, err := v.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	return keys, nil
}

// Lookup returns the environment variable envVar when it is set and
// otherwise the value stored under key. v may be nil when no keyring is
// available.
func Lookup(v *Vault, envVar, key string) (string, error) {
	if val := strings.TrimSpace(os.Getenv(envVar)); val != "" {
		return val, nil
	}
	if v == nil {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	return v.Get(key)
}
