package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/credential"
)

var (
	credentialStdin bool
	credentialShow  bool
)

// credentialAliases maps short names to keyring keys.
var credentialAliases = map[string]string{
	"places": credential.PlacesAPIKey,
	"imap":   credential.IMAPPassword,
}

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage secrets in the system keyring",
	Long: `Manage secrets in the system keyring.

Known keys are places-api-key (alias places) and imap-password (alias
imap). Environment variables COMTECH_PLACES_API_KEY and
COMTECH_IMAP_PASSWORD take precedence over stored values.`,
}

var credentialSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a secret",
	Long:  "Store a secret. Without a value it is read from stdin (--stdin) or prompted for.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCredentialSet,
}

var credentialGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Report whether a secret is stored",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialGet,
}

var credentialDeleteCmd = &cobra.Command{
	Use:     "delete <key>",
	Aliases: []string{"rm"},
	Short:   "Remove a stored secret",
	Args:    cobra.ExactArgs(1),
	RunE:    runCredentialDelete,
}

var credentialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys",
	Args:  cobra.NoArgs,
	RunE:  runCredentialList,
}

func init() {
	credentialSetCmd.Flags().BoolVar(&credentialStdin, "stdin", false, "Read the value from the first line of stdin")
	credentialGetCmd.Flags().BoolVar(&credentialShow, "show", false, "Print the secret value")

	credentialCmd.AddCommand(credentialSetCmd)
	credentialCmd.AddCommand(credentialGetCmd)
	credentialCmd.AddCommand(credentialDeleteCmd)
	credentialCmd.AddCommand(credentialListCmd)
}

func credentialKey(name string) string {
	name = strings.TrimSpace(name)
	if k, ok := credentialAliases[strings.ToLower(name)]; ok {
		return k
	}
	return name
}

// vault opens the keyring or fails; credential commands have no fallback.
var vault = func() (*credential.Vault, error) {
	v, err := credential.Open()
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return v, nil
}

func runCredentialSet(cmd *cobra.Command, args []string) error {
	key := credentialKey(args[0])

	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case credentialStdin:
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading value from stdin: %w", err)
		}
		value = line
	default:
		err := huh.NewInput().
			Title("Value for " + key).
			EchoMode(huh.EchoModePassword).
			Value(&value).
			Run()
		if err != nil {
			return err
		}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("value must not be empty")
	}

	v, err := vault()
	if err != nil {
		return err
	}
	if err := v.Set(key, value); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"key": key, "stored": true})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", key)
	return nil
}

func runCredentialGet(cmd *cobra.Command, args []string) error {
	key := credentialKey(args[0])

	v, err := vault()
	if err != nil {
		return err
	}
	value, err := v.Get(key)
	if errors.Is(err, credential.ErrNotFound) {
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"key": key, "stored": false})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not set\n", key)
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		out := map[string]any{"key": key, "stored": true}
		if credentialShow {
			out["value"] = value
		}
		return printJSON(cmd.OutOrStdout(), out)
	}
	if credentialShow {
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is set (%d characters)\n", key, len(value))
	return nil
}

func runCredentialDelete(cmd *cobra.Command, args []string) error {
	key := credentialKey(args[0])

	v, err := vault()
	if err != nil {
		return err
	}
	if err := v.Delete(key); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"key": key, "deleted": true})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
	return nil
}

func runCredentialList(cmd *cobra.Command, args []string) error {
	v, err := vault()
	if err != nil {
		return err
	}
	keys, err := v.Keys()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"keys": keys, "total": len(keys)})
	}
	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No credentials stored.")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}
