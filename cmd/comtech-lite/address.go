package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/address"
	"github.com/nhle/comtech-lite/internal/model"
)

var addressSetJob string

var addressCmd = &cobra.Command{
	Use:   "address <query>",
	Short: "Look up address suggestions",
	Long: `Look up address suggestions from the Places API.

The API key comes from COMTECH_PLACES_API_KEY or the keyring entry
"places-api-key". With --job the first suggestion is stored as that
job's address.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddress,
}

func init() {
	addressCmd.Flags().StringVar(&addressSetJob, "job", "", "Store the first suggestion on this job")
}

func runAddress(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if len([]rune(strings.TrimSpace(query))) < address.MinInputLen {
		return fmt.Errorf("query must be at least %d characters", address.MinInputLen)
	}

	client, err := placesClient()
	if err != nil {
		return fmt.Errorf("address lookup unavailable: %w", err)
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	suggestions, err := client.Suggest(ctx, query)
	if err != nil {
		return err
	}

	if addressSetJob != "" {
		if len(suggestions) == 0 {
			return fmt.Errorf("no suggestions for %q", query)
		}
		if err := setJobAddress(cmd, addressSetJob, suggestions[0].Description); err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"query":       query,
			"suggestions": suggestions,
		})
	}

	if len(suggestions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No suggestions.")
		return nil
	}
	for _, d := range address.Descriptions(suggestions) {
		fmt.Fprintln(cmd.OutOrStdout(), d)
	}
	return nil
}

func setJobAddress(cmd *cobra.Command, ref, addr string) error {
	ctx := cmd.Context()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	j, err := resolveJob(s, ref)
	if err != nil {
		return err
	}
	if err := s.UpdateJob(ctx, j.ID, model.JobPatch{Address: &addr}); err != nil {
		return fmt.Errorf("set address: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Set address of %s to %s\n", j.Customer, addr)
	return nil
}
