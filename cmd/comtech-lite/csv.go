package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/csvcodec"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write every job to a CSV file",
	Long:  "Write every job to a CSV file. The default name is comtech-lite-YYYY-MM-DD.csv in the current directory; use - for stdout.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Replace every job with the contents of a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	path := csvcodec.FileName(time.Now())
	if len(args) == 1 {
		path = args[0]
	}

	if path == "-" {
		return s.ExportCSV(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := s.ExportCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	n := len(s.Jobs())
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"path": path, "jobs": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d jobs to %s\n", n, path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := s.ImportCSV(ctx, f)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"path": path, "jobs": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d jobs from %s\n", n, path)
	return nil
}
