package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where state is kept and a pipeline summary",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, slot, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	info, saved, err := slot.Info(ctx)
	if err != nil {
		return err
	}

	jobs := s.Jobs()
	total := pricing.Summarize(model.Job{})
	for _, j := range jobs {
		t := pricing.Summarize(j)
		total.TotalEx = total.TotalEx.Add(t.TotalEx)
		total.TotalInc = total.TotalInc.Add(t.TotalInc)
	}

	stages := make(map[string]int, len(model.Stages))
	for _, col := range store.Board(jobs) {
		stages[string(col.Stage)] = len(col.Jobs)
	}

	if jsonOutput {
		out := map[string]any{
			"version":     Version,
			"config":      configPath,
			"db":          cfg.Storage.Path,
			"saved":       saved,
			"jobs":        len(jobs),
			"price_items": len(s.PriceBook()),
			"stages":      stages,
			"total_ex":    total.TotalEx.StringFixed(2),
			"total_inc":   total.TotalInc.StringFixed(2),
		}
		if saved {
			out["size_bytes"] = info.Size
			out["updated_at"] = info.UpdatedAt
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	fm := money()
	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintf(w, "Version:\t%s\n", Version)
	fmt.Fprintf(w, "Config:\t%s\n", configPath)
	fmt.Fprintf(w, "Database:\t%s\n", cfg.Storage.Path)
	if saved {
		fmt.Fprintf(w, "Last saved:\t%s\n", info.UpdatedAt.Local().Format(time.DateTime))
		fmt.Fprintf(w, "State size:\t%d bytes\n", info.Size)
	} else {
		fmt.Fprintf(w, "Last saved:\tnever\n")
	}
	fmt.Fprintf(w, "Jobs:\t%d\n", len(jobs))
	fmt.Fprintf(w, "Price items:\t%d\n", len(s.PriceBook()))
	for _, st := range model.Stages {
		fmt.Fprintf(w, "  %s:\t%d\n", st, stages[string(st)])
	}
	fmt.Fprintf(w, "Pipeline ex:\t%s\n", fm.Format(total.TotalEx))
	fmt.Fprintf(w, "Pipeline inc:\t%s\n", fm.Format(total.TotalInc))
	return w.Flush()
}
