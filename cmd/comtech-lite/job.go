package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/pricing"
	"github.com/nhle/comtech-lite/internal/store"
	"github.com/nhle/comtech-lite/internal/ui/jobform"
)

var (
	jobCustomer  string
	jobSite      string
	jobReference string
	jobAddress   string
	jobNumbers   []string
	jobPrimary   string
	jobStage     string
	jobNotes     string
	jobServices  []string
	jobItems     []string

	listStage string
	listQuery string

	clearYes bool
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage jobs",
}

var jobAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job",
	Long: `Add a job to the pipeline.

Service lines use the form "name @ qty @ unit price" and are ex GST.
--item adds one of a price book entry, matched by id or exact name.`,
	Args: cobra.NoArgs,
	RunE: runJobAdd,
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	Args:  cobra.NoArgs,
	RunE:  runJobList,
}

var jobShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one job with its totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobShow,
}

var jobMoveCmd = &cobra.Command{
	Use:   "move <job-id> <stage>",
	Short: "Move a job to another stage",
	Args:  cobra.ExactArgs(2),
	RunE:  runJobMove,
}

var jobRemoveCmd = &cobra.Command{
	Use:     "rm <job-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a job",
	Args:    cobra.ExactArgs(1),
	RunE:    runJobRemove,
}

var jobClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every job",
	Long:  "Delete every job. The price book is kept. Requires --yes or typing 'clear' to confirm.",
	Args:  cobra.NoArgs,
	RunE:  runJobClear,
}

func init() {
	f := jobAddCmd.Flags()
	f.StringVar(&jobCustomer, "customer", "", "Customer name (required)")
	f.StringVar(&jobSite, "site", "", "Site name")
	f.StringVar(&jobReference, "reference", "", "Reference or order number")
	f.StringVar(&jobAddress, "address", "", "Site address")
	f.StringSliceVar(&jobNumbers, "number", nil, "Phone number (repeatable)")
	f.StringVar(&jobPrimary, "primary", "", "Primary number (defaults to the first number)")
	f.StringVar(&jobStage, "stage", string(model.StageInTray), "Pipeline stage")
	f.StringVar(&jobNotes, "notes", "", "Free-text notes")
	f.StringArrayVar(&jobServices, "service", nil, `Service line "name @ qty @ price" (repeatable)`)
	f.StringArrayVar(&jobItems, "item", nil, "Price book item id or name (repeatable)")

	jobListCmd.Flags().StringVar(&listStage, "stage", "", "Only jobs in this stage")
	jobListCmd.Flags().StringVar(&listQuery, "query", "", "Case-insensitive search")

	jobClearCmd.Flags().BoolVar(&clearYes, "yes", false, "Skip confirmation prompt")

	jobCmd.AddCommand(jobAddCmd)
	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobShowCmd)
	jobCmd.AddCommand(jobMoveCmd)
	jobCmd.AddCommand(jobRemoveCmd)
	jobCmd.AddCommand(jobClearCmd)
}

func runJobAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stage, ok := model.ParseStage(jobStage)
	if !ok {
		return fmt.Errorf("unknown stage %q", jobStage)
	}

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	lines, err := jobform.ParseServiceLines(strings.Join(jobServices, "\n"), nil)
	if err != nil {
		return err
	}
	for _, ref := range jobItems {
		item, err := findPriceItem(s.PriceBook(), ref)
		if err != nil {
			return err
		}
		lines = append(lines, item.ToServiceLine(decimal.NewFromInt(1)))
	}

	numbers := model.CleanNumbers(jobNumbers)
	primary := strings.TrimSpace(jobPrimary)
	if primary == "" && len(numbers) > 0 {
		primary = numbers[0]
	}

	j := model.Job{
		Customer:      strings.TrimSpace(jobCustomer),
		Site:          strings.TrimSpace(jobSite),
		Reference:     strings.TrimSpace(jobReference),
		Address:       strings.TrimSpace(jobAddress),
		NumbersList:   numbers,
		PrimaryNumber: primary,
		Status:        stage,
		Services:      model.CleanServiceLines(lines),
		Notes:         jobNotes,
	}
	if err := model.ValidateNewJob(j); err != nil {
		return err
	}

	added, err := s.AddJob(ctx, j)
	if err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), jobJSON(added))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added job %s (%s)\n", added.ID, added.Customer)
	return nil
}

func runJobList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	filter := store.JobFilter{Query: listQuery}
	if listStage != "" {
		st, ok := model.ParseStage(listStage)
		if !ok {
			return fmt.Errorf("unknown stage %q", listStage)
		}
		filter.Stage = st
	}

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	jobs := store.FilterJobs(s.Jobs(), filter)

	if jsonOutput {
		items := make([]map[string]any, len(jobs))
		for i, j := range jobs {
			items[i] = jobJSON(j)
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"jobs":  items,
			"total": len(items),
		})
	}

	if len(jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
		return nil
	}

	fm := money()
	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tCUSTOMER\tSTAGE\tNUMBER\tTOTAL INC\tUPDATED")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(j.ID),
			j.Customer,
			j.Status,
			dash(j.PrimaryNumber),
			fm.Format(pricing.TotalInc(j)),
			dash(j.UpdatedAt),
		)
	}
	return w.Flush()
}

func runJobShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	j, err := resolveJob(s, args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), jobJSON(j))
	}

	out := cmd.OutOrStdout()
	fm := money()
	w := newTabWriter(out)
	fmt.Fprintf(w, "ID:\t%s\n", j.ID)
	fmt.Fprintf(w, "Customer:\t%s\n", j.Customer)
	fmt.Fprintf(w, "Site:\t%s\n", dash(j.Site))
	fmt.Fprintf(w, "Reference:\t%s\n", dash(j.Reference))
	fmt.Fprintf(w, "Address:\t%s\n", dash(j.Address))
	fmt.Fprintf(w, "Stage:\t%s\n", j.Status)
	fmt.Fprintf(w, "Numbers:\t%s\n", dash(strings.Join(j.NumbersList, ", ")))
	fmt.Fprintf(w, "Primary:\t%s\n", dash(j.PrimaryNumber))
	fmt.Fprintf(w, "Created:\t%s\n", dash(j.CreatedAt))
	fmt.Fprintf(w, "Updated:\t%s\n", dash(j.UpdatedAt))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(j.Services) > 0 {
		fmt.Fprintln(out)
		w = newTabWriter(out)
		fmt.Fprintln(w, "SERVICE\tQTY\tUNIT EX\tLINE EX")
		for _, l := range j.Services {
			name := l.Name
			if l.UnitNote != "" {
				name += " " + l.UnitNote
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, l.Qty.String(),
				fm.Format(l.UnitPrice), fm.Format(pricing.LineTotal(l)))
		}
		for _, a := range j.Adjustments {
			fmt.Fprintf(w, "%s\t\t\t%s\n", a.Label, fm.Format(a.AmountEx))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	t := pricing.Summarize(j)
	fmt.Fprintln(out)
	w = newTabWriter(out)
	fmt.Fprintf(w, "Subtotal ex:\t%s\n", fm.Format(t.SubtotalEx))
	fmt.Fprintf(w, "Adjustments ex:\t%s\n", fm.Format(t.AdjustmentSumEx))
	fmt.Fprintf(w, "Total ex:\t%s\n", fm.Format(t.TotalEx))
	fmt.Fprintf(w, "GST:\t%s\n", fm.Format(t.GST))
	fmt.Fprintf(w, "Total inc:\t%s\n", fm.Format(t.TotalInc))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(j.Todos) > 0 {
		fmt.Fprintln(out)
		for _, td := range j.Todos {
			box := "[ ]"
			if td.Done {
				box = "[x]"
			}
			fmt.Fprintf(out, "%s %s  %s\n", box, td.Text, shortID(td.ID))
		}
	}
	if len(j.Attachments) > 0 {
		fmt.Fprintln(out)
		for _, a := range j.Attachments {
			fmt.Fprintf(out, "%s  %s  %s  %d bytes\n", shortID(a.ID), a.Name, a.Type, a.Size)
		}
	}
	if j.Notes != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, j.Notes)
	}
	return nil
}

func runJobMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stage, ok := model.ParseStage(args[1])
	if !ok {
		return fmt.Errorf("unknown stage %q", args[1])
	}

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	j, err := resolveJob(s, args[0])
	if err != nil {
		return err
	}
	if err := s.MoveJob(ctx, j.ID, stage); err != nil {
		return fmt.Errorf("move job: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":    j.ID,
			"from":  j.Status,
			"stage": stage,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", j.Customer, stage)
	return nil
}

func runJobRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	j, err := resolveJob(s, args[0])
	if err != nil {
		return err
	}
	if err := s.RemoveJob(ctx, j.ID); err != nil {
		return fmt.Errorf("remove job: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": true, "id": j.ID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", j.Customer)
	return nil
}

func runJobClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !clearYes {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, "WARNING: This will permanently delete every job.")
		fmt.Fprint(errOut, "Type 'clear' to confirm: ")

		input, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if strings.TrimSpace(input) != "clear" {
			fmt.Fprintln(errOut, "Aborted.")
			return nil
		}
	}

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	n := len(s.Jobs())
	if err := s.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d jobs\n", n)
	return nil
}

// resolveJob finds a job by full id or unique id prefix.
func resolveJob(s *store.Store, ref string) (model.Job, error) {
	ref = strings.TrimSpace(ref)
	if j, err := s.Job(ref); err == nil {
		return j, nil
	}
	if ref == "" {
		return model.Job{}, store.ErrJobNotFound
	}

	var found []model.Job
	for _, j := range s.Jobs() {
		if strings.HasPrefix(j.ID, ref) {
			found = append(found, j)
		}
	}
	switch len(found) {
	case 0:
		return model.Job{}, fmt.Errorf("%s: %w", ref, store.ErrJobNotFound)
	case 1:
		return found[0], nil
	default:
		return model.Job{}, fmt.Errorf("job id %q is ambiguous (%d matches)", ref, len(found))
	}
}

func findPriceItem(items []model.PriceItem, ref string) (model.PriceItem, error) {
	ref = strings.TrimSpace(ref)
	for _, it := range items {
		if it.ID == ref {
			return it, nil
		}
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, ref) {
			return it, nil
		}
	}
	return model.PriceItem{}, fmt.Errorf("price item %q not found", ref)
}

func jobJSON(j model.Job) map[string]any {
	t := pricing.Summarize(j)
	return map[string]any{
		"job": j,
		"totals": map[string]string{
			"subtotal_ex":   t.SubtotalEx.StringFixed(2),
			"adjustment_ex": t.AdjustmentSumEx.StringFixed(2),
			"total_ex":      t.TotalEx.StringFixed(2),
			"gst":           t.GST.StringFixed(2),
			"total_inc":     t.TotalInc.StringFixed(2),
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
