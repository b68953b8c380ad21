package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/store"
)

var (
	itemName     string
	itemPrice    string
	itemCategory string
	itemNote     string

	seedYes bool
)

var priceBookCmd = &cobra.Command{
	Use:     "prices",
	Aliases: []string{"pricebook"},
	Short:   "Manage the price book",
}

var priceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List price book items grouped by category",
	Args:  cobra.NoArgs,
	RunE:  runPriceList,
}

var priceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a price book item",
	Args:  cobra.NoArgs,
	RunE:  runPriceAdd,
}

var priceUpdateCmd = &cobra.Command{
	Use:   "update <item-id>",
	Short: "Change fields of a price book item",
	Args:  cobra.ExactArgs(1),
	RunE:  runPriceUpdate,
}

var priceRemoveCmd = &cobra.Command{
	Use:     "rm <item-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a price book item",
	Args:    cobra.ExactArgs(1),
	RunE:    runPriceRemove,
}

var priceSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the price book with the KNG July 2025 catalog",
	Args:  cobra.NoArgs,
	RunE:  runPriceSeed,
}

func init() {
	for _, c := range []*cobra.Command{priceAddCmd, priceUpdateCmd} {
		c.Flags().StringVar(&itemName, "name", "", "Item name")
		c.Flags().StringVar(&itemPrice, "price", "", "Unit price ex GST")
		c.Flags().StringVar(&itemCategory, "category", "", "Category")
		c.Flags().StringVar(&itemNote, "note", "", "Unit note, e.g. (Per Channel)")
	}
	_ = priceAddCmd.MarkFlagRequired("name")
	_ = priceAddCmd.MarkFlagRequired("price")

	priceSeedCmd.Flags().BoolVar(&seedYes, "yes", false, "Skip confirmation prompt")

	priceBookCmd.AddCommand(priceListCmd)
	priceBookCmd.AddCommand(priceAddCmd)
	priceBookCmd.AddCommand(priceUpdateCmd)
	priceBookCmd.AddCommand(priceRemoveCmd)
	priceBookCmd.AddCommand(priceSeedCmd)
}

func runPriceList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	items := s.PriceBook()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"items": items,
			"total": len(items),
		})
	}

	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Price book is empty.")
		return nil
	}

	fm := money()
	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tNAME\tUNIT EX\tNOTE")
	for _, g := range store.GroupByCategory(items) {
		fmt.Fprintf(w, "%s\t\t\t\n", g.Name)
		for _, it := range g.Items {
			fmt.Fprintf(w, "%s\t  %s\t%s\t%s\n", shortID(it.ID), it.Name, fm.Format(it.UnitPrice), dash(it.UnitNote))
		}
	}
	return w.Flush()
}

func runPriceAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name := strings.TrimSpace(itemName)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	price, err := parsePrice(itemPrice)
	if err != nil {
		return err
	}

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	it, err := s.AddPriceItem(ctx, name, price, strings.TrimSpace(itemCategory), strings.TrimSpace(itemNote))
	if err != nil {
		return fmt.Errorf("add price item: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), it)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s at %s ex GST\n", it.Name, money().Format(it.UnitPrice))
	return nil
}

func runPriceUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var patch model.PriceItemPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		name := strings.TrimSpace(itemName)
		if name == "" {
			return fmt.Errorf("name must not be empty")
		}
		patch.Name = &name
	}
	if flags.Changed("price") {
		price, err := parsePrice(itemPrice)
		if err != nil {
			return err
		}
		patch.UnitPrice = &price
	}
	if flags.Changed("category") {
		patch.Category = model.Ptr(strings.TrimSpace(itemCategory))
	}
	if flags.Changed("note") {
		patch.UnitNote = model.Ptr(strings.TrimSpace(itemNote))
	}
	if patch == (model.PriceItemPatch{}) {
		return fmt.Errorf("nothing to update: set --name, --price, --category or --note")
	}

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	it, err := resolvePriceItem(s.PriceBook(), args[0])
	if err != nil {
		return err
	}
	if err := s.UpdatePriceItem(ctx, it.ID, patch); err != nil {
		return fmt.Errorf("update price item: %w", err)
	}

	updated := patch.Apply(it)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), updated)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", updated.Name)
	return nil
}

func runPriceRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	it, err := resolvePriceItem(s.PriceBook(), args[0])
	if err != nil {
		return err
	}
	if err := s.RemovePriceItem(ctx, it.ID); err != nil {
		return fmt.Errorf("remove price item: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": true, "id": it.ID})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", it.Name)
	return nil
}

func runPriceSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !seedYes {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, "WARNING: This replaces the whole price book with the KNG July 2025 catalog.")
		fmt.Fprint(errOut, "Type 'seed' to confirm: ")

		input, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if strings.TrimSpace(input) != "seed" {
			fmt.Fprintln(errOut, "Aborted.")
			return nil
		}
	}

	s, _, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := s.SeedPriceBookKNGJuly2025(ctx); err != nil {
		return fmt.Errorf("seed price book: %w", err)
	}

	n := len(s.PriceBook())
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"items": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d price book items\n", n)
	return nil
}

// resolvePriceItem finds an item by id, unique id prefix or exact name.
func resolvePriceItem(items []model.PriceItem, ref string) (model.PriceItem, error) {
	ref = strings.TrimSpace(ref)
	if it, err := findPriceItem(items, ref); err == nil {
		return it, nil
	}

	var found []model.PriceItem
	for _, it := range items {
		if ref != "" && strings.HasPrefix(it.ID, ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		return model.PriceItem{}, fmt.Errorf("price item %q not found", ref)
	case 1:
		return found[0], nil
	default:
		return model.PriceItem{}, fmt.Errorf("price item id %q is ambiguous (%d matches)", ref, len(found))
	}
}

func parsePrice(s string) (decimal.Decimal, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "$")
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", s)
	}
	return d, nil
}
