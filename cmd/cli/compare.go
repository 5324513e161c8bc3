package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/despensa/planner-service/internal/export"
	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/planner"
)

var (
	compareItems     []string
	compareInventory bool
	compareOutput    string
	compareXLSXPath  string
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare prices and split the shopping list across markets",
	Long: `Compare the shopping list against cached supermarket prices and compute the
cheapest split across markets, including coupons, balances and delivery fees.

Items are given inline with --item (repeatable, "name" or "name:category"),
or taken from the stored inventory with --inventory.`,
	Example: `  planner compare --item leite --item "arroz agulha:mercearia"
  planner compare --inventory
  planner compare --inventory --xlsx plan.xlsx`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringArrayVar(&compareItems, "item", nil, `Item to price, "name" or "name:category" (repeatable)`)
	compareCmd.Flags().BoolVar(&compareInventory, "inventory", false, "Compare the stored inventory shopping list")
	compareCmd.Flags().StringVar(&compareOutput, "output", "table", "Output format: table or json")
	compareCmd.Flags().StringVar(&compareXLSXPath, "xlsx", "", "Also write the comparison to an xlsx file")
}

func runCompare(cmd *cobra.Command, args []string) error {
	if len(compareItems) == 0 && !compareInventory {
		return fmt.Errorf("nothing to compare: pass --item or --inventory")
	}

	ctx := cmd.Context()
	store, err := openStore()
	if err != nil {
		return err
	}
	cache, closeCache, err := openCache(ctx, store)
	if err != nil {
		return err
	}
	defer closeCache()

	p := planner.New(cache, store, optimizer.DefaultConfig())

	var result planner.CompareResult
	if compareInventory && len(compareItems) == 0 {
		result, err = p.CompareInventory(ctx)
	} else {
		result, err = p.Compare(ctx, parseItems(compareItems))
	}
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if compareXLSXPath != "" {
		data, err := export.CompareXLSX(result)
		if err != nil {
			return fmt.Errorf("failed to build spreadsheet: %w", err)
		}
		if err := os.WriteFile(compareXLSXPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", compareXLSXPath, err)
		}
		logger.Info().Str("path", compareXLSXPath).Msg("Spreadsheet written")
	}

	switch strings.ToLower(compareOutput) {
	case "json":
		return outputJSON(result)
	case "table":
		outputCompareTable(result)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", compareOutput)
	}

	return nil
}

func parseItems(raw []string) []optimizer.ShoppingItem {
	items := make([]optimizer.ShoppingItem, 0, len(raw))
	for _, r := range raw {
		name, category, _ := strings.Cut(r, ":")
		items = append(items, optimizer.ShoppingItem{
			Name:     strings.TrimSpace(name),
			Category: strings.TrimSpace(category),
			Quantity: optimizer.Quantity{Value: 1},
		})
	}
	return items
}

func outputCompareTable(result planner.CompareResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	for market, mr := range result.Markets {
		fmt.Fprintf(w, "%s\t\t\n", strings.ToUpper(market))
		for _, item := range mr.Items {
			flag := ""
			if item.PreferredStoreHonored {
				flag = " *"
			}
			fmt.Fprintf(w, "  %s%s\t%.2f EUR\t%s\n", item.Name, flag, item.Price, item.Promo)
		}
		fmt.Fprintf(w, "  subtotal\t%.2f EUR\t\n", mr.Subtotal)
		if mr.CouponDiscount > 0 {
			fmt.Fprintf(w, "  coupons\t-%.2f EUR\t\n", mr.CouponDiscount)
		}
		if mr.BalanceUsed > 0 {
			fmt.Fprintf(w, "  balance\t-%.2f EUR\t\n", mr.BalanceUsed)
		}
		fmt.Fprintf(w, "  delivery\t%.2f EUR\t\n", mr.Delivery)
		fmt.Fprintf(w, "  total\t%.2f EUR\t\n\n", mr.Total)
	}

	fmt.Fprintf(w, "TOTAL\t%.2f EUR\t\n", result.Total)
	fmt.Fprintf(w, "savings vs best single market\t%.2f EUR\t\n", result.SavingsVsBestSingle)
	w.Flush()

	for _, u := range result.Unavailable {
		fmt.Printf("unavailable: %s (%s)\n", u.Name, u.Reason)
	}
	if result.Warning != "" {
		fmt.Printf("warning: %s\n", result.Warning)
	}
	if result.RecommendationNote != nil {
		fmt.Printf("note: %s\n", *result.RecommendationNote)
	}
	if result.BudgetCheck.OverBudget {
		fmt.Printf("over budget by %.2f EUR (weekly limit %.2f EUR)\n",
			result.BudgetCheck.OverBy, result.BudgetCheck.WeeklyLimit)
	}
}
