package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/despensa/planner-service/internal/consumption"
)

var (
	trackDate     string
	trackMarket   string
	trackCategory string
	trackQuantity float64
)

// trackCmd groups the consumption tracking subcommands
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Maintain the household consumption model",
}

var trackPurchaseCmd = &cobra.Command{
	Use:   "purchase <product>...",
	Short: "Record purchased products into the model",
	Example: `  planner track purchase leite iogurtes
  planner track purchase "arroz agulha" --quantity 2 --date 2026-08-30`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrackPurchase,
}

var trackCheckStockCmd = &cobra.Command{
	Use:   "check-stock",
	Short: "List products predicted to run out soon",
	RunE:  runTrackCheckStock,
}

var trackFeedbackCmd = &cobra.Command{
	Use:   "feedback <product> <still_have|already_finished|inactive>",
	Short: "Correct a product's consumption estimate",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrackFeedback,
}

var trackPredictCmd = &cobra.Command{
	Use:   "predict <product>",
	Short: "Show the tracked model entry for a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrackPredict,
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.AddCommand(trackPurchaseCmd, trackCheckStockCmd, trackFeedbackCmd, trackPredictCmd)

	trackPurchaseCmd.Flags().StringVar(&trackDate, "date", "", "Purchase date (YYYY-MM-DD, default today)")
	trackPurchaseCmd.Flags().StringVar(&trackMarket, "market", "", "Market where the purchase happened")
	trackPurchaseCmd.Flags().StringVar(&trackCategory, "category", "", "Category for all listed products")
	trackPurchaseCmd.Flags().Float64Var(&trackQuantity, "quantity", 1, "Quantity per listed product")
}

func withTracker(fn func(t *consumption.Tracker) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	return fn(consumption.NewTracker(store))
}

func runTrackPurchase(cmd *cobra.Command, args []string) error {
	purchase := consumption.Purchase{Market: trackMarket}
	if trackDate != "" {
		date, err := time.Parse("2006-01-02", trackDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", trackDate)
		}
		purchase.Date = date
	}
	for _, name := range args {
		purchase.Items = append(purchase.Items, consumption.PurchasedItem{
			Name:     name,
			Category: trackCategory,
			Quantity: trackQuantity,
		})
	}

	return withTracker(func(t *consumption.Tracker) error {
		summary, err := t.RecordPurchase(cmd.Context(), purchase)
		if err != nil {
			return fmt.Errorf("failed to record purchase: %w", err)
		}
		fmt.Printf("updated %d product(s), model tracks %d\n", summary.Updated, summary.ModelSize)
		return nil
	})
}

func runTrackCheckStock(cmd *cobra.Command, args []string) error {
	return withTracker(func(t *consumption.Tracker) error {
		report, err := t.CheckStock(cmd.Context())
		if err != nil {
			return fmt.Errorf("stock check failed: %w", err)
		}

		if len(report.Alerts) == 0 {
			fmt.Printf("checked %d product(s), nothing running out\n", report.Checked)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tCATEGORY\tDAYS LEFT\tCONFIDENCE")
		for _, a := range report.Alerts {
			fmt.Fprintf(w, "%s\t%s\t%.1f\t%.2f\n", a.Name, a.Category, a.DaysLeft, a.Confidence)
		}
		return w.Flush()
	})
}

func runTrackFeedback(cmd *cobra.Command, args []string) error {
	product, feedback := args[0], consumption.FeedbackType(args[1])
	switch feedback {
	case consumption.FeedbackStillHave, consumption.FeedbackAlreadyFinished, consumption.FeedbackInactive:
	default:
		return fmt.Errorf("invalid feedback %q: use still_have, already_finished or inactive", args[1])
	}

	return withTracker(func(t *consumption.Tracker) error {
		msg, err := t.ApplyFeedback(cmd.Context(), product, feedback)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	})
}

func runTrackPredict(cmd *cobra.Command, args []string) error {
	return withTracker(func(t *consumption.Tracker) error {
		id, product, err := t.Predict(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return outputJSON(map[string]any{
			"product_id": id,
			"product":    product,
		})
	})
}
