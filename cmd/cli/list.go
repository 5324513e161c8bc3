package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/despensa/planner-service/internal/export"
	"github.com/despensa/planner-service/internal/shoppinglist"
)

var (
	listNextBulkDate string
	listXLSXPath     string
)

// listCmd groups the shopping list subcommands
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Generate shopping lists from the inventory and consumption model",
}

var listWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Weekly list: manual items merged with consumption predictions",
	RunE:  runListWeekly,
}

var listBulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Bulk list: products due for a warehouse-style purchase",
	RunE:  runListBulk,
}

var listPhysicalCmd = &cobra.Command{
	Use:   "physical",
	Short: "Physical list: reminders grouped by physical store",
	RunE:  runListPhysical,
}

var listTriageCmd = &cobra.Command{
	Use:     "triage",
	Short:   "Split the weekly list into order-now, wait-for-bulk and physical",
	Example: `  planner list triage --next-bulk-date 2026-09-15`,
	RunE:    runListTriage,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listWeeklyCmd, listBulkCmd, listPhysicalCmd, listTriageCmd)

	listTriageCmd.Flags().StringVar(&listNextBulkDate, "next-bulk-date", "", "Next planned bulk purchase date (YYYY-MM-DD)")
	listWeeklyCmd.Flags().StringVar(&listXLSXPath, "xlsx", "", "Also write the list to an xlsx file")
	listBulkCmd.Flags().StringVar(&listXLSXPath, "xlsx", "", "Also write the list to an xlsx file")
}

func writeListXLSX(title string, items []shoppinglist.Item) error {
	if listXLSXPath == "" {
		return nil
	}
	data, err := export.ListXLSX(title, items)
	if err != nil {
		return fmt.Errorf("failed to build spreadsheet: %w", err)
	}
	if err := os.WriteFile(listXLSXPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", listXLSXPath, err)
	}
	logger.Info().Str("path", listXLSXPath).Msg("Spreadsheet written")
	return nil
}

func withGenerator(fn func(g *shoppinglist.Generator) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	return fn(shoppinglist.NewGenerator(store))
}

func runListWeekly(cmd *cobra.Command, args []string) error {
	return withGenerator(func(g *shoppinglist.Generator) error {
		list, err := g.Weekly(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to generate weekly list: %w", err)
		}
		if err := writeListXLSX("Weekly", list.Items); err != nil {
			return err
		}
		return outputJSON(list)
	})
}

func runListBulk(cmd *cobra.Command, args []string) error {
	return withGenerator(func(g *shoppinglist.Generator) error {
		list, err := g.Bulk(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to generate bulk list: %w", err)
		}
		if err := writeListXLSX("Bulk", list.Items); err != nil {
			return err
		}
		return outputJSON(list)
	})
}

func runListPhysical(cmd *cobra.Command, args []string) error {
	return withGenerator(func(g *shoppinglist.Generator) error {
		list, err := g.Physical(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to generate physical list: %w", err)
		}
		return outputJSON(list)
	})
}

func runListTriage(cmd *cobra.Command, args []string) error {
	return withGenerator(func(g *shoppinglist.Generator) error {
		triage, err := g.GenerateTriage(cmd.Context(), listNextBulkDate)
		if err != nil {
			return fmt.Errorf("failed to generate triage: %w", err)
		}
		return outputJSON(triage)
	})
}
