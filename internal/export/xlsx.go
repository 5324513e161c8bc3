// Package export renders comparison results as spreadsheet workbooks for
// sharing with the household.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/planner"
)

const summarySheet = "Summary"

// CompareXLSX renders a comparison result as an xlsx workbook: a summary
// sheet, one sheet per market basket, and an alternatives sheet.
func CompareXLSX(result planner.CompareResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if err := writeSummary(f, result); err != nil {
		return nil, err
	}

	for _, market := range sortedMarkets(result) {
		if err := writeMarket(f, market, result.Markets[market]); err != nil {
			return nil, err
		}
	}

	if len(result.Alternatives) > 0 {
		if err := writeAlternatives(f, result.Alternatives); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedMarkets(result planner.CompareResult) []string {
	names := make([]string, 0, len(result.Markets))
	for m := range result.Markets {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, result planner.CompareResult) error {
	rows := [][]any{
		{"Generated at", result.GeneratedAt.Format("2006-01-02 15:04")},
		{"Items", result.ItemsCount},
		{"Total", result.Total},
		{"Savings vs best single", result.SavingsVsBestSingle},
		{"Weekly limit", result.BudgetCheck.WeeklyLimit},
		{"Over budget", result.BudgetCheck.OverBudget},
		{"Over by", result.BudgetCheck.OverBy},
	}
	if result.RecommendationNote != nil {
		rows = append(rows, []any{"Recommendation", *result.RecommendationNote})
	}
	if result.Warning != "" {
		rows = append(rows, []any{"Warning", result.Warning})
	}
	for _, u := range result.Unavailable {
		rows = append(rows, []any{"Unavailable", u.Name, u.Reason})
	}
	return writeRows(f, summarySheet, rows)
}

func writeMarket(f *excelize.File, market string, mr optimizer.MarketResult) error {
	if _, err := f.NewSheet(market); err != nil {
		return err
	}

	rows := [][]any{
		{"Name", "Category", "Qty", "Unit", "Price", "Promo", "Preferred"},
	}
	for _, item := range mr.Items {
		rows = append(rows, []any{
			item.Name, item.Category, item.Quantity.Value, item.Quantity.Unit,
			item.Price, item.Promo, item.PreferredStoreHonored,
		})
	}
	rows = append(rows,
		[]any{},
		[]any{"Subtotal", mr.Subtotal},
		[]any{"Coupon discount", mr.CouponDiscount},
		[]any{"Balance used", mr.BalanceUsed},
		[]any{"After discounts", mr.AfterDiscounts},
		[]any{"Delivery", mr.Delivery},
		[]any{"Total", mr.Total},
	)
	for _, c := range mr.CouponsApplied {
		rows = append(rows, []any{"Coupon", c.Description, c.Discount})
	}
	return writeRows(f, market, rows)
}

func writeAlternatives(f *excelize.File, alternatives []optimizer.Alternative) error {
	const sheet = "Alternatives"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Strategy", "Subtotal", "Coupon discount", "Balance used", "Delivery", "Total", "All available"},
	}
	for _, alt := range alternatives {
		rows = append(rows, []any{
			alt.Strategy, alt.Subtotal, alt.CouponDiscount, alt.BalanceUsed,
			alt.Delivery, alt.Total, alt.AllAvailable,
		})
	}
	return writeRows(f, sheet, rows)
}
