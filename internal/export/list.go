package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/despensa/planner-service/internal/shoppinglist"
)

// ListXLSX renders a generated shopping list as a single-sheet workbook.
func ListXLSX(title string, items []shoppinglist.Item) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", title)

	rows := [][]any{
		{"Item", "Category", "Quantity", "Unit", "Source", "Days Left", "Urgent"},
	}
	for _, item := range items {
		daysLeft := any("")
		if item.DaysLeft != nil {
			daysLeft = *item.DaysLeft
		}
		urgent := ""
		if item.Urgent {
			urgent = "yes"
		}
		rows = append(rows, []any{
			item.Name,
			item.Category,
			item.Quantity.Value,
			item.Quantity.Unit,
			item.Source,
			daysLeft,
			urgent,
		})
	}

	if err := writeRows(f, title, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
