// Package importer reads supermarket price lists from spreadsheets into the
// price cache. The expected layout is one header row naming the columns
// (product, price, and optionally promo, brand, unit, available) followed by
// one product per row. Header matching is case- and accent-insensitive, so
// both exported English headers and Portuguese ones (produto, preço, marca)
// work.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/despensa/planner-service/internal/money"
	"github.com/despensa/planner-service/internal/pricecache"
)

// RowError records a row that could not be imported. Bad rows never abort
// the import; they are reported alongside the rows that did load.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result summarizes one import run.
type Result struct {
	Entries []pricecache.Entry `json:"-"`
	Total   int                `json:"total"`
	Errors  []RowError         `json:"errors,omitempty"`
}

// column headers accepted for each field, pre-folded
var headerAliases = map[string][]string{
	"name":      {"name", "product", "produto", "nome", "artigo"},
	"price":     {"price", "preco", "valor"},
	"promo":     {"promo", "promocao", "promo price", "preco promo"},
	"brand":     {"brand", "marca"},
	"unit":      {"unit", "unidade"},
	"available": {"available", "disponivel", "stock"},
}

// ParseXLSX reads a price list spreadsheet into cache entries. The first
// sheet is used unless sheetName is given.
func ParseXLSX(content []byte, sheetName string) (Result, error) {
	var result Result

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return result, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return result, fmt.Errorf("spreadsheet has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return result, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return result, fmt.Errorf("sheet %q has no data rows", sheetName)
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return result, err
	}

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		name := cell(row, cols["name"])
		if name == "" {
			continue // blank row
		}

		price, ok := money.ParseEUR(cell(row, cols["price"]))
		if !ok || price <= 0 {
			result.Errors = append(result.Errors, RowError{
				Row:     rowNum,
				Message: fmt.Sprintf("unparseable price %q for %q", cell(row, cols["price"]), name),
			})
			continue
		}

		entry := pricecache.Entry{
			Name:  name,
			Price: price,
			Brand: cell(row, cols["brand"]),
			Unit:  cell(row, cols["unit"]),
		}

		if raw := cell(row, cols["promo"]); raw != "" {
			if promo, ok := money.ParseEUR(raw); ok && promo > 0 {
				entry.PromoEffectivePrice = &promo
			} else {
				result.Errors = append(result.Errors, RowError{
					Row:     rowNum,
					Message: fmt.Sprintf("unparseable promo price %q for %q", raw, name),
				})
			}
		}

		if raw := cell(row, cols["available"]); raw != "" {
			available := parseAvailable(raw)
			entry.Available = &available
		}

		result.Entries = append(result.Entries, entry)
	}

	result.Total = len(result.Entries)

	log.Debug().
		Str("sheet", sheetName).
		Int("entries", result.Total).
		Int("errors", len(result.Errors)).
		Msg("Price list parsed")
	return result, nil
}

// ImportXLSX parses a price list and writes it into the cache for one market.
func ImportXLSX(ctx context.Context, cache *pricecache.Cache, market string, content []byte, sheetName string) (Result, error) {
	result, err := ParseXLSX(content, sheetName)
	if err != nil {
		return result, err
	}

	written, err := cache.UpdateBatch(ctx, market, result.Entries)
	if err != nil {
		return result, err
	}
	result.Total = written
	return result, nil
}

// mapColumns resolves header names to column indices. Name and price are
// required; everything else is optional (-1 when absent).
func mapColumns(header []string) (map[string]int, error) {
	cols := map[string]int{
		"name":      -1,
		"price":     -1,
		"promo":     -1,
		"brand":     -1,
		"unit":      -1,
		"available": -1,
	}

	for idx, raw := range header {
		folded := pricecache.FoldDiacritics(strings.ToLower(strings.TrimSpace(raw)))
		for field, aliases := range headerAliases {
			if cols[field] != -1 {
				continue
			}
			for _, alias := range aliases {
				if folded == alias {
					cols[field] = idx
					break
				}
			}
		}
	}

	if cols["name"] == -1 {
		return nil, fmt.Errorf("no product name column found in header %v", header)
	}
	if cols["price"] == -1 {
		return nil, fmt.Errorf("no price column found in header %v", header)
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseAvailable(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false", "no", "nao", "não", "esgotado", "indisponivel", "indisponível":
		return false
	default:
		return true
	}
}
