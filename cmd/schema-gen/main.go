// Schema Generator
//
// Generates JSON Schema files from Go types for the planner's stored
// documents and API payloads. Go is the source of truth for the document
// shapes shared with the scraper and frontend tooling.
//
// Usage:
//
//	go run cmd/schema-gen/main.go
//
// Output:
//
//	./schemas/documents.json
//	./schemas/plan.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/despensa/planner-service/internal/consumption"
	"github.com/despensa/planner-service/internal/handlers"
	"github.com/despensa/planner-service/internal/planner"
	"github.com/despensa/planner-service/internal/preferences"
	"github.com/despensa/planner-service/internal/pricecache"
	"github.com/despensa/planner-service/internal/shoppinglist"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

func main() {
	outputDir := "./schemas"

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	groups := []SchemaGroup{
		{
			Name: "documents",
			Types: []any{
				// Stored document shapes
				preferences.Preferences{},
				pricecache.Entry{},
				consumption.Product{},
				consumption.Purchase{},
				shoppinglist.Inventory{},
				shoppinglist.Item{},
			},
			Output: "documents.json",
		},
		{
			Name: "plan",
			Types: []any{
				// Request types
				handlers.CompareRequest{},
				handlers.CompareItem{},
				handlers.CacheUpdateRequest{},
				handlers.PurchaseRequest{},
				handlers.FeedbackRequest{},
				// Response types
				planner.CompareResult{},
				handlers.MarketInfo{},
				shoppinglist.WeeklyList{},
				shoppinglist.BulkList{},
				shoppinglist.PhysicalList{},
				shoppinglist.Triage{},
				consumption.StockReport{},
			},
			Output: "plan.json",
		},
	}

	for _, group := range groups {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

// generateGroupSchema creates a combined schema with all types in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{
		DoNotReference: false,
		ExpandedStruct: false,
	}

	definitions := make(map[string]any)

	for _, t := range group.Types {
		schema := reflector.Reflect(t)

		typeName := ""
		if schema.Ref != "" {
			// Extract type name from $ref like "#/$defs/Preferences"
			typeName = filepath.Base(schema.Ref)
		}

		for name, def := range schema.Definitions {
			definitions[name] = def
		}

		if typeName != "" && schema.Definitions[typeName] != nil {
			definitions[typeName] = schema.Definitions[typeName]
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://despensa.pt/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", capitalize(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

// writeSchema writes a schema to a JSON file
func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
