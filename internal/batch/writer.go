package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/botit-ai/enrichment-engine/internal/pipeline"
)

// outputColumns is the fixed column order of the enriched CSV, before any
// translation columns.
var outputColumns = []string{
	colItemName,
	colDescription,
	colVendorCategory,
	colVariantName,
	"Shopping Category",
	"Shopping Category Confidence",
	"Shopping Subcategory",
	"Shopping Subcategory Confidence",
	"Item Category",
	"Item Category Confidence",
	"Item Subcategory",
	"Item Subcategory Confidence",
	"SKW",
	"DSW",
	"AI_Attributes",
	"Error",
}

// WriteEnriched writes enriched records as CSV. translateFields adds one
// "<field>_AR" column per translated field, in the given order.
func WriteEnriched(w io.Writer, records []pipeline.EnrichedItem, translateFields []string) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(outputColumns)+len(translateFields))
	header = append(header, outputColumns...)
	for _, field := range translateFields {
		header = append(header, field+"_AR")
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Item.Name,
			record.Item.Description,
			record.Item.VendorCategory,
			record.Item.VariantName,
			record.ShoppingCategory.Label,
			strconv.Itoa(record.ShoppingCategory.Confidence),
			record.ShoppingSubcategory.Label,
			strconv.Itoa(record.ShoppingSubcategory.Confidence),
			record.ItemCategory.Label,
			strconv.Itoa(record.ItemCategory.Confidence),
			record.ItemSubcategory.Label,
			strconv.Itoa(record.ItemSubcategory.Confidence),
			record.SKW,
			record.DSW,
			record.AIAttributes,
			record.Err,
		}
		for _, field := range translateFields {
			row = append(row, record.Translations[field+"_AR"])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteEnrichedFile writes enriched records to a CSV file.
func WriteEnrichedFile(path string, records []pipeline.EnrichedItem, translateFields []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output csv: %w", err)
	}
	defer f.Close()

	if err := WriteEnriched(f, records, translateFields); err != nil {
		return err
	}
	return f.Close()
}
