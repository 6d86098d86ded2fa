// Package batch handles CSV ingestion and egress for batch enrichment runs.
package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/botit-ai/enrichment-engine/internal/pipeline"
)

// Input CSV column names.
const (
	colItemName       = "Item (EN)"
	colDescription    = "Description (EN)"
	colVendorCategory = "Category/Department (EN)"
	colVariantName    = "Variant Name"
)

// ReadItems parses a product export CSV into pipeline items. Some exports
// duplicate the header into the first data row; that row is skipped. Rows
// missing optional columns parse with the fields left empty; a missing item
// name column is an error since nothing downstream can work without it.
func ReadItems(r io.Reader) ([]pipeline.Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index[colItemName]; !ok {
		return nil, fmt.Errorf("csv missing required column %q", colItemName)
	}

	field := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var items []pipeline.Item
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		// Duplicated header row: the export sometimes repeats the column
		// names as the first data row.
		if first {
			first = false
			if field(record, colItemName) == colItemName {
				continue
			}
		}

		items = append(items, pipeline.Item{
			Name:           field(record, colItemName),
			Description:    field(record, colDescription),
			VendorCategory: field(record, colVendorCategory),
			VariantName:    field(record, colVariantName),
		})
	}
	return items, nil
}

// ReadItemsFile reads a CSV file from disk.
func ReadItemsFile(path string) ([]pipeline.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadItems(f)
}
