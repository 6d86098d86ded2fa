package batch

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botit-ai/enrichment-engine/internal/pipeline"
)

func TestWriteEnriched(t *testing.T) {
	records := []pipeline.EnrichedItem{
		{
			Item: pipeline.Item{
				Name:           "Gold Ring",
				Description:    "A fine gold ring",
				VendorCategory: "Jewelry",
			},
			ShoppingCategory:    pipeline.LevelResult{Label: "fashion", Confidence: 90},
			ShoppingSubcategory: pipeline.LevelResult{Label: "jewelry", Confidence: 85},
			ItemCategory:        pipeline.LevelResult{Label: "ring", Confidence: 92},
			ItemSubcategory:     pipeline.LevelResult{Label: pipeline.SentinelLabel},
			SKW:                 "Ring, Gold Ring",
			DSW:                 "gold ring, fine gold ring",
			AIAttributes:        "Gender: Women\nMaterial: Gold",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEnriched(&buf, records, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.Equal(t, "Item (EN)", header[0])
	assert.Contains(t, header, "Shopping Category")
	assert.Contains(t, header, "Item Subcategory Confidence")
	assert.Contains(t, header, "AI_Attributes")
	assert.Contains(t, header, "Error")

	row := rows[1]
	require.Len(t, row, len(header))
	assert.Equal(t, "Gold Ring", row[0])
	assert.Equal(t, "fashion", row[4])
	assert.Equal(t, "90", row[5])
	assert.Equal(t, pipeline.SentinelLabel, row[10])
	assert.Equal(t, "0", row[11])
	assert.Equal(t, "Ring, Gold Ring", row[12])
}

func TestWriteEnriched_TranslationColumns(t *testing.T) {
	records := []pipeline.EnrichedItem{
		{
			Item:             pipeline.Item{Name: "Gold Ring"},
			ShoppingCategory: pipeline.LevelResult{Label: "fashion", Confidence: 90},
			Translations: map[string]string{
				"Item (EN)_AR": "خاتم ذهب",
				"SKW_AR":       "",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEnriched(&buf, records, []string{"Item (EN)", "SKW"}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	require.Len(t, header, len(rows[1]))
	assert.Equal(t, "Item (EN)_AR", header[len(header)-2])
	assert.Equal(t, "SKW_AR", header[len(header)-1])

	row := rows[1]
	assert.Equal(t, "خاتم ذهب", row[len(row)-2])
	assert.Empty(t, row[len(row)-1])
}

func TestWriteEnriched_ErrorColumn(t *testing.T) {
	records := []pipeline.EnrichedItem{
		{
			Item:                pipeline.Item{Name: "Mystery Item"},
			ShoppingCategory:    pipeline.LevelResult{Label: pipeline.SentinelLabel},
			ShoppingSubcategory: pipeline.LevelResult{Label: pipeline.SentinelLabel},
			ItemCategory:        pipeline.LevelResult{Label: pipeline.SentinelLabel},
			ItemSubcategory:     pipeline.LevelResult{Label: pipeline.SentinelLabel},
			Err:                 "context deadline exceeded",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEnriched(&buf, records, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "context deadline exceeded", rows[1][15])
}

func TestWriteEnriched_RoundTripsThroughReader(t *testing.T) {
	records := []pipeline.EnrichedItem{
		{Item: pipeline.Item{Name: "Gold Ring", Description: "A fine gold ring", VendorCategory: "Jewelry", VariantName: "Size 7"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEnriched(&buf, records, nil))

	items, err := ReadItems(&buf)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, records[0].Item, items[0])
}
