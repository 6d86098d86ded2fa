// Package attributes extracts a fixed ordered set of named product
// attributes from item text via a single completion call.
package attributes

import (
	"context"
	"fmt"
	"strings"

	"github.com/botit-ai/enrichment-engine/internal/llm"
	"github.com/botit-ai/enrichment-engine/internal/observability"
)

// FieldNames is the fixed ordered set of attribute fields. Every extraction
// result carries all of them in this order; fields the model cannot infer
// stay empty, never omitted.
var FieldNames = []string{
	"Gender",
	"Age",
	"Brand",
	"Generic Name",
	"Product Name",
	"Size",
	"Measurements",
	"Features",
	"Types of Fashion Styles",
	"Gem Stones",
	"Birth Stones",
	"Material",
	"Color",
	"Pattern",
	"Occasion",
	"Activity",
	"Season",
	"Country of origin",
}

// GenderValues is the closed vocabulary the prompt enforces for the Gender
// field.
var GenderValues = []string{
	"Women",
	"Men",
	"Unisex women, Unisex men",
	"Girls",
	"Boys",
	"Unisex girls, unisex boys",
}

// Extractor produces the fixed-field attribute block for an item.
type Extractor struct {
	completer llm.Completer
	logger    *observability.Logger
}

// NewExtractor creates an attribute extractor.
func NewExtractor(logger *observability.Logger, completer llm.Completer) *Extractor {
	return &Extractor{completer: completer, logger: logger}
}

// Extract returns the raw fixed-field attribute text for an item. The model
// output is trusted as-is apart from trimming trailing carriage returns; a
// failed call yields an empty string.
func (e *Extractor) Extract(ctx context.Context, itemName, description, vendorCategory, shoppingCategory, subcategory, itemCategory string) string {
	prompt := buildAttributePrompt(itemName, description, vendorCategory, shoppingCategory, subcategory, itemCategory)

	raw, err := e.completer.Complete(ctx, llm.CompletionRequest{Prompt: prompt})
	if err != nil {
		e.logger.Warn().
			Str("item", itemName).
			Str("error_kind", string(llm.KindOf(err))).
			Err(err).
			Msg("Attribute extraction call failed")
		return ""
	}
	return strings.TrimRight(raw, "\r")
}

func buildAttributePrompt(itemName, description, vendorCategory, shoppingCategory, subcategory, itemCategory string) string {
	var fields strings.Builder
	for _, name := range FieldNames {
		fields.WriteString(name)
		fields.WriteString(":\n")
	}

	return fmt.Sprintf(`Item data: Item name: %s
Description: %s
Vendor Category: %s
Shopping Category: %s
Subcategory: %s
Item Category: %s

- Identify all attributes of this item. Only fill attributes that can be clearly inferred from the data; leave unknowns empty. Do not include extra statements, explanations, or brackets. Use short, precise values in English.

- Gender must be chosen strictly from this list only:
  ["%s"].
  Do not invent or shorten values (e.g., "Unisex men" is invalid).

- Generic Name should use the item category if possible.
- Color should be inferred from the item name or category if present.
- Product Name should be concise and represent the product, not copied verbatim.

Format exactly as:

%s`,
		itemName, description, vendorCategory, shoppingCategory, subcategory, itemCategory,
		strings.Join(GenderValues, `", "`),
		fields.String(),
	)
}
