package classify

import (
	"fmt"
	"strings"

	"github.com/botit-ai/enrichment-engine/internal/taxonomy"
)

// levelExamples holds the two worked example lines shown per level.
var levelExamples = map[taxonomy.Level][2]string{
	taxonomy.LevelShoppingCategory:    {"fashion|confidence:95%", "electronics|confidence:88%"},
	taxonomy.LevelShoppingSubcategory: {"casual wear|confidence:95%", "mobile phones|confidence:88%"},
	taxonomy.LevelItemCategory:        {"t-shirt|confidence:95%", "chocolate cake|confidence:88%"},
	taxonomy.LevelItemSubcategory:     {"sweatshirt|confidence:90%", "running shoes|confidence:85%"},
}

// ancestorFieldNames label the validated ancestor path lines in the prompt.
var ancestorFieldNames = []string{"Shopping Category", "Shopping Subcategory", "Item Category"}

// buildPrompt renders the level-specific classification prompt: item fields,
// the validated ancestor path, the exact allowed-label set, the mandated
// output contract, and two worked examples.
func buildPrompt(level taxonomy.Level, item Item, ancestors []string, allowed []string) string {
	examples := levelExamples[level]
	levelName := level.Name()

	var b strings.Builder
	fmt.Fprintf(&b, "You are a strict classification bot.\n")
	fmt.Fprintf(&b, "Your ONLY job is to return ONE %s and ONE confidence.\n", levelName)
	b.WriteString("DO NOT explain. DO NOT add reasoning. DO NOT use multiple lines.\n\n")

	fmt.Fprintf(&b, "Item: %s\n", item.Name)
	fmt.Fprintf(&b, "Description: %s\n", item.Description)
	fmt.Fprintf(&b, "Vendor Category: %s\n", item.VendorCategory)
	for i, ancestor := range ancestors {
		if i < len(ancestorFieldNames) {
			fmt.Fprintf(&b, "%s: %s\n", ancestorFieldNames[i], ancestor)
		}
	}

	fmt.Fprintf(&b, "\nAllowed %s values:\n%s\n", levelName, strings.Join(allowed, ", "))

	b.WriteString("\nOutput format (MUST follow exactly):\n")
	fmt.Fprintf(&b, "<%s>|confidence:<number>%%\n", strings.ReplaceAll(levelName, " ", "-"))
	fmt.Fprintf(&b, "\nExample valid outputs:\n%s\n%s\n", examples[0], examples[1])
	b.WriteString("\nIf none fit, output:\n|confidence:0%\n")
	b.WriteString("\nNow output ONLY one valid line:\n")

	return b.String()
}
