// Package keywords generates search keyword phrases for enriched items. SKW
// phrases are short and noun-anchored with deterministic post-processing;
// DSW phrases are longer descriptive phrases validated by prompt alone.
package keywords

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/botit-ai/enrichment-engine/internal/llm"
	"github.com/botit-ai/enrichment-engine/internal/observability"
)

const maxSKWPhrases = 5

// Generator produces SKW and DSW keyword strings through the completion
// service.
type Generator struct {
	completer llm.Completer
	logger    *observability.Logger
}

// NewGenerator creates a keyword generator.
func NewGenerator(logger *observability.Logger, completer llm.Completer) *Generator {
	return &Generator{completer: completer, logger: logger}
}

// GenerateSKW returns a comma-joined list of Title-Case search keyword
// phrases anchored to the item's product noun. Model output is never
// trusted: the response is filtered, reordered, deduplicated, and capped so
// the result always satisfies the SKW shape regardless of model compliance.
// An empty item name yields an empty string.
func (g *Generator) GenerateSKW(ctx context.Context, itemName, itemCategory string) string {
	noun := ProductNoun(itemName)
	if noun == "" {
		return ""
	}

	prompt := buildSKWPrompt(itemName, itemCategory)

	raw, err := g.completer.Complete(ctx, llm.CompletionRequest{Prompt: prompt})
	if err != nil {
		g.logger.Warn().
			Str("item", itemName).
			Str("error_kind", string(llm.KindOf(err))).
			Err(err).
			Msg("SKW generation call failed")
		raw = ""
	}

	phrases := postProcessSKW(raw, noun)
	return strings.Join(phrases, ", ")
}

// ProductNoun derives the item's core product noun: the last
// whitespace-delimited token of the item name, with hyphens treated as word
// separators. Returns lower case.
func ProductNoun(itemName string) string {
	cleaned := strings.ReplaceAll(itemName, "-", " ")
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

// postProcessSKW enforces the SKW output shape on a raw model response:
// the product noun leads, every phrase contains it, no duplicates, at most
// five phrases, Title Case.
func postProcessSKW(raw, noun string) []string {
	normalized := normalizeResponse(raw)

	var candidates []string
	for _, part := range strings.Split(normalized, ",") {
		phrase := strings.TrimSpace(part)
		if phrase == "" {
			continue
		}
		if !strings.Contains(phrase, noun) {
			continue
		}
		candidates = append(candidates, phrase)
	}

	ordered := make([]string, 0, len(candidates)+1)
	if len(candidates) == 0 || candidates[0] != noun {
		ordered = append(ordered, noun)
	}
	ordered = append(ordered, candidates...)

	seen := make(map[string]struct{}, len(ordered))
	deduped := make([]string, 0, len(ordered))
	for _, phrase := range ordered {
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		deduped = append(deduped, phrase)
	}
	if len(deduped) > maxSKWPhrases {
		deduped = deduped[:maxSKWPhrases]
	}

	for i, phrase := range deduped {
		deduped[i] = titleCase(phrase)
	}
	return deduped
}

// normalizeResponse strips newlines and quote characters and lower-cases the
// raw model output.
func normalizeResponse(raw string) string {
	s := strings.ReplaceAll(raw, "\n", " ")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	return strings.ToLower(strings.TrimSpace(s))
}

// titleCase upper-cases the first letter of every alphabetic run, so
// hyphenated words capitalize on both sides ("t-shirt" -> "T-Shirt").
func titleCase(s string) string {
	runes := []rune(s)
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) && !prevLetter {
			runes[i] = unicode.ToUpper(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return string(runes)
}

func buildSKWPrompt(itemName, itemCategory string) string {
	return fmt.Sprintf(`Generate 5 shopping keyword phrases for this item.
Rules:
- Do not use numbering or extra text, only list the phrases separated by commas.
- The first phrase must be only the product category (example: "Ring", "Necklace", etc.).
- All other phrases must end with the product category word.
- Each phrase must be maximum 3 words only. Never exceed 3 words.
- Format = modifier + modifier + product category.
- Modifiers = tangible features or proper nouns.
- Remove sentiments, numbers, dates, symbols.
Item data: Item name: %s
Item Category: %s`, itemName, itemCategory)
}
