package keywords

import (
	"context"
	"fmt"

	"github.com/botit-ai/enrichment-engine/internal/llm"
)

// GenerateDSW returns a comma-joined list of descriptive search word phrases.
// Unlike SKW, the output is only normalized (newlines and quotes stripped,
// lower-cased); phrase structure is enforced by the prompt alone. The
// asymmetry is intentional and must stay: DSW trusts the model, SKW does not.
func (g *Generator) GenerateDSW(ctx context.Context, itemName, description, itemCategory string) string {
	prompt := buildDSWPrompt(itemName, description, itemCategory)

	raw, err := g.completer.Complete(ctx, llm.CompletionRequest{Prompt: prompt})
	if err != nil {
		g.logger.Warn().
			Str("item", itemName).
			Str("error_kind", string(llm.KindOf(err))).
			Err(err).
			Msg("DSW generation call failed")
		return ""
	}
	return normalizeResponse(raw)
}

func buildDSWPrompt(itemName, description, itemCategory string) string {
	return fmt.Sprintf(`Generate 3-10 shopping keyword phrases for this item.
Rules:
- Do not use numbering, bullets, or extra comments, only list the phrases separated by commas.
- Each phrase must end with the main product word.
- Format (max 3 words) = modifier + modifier + main product.
- Modifiers = tangible features, functional attributes, or proper nouns.
- Include exactly one phrase with only the main product (example: "Ring").
- Remove sentiments, opinions, numbers, dates, symbols, and abbreviations.
Item data: Item name: %s
Description: %s
Item Category: %s`, itemName, description, itemCategory)
}
