// Package translate turns English field values into Arabic through the
// translation model. Failures never propagate; a field that cannot be
// translated comes back empty.
package translate

import (
	"context"
	"strings"

	"github.com/botit-ai/enrichment-engine/internal/llm"
	"github.com/botit-ai/enrichment-engine/internal/observability"
)

const translatePromptPrefix = "You are a professional English to Arabic translator for e-commerce. " +
	"Translate the following text into Arabic. Respond with Arabic text only, no explanations.\n\n"

// Translator translates text fields via a dedicated translation model.
type Translator struct {
	completer llm.Completer
	model     string
	logger    *observability.Logger
}

// NewTranslator creates a translator bound to the given model name.
func NewTranslator(logger *observability.Logger, completer llm.Completer, model string) *Translator {
	return &Translator{completer: completer, model: model, logger: logger}
}

// Translate returns the Arabic translation of text. Empty input and the
// literal placeholder "empty" translate to the empty string, as does any
// service failure.
func (t *Translator) Translate(ctx context.Context, text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, "empty") {
		return ""
	}

	raw, err := t.completer.Complete(ctx, llm.CompletionRequest{
		Prompt: translatePromptPrefix + text,
		Model:  t.model,
	})
	if err != nil {
		t.logger.Warn().
			Str("error_kind", string(llm.KindOf(err))).
			Err(err).
			Msg("Translation call failed")
		return ""
	}
	return strings.TrimSpace(raw)
}

// TranslateFields translates the named fields of a record, returning a map
// of "<field>_AR" keys. Fields that fail or are empty yield empty strings.
func (t *Translator) TranslateFields(ctx context.Context, record map[string]string, fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		out[field+"_AR"] = t.Translate(ctx, record[field])
	}
	return out
}
