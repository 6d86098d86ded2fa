package keywords

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/botit-ai/enrichment-engine/internal/llm"
	"github.com/botit-ai/enrichment-engine/internal/observability"
)

type mockCompleter struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (m *mockCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, req.Prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestProductNoun(t *testing.T) {
	tests := []struct {
		itemName string
		want     string
	}{
		{"Cotton T-Shirt", "shirt"},
		{"Gold Ring", "ring"},
		{"ring", "ring"},
		{"Leather Crossbody Bag", "bag"},
		{"  Silk   Scarf  ", "scarf"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ProductNoun(tt.itemName), "itemName=%q", tt.itemName)
	}
}

func TestGenerateSKW_CompliantResponse(t *testing.T) {
	completer := &mockCompleter{response: "ring, gold ring, diamond ring, engagement ring, vintage ring"}
	g := NewGenerator(observability.Nop(), completer)

	skw := g.GenerateSKW(context.Background(), "Gold Ring", "ring")

	assert.Equal(t, "Ring, Gold Ring, Diamond Ring, Engagement Ring, Vintage Ring", skw)
}

func TestGenerateSKW_FirstPhraseIsProductNoun(t *testing.T) {
	// The model forgot the bare-noun phrase; it must be prepended.
	completer := &mockCompleter{response: "gold ring, diamond ring"}
	g := NewGenerator(observability.Nop(), completer)

	skw := g.GenerateSKW(context.Background(), "Gold Ring", "ring")

	phrases := strings.Split(skw, ", ")
	assert.Equal(t, "Ring", phrases[0])
	assert.Equal(t, []string{"Ring", "Gold Ring", "Diamond Ring"}, phrases)
}

func TestGenerateSKW_FiltersPhrasesWithoutNoun(t *testing.T) {
	completer := &mockCompleter{response: "gold ring, stylish accessory, diamond ring, for her"}
	g := NewGenerator(observability.Nop(), completer)

	skw := g.GenerateSKW(context.Background(), "Gold Ring", "ring")

	assert.NotContains(t, skw, "Accessory")
	assert.NotContains(t, skw, "For Her")
	assert.Equal(t, "Ring, Gold Ring, Diamond Ring", skw)
}

func TestGenerateSKW_Deduplicates(t *testing.T) {
	completer := &mockCompleter{response: "ring, gold ring, ring, gold ring, diamond ring"}
	g := NewGenerator(observability.Nop(), completer)

	skw := g.GenerateSKW(context.Background(), "Gold Ring", "ring")

	assert.Equal(t, "Ring, Gold Ring, Diamond Ring", skw)
}

func TestGenerateSKW_CapsAtFivePhrases(t *testing.T) {
	completer := &mockCompleter{response: "ring, a ring, b ring, c ring, d ring, e ring, f ring"}
	g := NewGenerator(observability.Nop(), completer)

	skw := g.GenerateSKW(context.Background(), "Gold Ring", "ring")

	phrases := strings.Split(skw, ", ")
	assert.Len(t, phrases, 5)
}

func TestGenerateSKW_HyphenatedItemName(t *testing.T) {
	completer := &mockCompleter{response: "cotton shirt, v-neck shirt"}
	g := NewGenerator(observability.Nop(), completer)

	skw := g.GenerateSKW(context.Background(), "Cotton T-Shirt", "t-shirt")

	// Hyphenated words capitalize on both sides of the hyphen.
	assert.Equal(t, "Shirt, Cotton Shirt, V-Neck Shirt", skw)
}

func TestGenerateSKW_FailedCallStillYieldsNoun(t *testing.T) {
	completer := &mockCompleter{err: errors.New("connection refused")}
	g := NewGenerator(observability.Nop(), completer)

	skw := g.GenerateSKW(context.Background(), "Gold Ring", "ring")

	assert.Equal(t, "Ring", skw)
}

func TestGenerateSKW_EmptyItemName(t *testing.T) {
	completer := &mockCompleter{response: "ring, gold ring"}
	g := NewGenerator(observability.Nop(), completer)

	skw := g.GenerateSKW(context.Background(), "", "ring")

	assert.Empty(t, skw)
	assert.Zero(t, completer.calls, "no completion call without a product noun")
}

func TestGenerateSKW_PropertyShape(t *testing.T) {
	// For any response, the output leads with the noun, has no duplicates,
	// and never exceeds five phrases.
	responses := []string{
		"ring, gold ring, diamond ring",
		"nonsense without the keyword at all",
		"RING, Gold RING",
		"a ring,,, , b ring",
		"",
	}

	for _, resp := range responses {
		g := NewGenerator(observability.Nop(), &mockCompleter{response: resp})
		skw := g.GenerateSKW(context.Background(), "Gold Ring", "ring")

		phrases := strings.Split(skw, ", ")
		assert.Equal(t, "Ring", phrases[0], "response %q", resp)
		assert.LessOrEqual(t, len(phrases), 5, "response %q", resp)

		seen := map[string]bool{}
		for _, p := range phrases {
			assert.False(t, seen[p], "duplicate %q in response %q", p, resp)
			seen[p] = true
		}
	}
}
