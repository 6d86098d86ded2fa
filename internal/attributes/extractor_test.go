package attributes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botit-ai/enrichment-engine/internal/llm"
	"github.com/botit-ai/enrichment-engine/internal/observability"
)

type mockCompleter struct {
	response string
	err      error
	prompts  []string
}

func (m *mockCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	m.prompts = append(m.prompts, req.Prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestFieldNames_FixedOrder(t *testing.T) {
	require.Len(t, FieldNames, 18)
	assert.Equal(t, "Gender", FieldNames[0])
	assert.Equal(t, "Country of origin", FieldNames[17])
}

func TestExtract_TrustsModelOutput(t *testing.T) {
	response := "Gender: Women\nAge:\nBrand:\nGeneric Name: ring\nProduct Name: Gold Ring\nSize:\nMeasurements:\nFeatures:\nTypes of Fashion Styles:\nGem Stones:\nBirth Stones:\nMaterial: Gold\nColor: Gold\nPattern:\nOccasion:\nActivity:\nSeason:\nCountry of origin:"
	completer := &mockCompleter{response: response}
	e := NewExtractor(observability.Nop(), completer)

	got := e.Extract(context.Background(), "Gold Ring", "A fine gold ring", "Jewelry", "fashion", "jewelry", "ring")

	assert.Equal(t, response, got)
}

func TestExtract_TrimsTrailingCarriageReturns(t *testing.T) {
	completer := &mockCompleter{response: "Gender: Men\r\r"}
	e := NewExtractor(observability.Nop(), completer)

	got := e.Extract(context.Background(), "Watch", "", "", "", "", "")

	assert.Equal(t, "Gender: Men", got)
}

func TestExtract_FailedCallYieldsEmpty(t *testing.T) {
	completer := &mockCompleter{err: errors.New("timeout")}
	e := NewExtractor(observability.Nop(), completer)

	got := e.Extract(context.Background(), "Gold Ring", "", "", "", "", "")

	assert.Empty(t, got)
}

func TestExtract_PromptListsEveryFieldInOrder(t *testing.T) {
	completer := &mockCompleter{response: "Gender:"}
	e := NewExtractor(observability.Nop(), completer)

	e.Extract(context.Background(), "Gold Ring", "desc", "Jewelry", "fashion", "jewelry", "ring")

	require.Len(t, completer.prompts, 1)
	prompt := completer.prompts[0]

	lastIdx := -1
	for _, field := range FieldNames {
		idx := strings.Index(prompt, field+":")
		assert.GreaterOrEqual(t, idx, 0, "field %q missing from prompt", field)
		assert.Greater(t, idx, lastIdx, "field %q out of order", field)
		lastIdx = idx
	}
}

func TestExtract_PromptConstrainsGender(t *testing.T) {
	completer := &mockCompleter{response: "Gender:"}
	e := NewExtractor(observability.Nop(), completer)

	e.Extract(context.Background(), "Gold Ring", "", "", "", "", "")

	require.Len(t, completer.prompts, 1)
	for _, value := range GenderValues {
		assert.Contains(t, completer.prompts[0], value)
	}
}
