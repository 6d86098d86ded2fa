package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botit-ai/enrichment-engine/internal/attributes"
	"github.com/botit-ai/enrichment-engine/internal/classify"
	"github.com/botit-ai/enrichment-engine/internal/keywords"
	"github.com/botit-ai/enrichment-engine/internal/llm"
	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/taxonomy"
	"github.com/botit-ai/enrichment-engine/internal/translate"
)

const pipelineTaxonomy = `
categories:
  - name: fashion
    subcategories:
      - casual wear
      - footwear
    item_categories:
      casual wear: [t-shirt, dress, trousers]
      footwear: [sports shoe, sandals]
    item_subcategories:
      t-shirt: [graphic t-shirt, v-neck t-shirt]
  - name: electronics
    subcategories:
      - mobile phones
`

// scriptedCompleter routes each prompt to a canned response by substring
// match, tried in order. It records how many classification prompts it saw
// per level.
type scriptedCompleter struct {
	mu      sync.Mutex
	rules   []scriptRule
	byLevel map[string]int
}

type scriptRule struct {
	contains string
	response string
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byLevel == nil {
		s.byLevel = make(map[string]int)
	}
	for _, name := range []string{"shopping subcategory", "item subcategory", "shopping category", "item category"} {
		if strings.Contains(req.Prompt, "Allowed "+name+" values:") {
			s.byLevel[name]++
			break
		}
	}

	for _, rule := range s.rules {
		if strings.Contains(req.Prompt, rule.contains) {
			return rule.response, nil
		}
	}
	return "", nil
}

func (s *scriptedCompleter) levelCalls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byLevel[name]
}

func newTestOrchestrator(t *testing.T, completer llm.Completer, opts Options, translator *translate.Translator) *Orchestrator {
	t.Helper()
	store, err := taxonomy.Parse([]byte(pipelineTaxonomy))
	require.NoError(t, err)

	logger := observability.Nop()
	return NewOrchestrator(
		logger,
		classify.NewClassifier(logger, store, completer),
		keywords.NewGenerator(logger, completer),
		attributes.NewExtractor(logger, completer),
		translator,
		opts,
	)
}

func TestProcess_FullChain(t *testing.T) {
	completer := &scriptedCompleter{rules: []scriptRule{
		{contains: "Allowed shopping subcategory values:", response: "casual wear|confidence:85%"},
		{contains: "Allowed item subcategory values:", response: "hoodie|confidence:70%"},
		{contains: "Allowed shopping category values:", response: "fashion|confidence:90%"},
		{contains: "Allowed item category values:", response: "t-shirt|confidence:92%"},
		{contains: "Generate 5 shopping keyword phrases", response: "t-shirt, cotton t-shirt, summer t-shirt"},
		{contains: "Generate 3-10 shopping keyword phrases", response: "soft cotton t-shirt, casual t-shirt"},
		{contains: "Identify all attributes", response: "Gender: Unisex women, Unisex men\nColor: White"},
	}}
	o := newTestOrchestrator(t, completer, Options{}, nil)

	enriched, err := o.Process(context.Background(), Item{
		Name:           "Cotton T-Shirt",
		Description:    "Soft white cotton t-shirt",
		VendorCategory: "Clothing",
	})
	require.NoError(t, err)

	assert.Equal(t, LevelResult{Label: "fashion", Confidence: 90}, enriched.ShoppingCategory)
	assert.Equal(t, LevelResult{Label: "casual wear", Confidence: 85}, enriched.ShoppingSubcategory)
	assert.Equal(t, LevelResult{Label: "t-shirt", Confidence: 92}, enriched.ItemCategory)

	// "hoodie" is outside the allowed level-4 set, so the level resolves to
	// the sentinel with zero confidence.
	assert.Equal(t, LevelResult{Label: SentinelLabel, Confidence: 0}, enriched.ItemSubcategory)

	assert.Equal(t, "Shirt, T-Shirt, Cotton T-Shirt, Summer T-Shirt", enriched.SKW)
	assert.Equal(t, "soft cotton t-shirt, casual t-shirt", enriched.DSW)
	assert.Equal(t, "Gender: Unisex women, Unisex men\nColor: White", enriched.AIAttributes)
	assert.Empty(t, enriched.Err)
}

func TestProcess_UnresolvedLevelOneShortCircuitsChain(t *testing.T) {
	completer := &scriptedCompleter{rules: []scriptRule{
		{contains: "Allowed shopping category values:", response: "I cannot decide"},
	}}
	o := newTestOrchestrator(t, completer, Options{}, nil)

	enriched, err := o.Process(context.Background(), Item{Name: "Mystery Item"})
	require.NoError(t, err)

	for _, level := range []LevelResult{
		enriched.ShoppingCategory,
		enriched.ShoppingSubcategory,
		enriched.ItemCategory,
		enriched.ItemSubcategory,
	} {
		assert.Equal(t, SentinelLabel, level.Label)
		assert.Zero(t, level.Confidence)
	}

	// Levels 2-4 must not issue completion calls once level 1 is unresolved.
	assert.Equal(t, 1, completer.levelCalls("shopping category"))
	assert.Zero(t, completer.levelCalls("shopping subcategory"))
	assert.Zero(t, completer.levelCalls("item category"))
	assert.Zero(t, completer.levelCalls("item subcategory"))
}

func TestProcess_SentinelNeverFeedsDependentStages(t *testing.T) {
	completer := &scriptedCompleter{rules: []scriptRule{
		{contains: "Allowed shopping category values:", response: "|confidence:0%"},
		{contains: "Generate 5 shopping keyword phrases", response: "unused"},
	}}
	o := newTestOrchestrator(t, completer, Options{}, nil)

	enriched, err := o.Process(context.Background(), Item{Name: "Mystery Item"})
	require.NoError(t, err)

	assert.Equal(t, SentinelLabel, enriched.ItemCategory.Label)
	// The keyword prompt receives the internal empty label, never the
	// output sentinel.
	assert.NotContains(t, enriched.SKW, SentinelLabel)
	assert.NotContains(t, enriched.DSW, SentinelLabel)
}

func TestProcess_TranslationStage(t *testing.T) {
	completer := &scriptedCompleter{rules: []scriptRule{
		{contains: "Allowed shopping category values:", response: "fashion|confidence:90%"},
		{contains: "English to Arabic translator", response: "قميص قطني"},
	}}
	translator := translate.NewTranslator(observability.Nop(), completer, "aya:8b")
	o := newTestOrchestrator(t, completer, Options{TranslateFields: []string{"Item (EN)", "SKW"}}, translator)

	enriched, err := o.Process(context.Background(), Item{Name: "Cotton T-Shirt"})
	require.NoError(t, err)

	require.NotNil(t, enriched.Translations)
	assert.Equal(t, "قميص قطني", enriched.Translations["Item (EN)"+"_AR"])
	// SKW resolved to the bare product noun, which still translates.
	assert.Contains(t, enriched.Translations, "SKW_AR")
}

func TestProcess_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(t, &scriptedCompleter{}, Options{}, nil)

	_, err := o.Process(ctx, Item{Name: "Cotton T-Shirt"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessBatch_PreservesOrder(t *testing.T) {
	completer := &scriptedCompleter{rules: []scriptRule{
		{contains: "Allowed shopping category values:", response: "fashion|confidence:90%"},
	}}
	o := newTestOrchestrator(t, completer, Options{}, nil)

	items := []Item{
		{Name: "Cotton T-Shirt"},
		{Name: "Running Shoes"},
		{Name: "Silk Dress"},
	}
	results, err := o.ProcessBatch(context.Background(), items, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, item := range items {
		assert.Equal(t, item.Name, results[i].Item.Name)
	}
}

func TestProcessBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(t, &scriptedCompleter{}, Options{}, nil)

	results, err := o.ProcessBatch(ctx, []Item{{Name: "Cotton T-Shirt"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestToOutput(t *testing.T) {
	assert.Equal(t, LevelResult{Label: SentinelLabel}, toOutput(classify.Result{}))
	assert.Equal(t, LevelResult{Label: "fashion", Confidence: 90}, toOutput(classify.Result{Label: "fashion", Confidence: 90}))
}

func TestFailedRecord_AllLevelsSentinel(t *testing.T) {
	record := FailedRecord(Item{Name: "Mystery Item"}, context.DeadlineExceeded)

	for _, level := range []LevelResult{
		record.ShoppingCategory,
		record.ShoppingSubcategory,
		record.ItemCategory,
		record.ItemSubcategory,
	} {
		assert.Equal(t, SentinelLabel, level.Label)
		assert.Zero(t, level.Confidence)
	}
	assert.Equal(t, "Mystery Item", record.Item.Name)
	assert.Equal(t, context.DeadlineExceeded.Error(), record.Err)
}
