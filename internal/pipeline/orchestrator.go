// Package pipeline orchestrates the full enrichment flow for one item: the
// four-level taxonomy chain, then keywords and attribute extraction, then
// optional field translation.
package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/botit-ai/enrichment-engine/internal/attributes"
	"github.com/botit-ai/enrichment-engine/internal/classify"
	"github.com/botit-ai/enrichment-engine/internal/keywords"
	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/taxonomy"
	"github.com/botit-ai/enrichment-engine/internal/translate"
)

// SentinelLabel replaces an unresolved taxonomy label in output records.
// It exists only at the output boundary: internally an unresolved level is
// always the empty string, and dependent stages key off the empty string,
// never off this value.
const SentinelLabel = "template"

// Item is one input record to enrich.
type Item struct {
	Name           string   `json:"item_name"`
	Description    string   `json:"description"`
	VendorCategory string   `json:"vendor_category"`
	VariantName    string   `json:"variant_name,omitempty"`
	ImageURLs      []string `json:"image_urls,omitempty"`
}

// LevelResult is one taxonomy level in the output record. An unresolved
// level carries the sentinel label and zero confidence.
type LevelResult struct {
	Label      string `json:"label"`
	Confidence int    `json:"confidence"`
}

// EnrichedItem is the per-item output record.
type EnrichedItem struct {
	Item Item `json:"item"`

	ShoppingCategory    LevelResult `json:"shopping_category"`
	ShoppingSubcategory LevelResult `json:"shopping_subcategory"`
	ItemCategory        LevelResult `json:"item_category"`
	ItemSubcategory     LevelResult `json:"item_subcategory"`

	SKW          string `json:"skw"`
	DSW          string `json:"dsw"`
	AIAttributes string `json:"ai_attributes"`

	Translations map[string]string `json:"translations,omitempty"`

	// Err records a per-item processing failure in batch mode. The record
	// is still emitted with sentinel taxonomy fields.
	Err string `json:"error,omitempty"`
}

// Options controls optional pipeline stages.
type Options struct {
	// TranslateFields names output fields to translate to Arabic, e.g.
	// "Item (EN)" or "SKW". Empty means no translation stage.
	TranslateFields []string
	// StageConcurrency bounds the concurrent SKW/DSW/attribute calls per
	// item. Zero means all three run concurrently.
	StageConcurrency int
}

// Orchestrator runs the enrichment pipeline.
type Orchestrator struct {
	classifier *classify.Classifier
	keywords   *keywords.Generator
	attributes *attributes.Extractor
	translator *translate.Translator
	logger     *observability.Logger
	opts       Options
}

// NewOrchestrator wires the pipeline stages together. translator may be nil
// when no translation stage is configured.
func NewOrchestrator(
	logger *observability.Logger,
	classifier *classify.Classifier,
	kw *keywords.Generator,
	extractor *attributes.Extractor,
	translator *translate.Translator,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		keywords:   kw,
		attributes: extractor,
		translator: translator,
		logger:     logger,
		opts:       opts,
	}
}

// Process enriches a single item. Taxonomy levels run strictly in order;
// the first unresolved level short-circuits the rest of the chain. SKW, DSW,
// and attribute extraction then run concurrently off the level-3 result.
// Stage failures degrade to empty or sentinel fields, never to an error;
// the only returned error is context cancellation.
func (o *Orchestrator) Process(ctx context.Context, item Item) (EnrichedItem, error) {
	classifyItem := classify.Item{
		Name:           item.Name,
		Description:    item.Description,
		VendorCategory: item.VendorCategory,
	}

	// Internal labels: empty string means unresolved. The chain stops
	// issuing calls at the first empty label because the classifier's
	// ancestor precondition short-circuits.
	l1 := o.classifier.Classify(ctx, taxonomy.LevelShoppingCategory, classifyItem)
	l2 := o.classifier.Classify(ctx, taxonomy.LevelShoppingSubcategory, classifyItem, l1.Label)
	l3 := o.classifier.Classify(ctx, taxonomy.LevelItemCategory, classifyItem, l1.Label, l2.Label)
	l4 := o.classifier.Classify(ctx, taxonomy.LevelItemSubcategory, classifyItem, l1.Label, l2.Label, l3.Label)

	if err := ctx.Err(); err != nil {
		return EnrichedItem{}, err
	}

	enriched := EnrichedItem{
		Item:                item,
		ShoppingCategory:    toOutput(l1),
		ShoppingSubcategory: toOutput(l2),
		ItemCategory:        toOutput(l3),
		ItemSubcategory:     toOutput(l4),
	}

	// SKW, DSW, and attributes depend only on the level-3 label and are
	// independent of each other. Dependent stages receive the internal
	// empty label, not the sentinel.
	g, gctx := errgroup.WithContext(ctx)
	if o.opts.StageConcurrency > 0 {
		g.SetLimit(o.opts.StageConcurrency)
	}
	g.Go(func() error {
		enriched.SKW = o.keywords.GenerateSKW(gctx, item.Name, l3.Label)
		return nil
	})
	g.Go(func() error {
		enriched.DSW = o.keywords.GenerateDSW(gctx, item.Name, item.Description, l3.Label)
		return nil
	})
	g.Go(func() error {
		enriched.AIAttributes = o.attributes.Extract(gctx, item.Name, item.Description, item.VendorCategory, l1.Label, l2.Label, l3.Label)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return EnrichedItem{}, err
	}

	if o.translator != nil && len(o.opts.TranslateFields) > 0 {
		enriched.Translations = o.translator.TranslateFields(ctx, enriched.fieldMap(), o.opts.TranslateFields)
	}

	return enriched, nil
}

// ProcessBatch enriches items independently up to the given concurrency.
// One item's failure never aborts the batch: its record carries the error
// and sentinel taxonomy fields. Output order matches input order. The batch
// stops early only on context cancellation, between items.
func (o *Orchestrator) ProcessBatch(ctx context.Context, items []Item, concurrency int) ([]EnrichedItem, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]EnrichedItem, len(items))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		i, item := i, item
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.Go(func() error {
			enriched, err := o.Process(gctx, item)
			if err != nil {
				// Cancellation aside, Process absorbs stage failures, so an
				// error here still yields one output record for the item.
				enriched = FailedRecord(item, err)
				o.logger.Error().
					Int("row", i).
					Str("item", item.Name).
					Err(err).
					Msg("Item enrichment failed")
			}
			mu.Lock()
			results[i] = enriched
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// fieldMap exposes the record's translatable fields by output column name.
func (e *EnrichedItem) fieldMap() map[string]string {
	return map[string]string{
		"Item (EN)":            e.Item.Name,
		"Description (EN)":     e.Item.Description,
		"Shopping Category":    e.ShoppingCategory.Label,
		"Shopping Subcategory": e.ShoppingSubcategory.Label,
		"Item Category":        e.ItemCategory.Label,
		"Item Subcategory":     e.ItemSubcategory.Label,
		"SKW":                  e.SKW,
		"DSW":                  e.DSW,
		"AI_Attributes":        e.AIAttributes,
	}
}

// toOutput converts an internal classification result to its output form,
// substituting the sentinel for an unresolved label.
func toOutput(r classify.Result) LevelResult {
	if r.IsZero() {
		return LevelResult{Label: SentinelLabel, Confidence: 0}
	}
	return LevelResult{Label: r.Label, Confidence: r.Confidence}
}

// FailedRecord builds the output record for an item whose processing failed
// outright. All taxonomy fields carry the sentinel.
func FailedRecord(item Item, err error) EnrichedItem {
	sentinel := LevelResult{Label: SentinelLabel}
	return EnrichedItem{
		Item:                item,
		ShoppingCategory:    sentinel,
		ShoppingSubcategory: sentinel,
		ItemCategory:        sentinel,
		ItemSubcategory:     sentinel,
		Err:                 err.Error(),
	}
}
