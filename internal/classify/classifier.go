// Package classify implements the four-level taxonomy classifiers. Each
// level builds a prompt constrained to the allowed child set of the validated
// parent path, invokes the completion service once, parses the
// label|confidence contract, and validates the label against the closed
// vocabulary. Failures of any kind degrade to the empty result.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/botit-ai/enrichment-engine/internal/cache"
	"github.com/botit-ai/enrichment-engine/internal/llm"
	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/taxonomy"
)

// Item carries the classifier inputs for one product record.
type Item struct {
	Name           string
	Description    string
	VendorCategory string
}

// Result is the validated outcome of one level classification. A non-empty
// label is guaranteed to be a member of the allowed set for the call's
// parent path; an empty label always carries zero confidence.
type Result struct {
	Label      string `json:"label"`
	Confidence int    `json:"confidence"`
}

// IsZero reports whether the level failed to resolve.
func (r Result) IsZero() bool {
	return r.Label == ""
}

// Classifier resolves one taxonomy level per call against the immutable
// taxonomy store.
type Classifier struct {
	store     *taxonomy.Store
	completer llm.Completer
	cache     cache.Client
	cacheTTL  time.Duration
	logger    *observability.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCache enables caching of validated non-empty results.
func WithCache(client cache.Client, ttl time.Duration) Option {
	return func(c *Classifier) {
		c.cache = client
		c.cacheTTL = ttl
	}
}

// NewClassifier creates a classifier over the given taxonomy store and
// completion client.
func NewClassifier(logger *observability.Logger, store *taxonomy.Store, completer llm.Completer, opts ...Option) *Classifier {
	c := &Classifier{
		store:     store,
		completer: completer,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify resolves one taxonomy level for an item. For levels above 1 every
// ancestor label must be non-empty and valid at its own level; otherwise the
// call short-circuits to the empty result without invoking the completion
// service.
func (c *Classifier) Classify(ctx context.Context, level taxonomy.Level, item Item, ancestors ...string) Result {
	if level < taxonomy.LevelShoppingCategory || level > taxonomy.LevelItemSubcategory {
		return Result{}
	}
	if len(ancestors) != int(level)-1 {
		return Result{}
	}
	for _, ancestor := range ancestors {
		if strings.TrimSpace(ancestor) == "" {
			return Result{}
		}
	}

	allowed, ok := c.store.AllowedSet(level, ancestors...)
	if !ok {
		return Result{}
	}

	cacheKey := c.cacheKey(level, item, ancestors)
	if cached, ok := c.cachedResult(ctx, cacheKey); ok {
		return cached
	}

	prompt := buildPrompt(level, item, ancestors, allowed)

	raw, err := c.completer.Complete(ctx, llm.CompletionRequest{Prompt: prompt})
	if err != nil {
		c.logger.Warn().
			Str("level", level.Name()).
			Str("item", item.Name).
			Str("error_kind", string(llm.KindOf(err))).
			Err(err).
			Msg("Classification call failed")
		return Result{}
	}

	label, confidence := ParseLabelConfidence(raw)
	if !memberOf(allowed, label) {
		c.logger.Debug().
			Str("level", level.Name()).
			Str("item", item.Name).
			Str("label", label).
			Msg("Label rejected: not in allowed set")
		return Result{}
	}

	result := Result{Label: label, Confidence: confidence}
	c.storeResult(ctx, cacheKey, result)
	return result
}

// memberOf checks case-insensitive membership of label in the allowed set.
func memberOf(allowed []string, label string) bool {
	if label == "" {
		return false
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, label) {
			return true
		}
	}
	return false
}

func (c *Classifier) cacheKey(level taxonomy.Level, item Item, ancestors []string) string {
	return fmt.Sprintf("classify:%d:%s|%s|%s",
		int(level),
		strings.ToLower(strings.TrimSpace(item.Name)),
		strings.ToLower(strings.TrimSpace(item.VendorCategory)),
		strings.Join(ancestors, ">"),
	)
}

func (c *Classifier) cachedResult(ctx context.Context, key string) (Result, bool) {
	if c.cache == nil {
		return Result{}, false
	}
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("Classification cache read failed")
		}
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (c *Classifier) storeResult(ctx context.Context, key string, result Result) {
	if c.cache == nil || result.IsZero() {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn().Err(err).Msg("Classification cache write failed")
	}
}
