// Package imagefeatures aggregates per-image attribute predictions into a
// single feature set using majority voting across images.
package imagefeatures

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/vision"
)

// sentinelValues are prediction values that mean "the model could not tell".
// They are dropped before voting and never win a majority.
var sentinelValues = map[string]struct{}{
	"no":      {},
	"n/a":     {},
	"none":    {},
	"unknown": {},
}

// categorySynonyms maps vendor category names to the coarse categories the
// vision model was trained on.
var categorySynonyms = map[string]string{
	"trousers":   "clothing",
	"pants":      "clothing",
	"jeans":      "clothing",
	"dress":      "clothing",
	"shirt":      "clothing",
	"blouse":     "clothing",
	"skirt":      "clothing",
	"t-shirt":    "clothing",
	"jacket":     "clothing",
	"coat":       "clothing",
	"sweater":    "clothing",
	"shorts":     "clothing",
	"handbag":    "bags",
	"purse":      "bags",
	"backpack":   "bags",
	"wallet":     "bags",
	"sneakers":   "shoes",
	"boots":      "shoes",
	"sandals":    "shoes",
	"heels":      "shoes",
	"flats":      "shoes",
	"watch":      "accessories",
	"belt":       "accessories",
	"scarf":      "accessories",
	"hat":        "accessories",
	"sunglasses": "accessories",
	"necklace":   "jewelry",
	"ring":       "jewelry",
	"bracelet":   "jewelry",
	"earrings":   "jewelry",
}

// Feature is the aggregated result for one attribute.
type Feature struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// VoteDetail records how an attribute's winning value was chosen.
type VoteDetail struct {
	Votes          int      `json:"votes"`
	TotalImages    int      `json:"total_images"`
	VotePercentage float64  `json:"vote_percentage"`
	AllValues      []string `json:"all_values"`
}

// Metadata describes how the aggregate was produced.
type Metadata struct {
	Method            string                `json:"method"`
	NumImages         int                   `json:"num_images"`
	OriginalCategory  string                `json:"original_category"`
	MappedCategory    string                `json:"mapped_category"`
	MissingAttributes []string              `json:"missing_attributes,omitempty"`
	VotingDetails     map[string]VoteDetail `json:"voting_details,omitempty"`
}

// Methods reported in metadata.
const (
	MethodNoImages       = "no_images"
	MethodSingleImage    = "single_image"
	MethodMajorityVoting = "majority_voting"
)

// Aggregator fans one prediction call out per image and folds the results by
// per-attribute majority vote.
type Aggregator struct {
	predictor       vision.Predictor
	perImageTimeout time.Duration
	concurrency     int
	logger          *observability.Logger
}

// NewAggregator creates an image feature aggregator. perImageTimeout bounds
// each vision call; a timed-out image counts as missing, not as an error.
func NewAggregator(logger *observability.Logger, predictor vision.Predictor, perImageTimeout time.Duration, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Aggregator{
		predictor:       predictor,
		perImageTimeout: perImageTimeout,
		concurrency:     concurrency,
		logger:          logger,
	}
}

// MapCategory resolves a category through the synonym map. Unknown
// categories pass through unchanged.
func MapCategory(category string) string {
	if mapped, ok := categorySynonyms[strings.ToLower(strings.TrimSpace(category))]; ok {
		return mapped
	}
	return category
}

// Aggregate predicts the requested attributes for every image and combines
// them. Sentinel values are dropped before voting; an attribute with no
// surviving value across all images is omitted from the result and listed in
// metadata. Image calls run in parallel; a failed or timed-out image is
// treated as missing.
func (a *Aggregator) Aggregate(ctx context.Context, imageURLs []string, description, category string, attributes []string) (map[string]Feature, Metadata, error) {
	mapped := MapCategory(category)
	meta := Metadata{
		NumImages:        len(imageURLs),
		OriginalCategory: category,
		MappedCategory:   mapped,
	}
	if len(imageURLs) == 0 {
		meta.Method = MethodNoImages
		return map[string]Feature{}, meta, nil
	}

	predictions := a.predictAll(ctx, imageURLs, description, mapped, attributes)
	if err := ctx.Err(); err != nil {
		return nil, meta, err
	}

	if len(imageURLs) == 1 {
		meta.Method = MethodSingleImage
		features := make(map[string]Feature)
		for _, attr := range attributes {
			pred, ok := predictions[0][attr]
			if !ok || isSentinel(pred.Value) {
				meta.MissingAttributes = append(meta.MissingAttributes, attr)
				continue
			}
			features[attr] = Feature{Value: pred.Value, Confidence: pred.Confidence}
		}
		return features, meta, nil
	}

	meta.Method = MethodMajorityVoting
	meta.VotingDetails = make(map[string]VoteDetail)
	features := make(map[string]Feature)

	for _, attr := range attributes {
		var values []string
		var confidences []float64
		for _, preds := range predictions {
			pred, ok := preds[attr]
			if !ok || isSentinel(pred.Value) {
				continue
			}
			values = append(values, pred.Value)
			confidences = append(confidences, pred.Confidence)
		}

		if len(values) == 0 {
			meta.MissingAttributes = append(meta.MissingAttributes, attr)
			continue
		}

		winner, votes := majority(values)
		var sum float64
		for i, v := range values {
			if v == winner {
				sum += confidences[i]
			}
		}

		features[attr] = Feature{
			Value:      winner,
			Confidence: sum / float64(votes),
		}
		meta.VotingDetails[attr] = VoteDetail{
			Votes:          votes,
			TotalImages:    len(values),
			VotePercentage: float64(votes) / float64(len(values)) * 100,
			AllValues:      values,
		}
	}

	return features, meta, nil
}

// predictAll issues one vision call per image with a bounded worker pool.
// Results are positionally aligned with imageURLs; a failed image leaves a
// nil entry.
func (a *Aggregator) predictAll(ctx context.Context, imageURLs []string, description, category string, attributes []string) []map[string]vision.Prediction {
	predictions := make([]map[string]vision.Prediction, len(imageURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, url := range imageURLs {
		i, url := i, url
		g.Go(func() error {
			callCtx := gctx
			if a.perImageTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, a.perImageTimeout)
				defer cancel()
			}

			preds, err := a.predictor.Predict(callCtx, url, description, category, attributes)
			if err != nil {
				a.logger.Warn().
					Str("image_url", url).
					Err(err).
					Msg("Vision prediction failed, treating image as missing")
				return nil
			}
			predictions[i] = preds
			return nil
		})
	}

	// Workers never return errors, so Wait only blocks until all are done.
	_ = g.Wait()
	return predictions
}

// majority returns the most frequent value and its count, breaking ties by
// first appearance.
func majority(values []string) (string, int) {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	winner := values[0]
	best := counts[winner]
	for _, v := range values {
		if counts[v] > best {
			winner = v
			best = counts[v]
		}
	}
	return winner, best
}

func isSentinel(value string) bool {
	_, ok := sentinelValues[strings.ToLower(strings.TrimSpace(value))]
	return ok
}
