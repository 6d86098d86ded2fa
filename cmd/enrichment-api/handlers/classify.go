package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botit-ai/enrichment-engine/internal/classify"
	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/taxonomy"
)

// ClassifyHandler handles taxonomy classification requests.
type ClassifyHandler struct {
	logger     *observability.Logger
	classifier *classify.Classifier
	store      *taxonomy.Store
}

// NewClassifyHandler creates a new classification handler.
func NewClassifyHandler(logger *observability.Logger, classifier *classify.Classifier, store *taxonomy.Store) *ClassifyHandler {
	return &ClassifyHandler{logger: logger, classifier: classifier, store: store}
}

// ClassifyRequestDTO is the request body for a single-level classification.
type ClassifyRequestDTO struct {
	ItemName       string   `json:"item_name"`
	Description    string   `json:"description,omitempty"`
	VendorCategory string   `json:"vendor_category,omitempty"`
	Ancestors      []string `json:"ancestors,omitempty"`
}

// ClassifyResponseDTO is the single-level classification response.
type ClassifyResponseDTO struct {
	Level      string `json:"level"`
	Label      string `json:"label"`
	Confidence int    `json:"confidence"`
}

// levelNames maps URL segments to taxonomy levels.
var levelNames = map[string]taxonomy.Level{
	"shopping-category":    taxonomy.LevelShoppingCategory,
	"shopping-subcategory": taxonomy.LevelShoppingSubcategory,
	"item-category":        taxonomy.LevelItemCategory,
	"item-subcategory":     taxonomy.LevelItemSubcategory,
}

// ClassifyLevel handles POST /classify/{level}.
func (h *ClassifyHandler) ClassifyLevel(w http.ResponseWriter, r *http.Request) {
	levelName := chi.URLParam(r, "level")
	level, ok := levelNames[levelName]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown classification level", levelName)
		return
	}

	var req ClassifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required", "")
		return
	}
	if len(req.Ancestors) != int(level)-1 {
		writeError(w, http.StatusBadRequest, "wrong number of ancestors for level", levelName)
		return
	}

	item := classify.Item{
		Name:           req.ItemName,
		Description:    req.Description,
		VendorCategory: req.VendorCategory,
	}
	result := h.classifier.Classify(r.Context(), level, item, req.Ancestors...)

	writeJSON(w, http.StatusOK, ClassifyResponseDTO{
		Level:      level.Name(),
		Label:      result.Label,
		Confidence: result.Confidence,
	})
}

// ClassifyAllResponseDTO is the full-chain classification response.
type ClassifyAllResponseDTO struct {
	ShoppingCategory    ClassifyResponseDTO `json:"shopping_category"`
	ShoppingSubcategory ClassifyResponseDTO `json:"shopping_subcategory"`
	ItemCategory        ClassifyResponseDTO `json:"item_category"`
	ItemSubcategory     ClassifyResponseDTO `json:"item_subcategory"`
}

// ClassifyAll handles POST /classify: the full four-level chain. The first
// unresolved level short-circuits the levels below it.
func (h *ClassifyHandler) ClassifyAll(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required", "")
		return
	}

	ctx := r.Context()
	item := classify.Item{
		Name:           req.ItemName,
		Description:    req.Description,
		VendorCategory: req.VendorCategory,
	}

	l1 := h.classifier.Classify(ctx, taxonomy.LevelShoppingCategory, item)
	l2 := h.classifier.Classify(ctx, taxonomy.LevelShoppingSubcategory, item, l1.Label)
	l3 := h.classifier.Classify(ctx, taxonomy.LevelItemCategory, item, l1.Label, l2.Label)
	l4 := h.classifier.Classify(ctx, taxonomy.LevelItemSubcategory, item, l1.Label, l2.Label, l3.Label)

	writeJSON(w, http.StatusOK, ClassifyAllResponseDTO{
		ShoppingCategory:    toDTO(taxonomy.LevelShoppingCategory, l1),
		ShoppingSubcategory: toDTO(taxonomy.LevelShoppingSubcategory, l2),
		ItemCategory:        toDTO(taxonomy.LevelItemCategory, l3),
		ItemSubcategory:     toDTO(taxonomy.LevelItemSubcategory, l4),
	})
}

// Taxonomy handles GET /taxonomy: the level-1 categories and their subtree.
func (h *ClassifyHandler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	categories := h.store.Categories()
	tree := make(map[string][]string, len(categories))
	for _, cat := range categories {
		if subs, ok := h.store.Subcategories(cat); ok {
			tree[cat] = subs
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories":    categories,
		"subcategories": tree,
	})
}

func toDTO(level taxonomy.Level, result classify.Result) ClassifyResponseDTO {
	return ClassifyResponseDTO{
		Level:      level.Name(),
		Label:      result.Label,
		Confidence: result.Confidence,
	}
}
