package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/botit-ai/enrichment-engine/internal/attributes"
	"github.com/botit-ai/enrichment-engine/internal/observability"
)

// AttributesHandler handles attribute extraction requests.
type AttributesHandler struct {
	logger    *observability.Logger
	extractor *attributes.Extractor
}

// NewAttributesHandler creates a new attributes handler.
func NewAttributesHandler(logger *observability.Logger, extractor *attributes.Extractor) *AttributesHandler {
	return &AttributesHandler{logger: logger, extractor: extractor}
}

// AttributesRequestDTO is the request body for attribute extraction.
type AttributesRequestDTO struct {
	ItemName            string `json:"item_name"`
	Description         string `json:"description,omitempty"`
	VendorCategory      string `json:"vendor_category,omitempty"`
	ShoppingCategory    string `json:"shopping_category,omitempty"`
	ShoppingSubcategory string `json:"shopping_subcategory,omitempty"`
	ItemCategory        string `json:"item_category,omitempty"`
}

// Extract handles POST /attributes.
func (h *AttributesHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req AttributesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required", "")
		return
	}

	result := h.extractor.Extract(r.Context(),
		req.ItemName, req.Description, req.VendorCategory,
		req.ShoppingCategory, req.ShoppingSubcategory, req.ItemCategory,
	)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ai_attributes": result,
		"fields":        attributes.FieldNames,
	})
}
