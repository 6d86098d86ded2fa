package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/botit-ai/enrichment-engine/internal/keywords"
	"github.com/botit-ai/enrichment-engine/internal/observability"
)

// KeywordsHandler handles SKW and DSW generation requests.
type KeywordsHandler struct {
	logger    *observability.Logger
	generator *keywords.Generator
}

// NewKeywordsHandler creates a new keywords handler.
func NewKeywordsHandler(logger *observability.Logger, generator *keywords.Generator) *KeywordsHandler {
	return &KeywordsHandler{logger: logger, generator: generator}
}

// KeywordsRequestDTO is the request body for keyword generation.
type KeywordsRequestDTO struct {
	ItemName     string `json:"item_name"`
	Description  string `json:"description,omitempty"`
	ItemCategory string `json:"item_category,omitempty"`
}

// SKW handles POST /keywords/skw.
func (h *KeywordsHandler) SKW(w http.ResponseWriter, r *http.Request) {
	var req KeywordsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required", "")
		return
	}

	skw := h.generator.GenerateSKW(r.Context(), req.ItemName, req.ItemCategory)
	writeJSON(w, http.StatusOK, map[string]string{"skw": skw})
}

// DSW handles POST /keywords/dsw.
func (h *KeywordsHandler) DSW(w http.ResponseWriter, r *http.Request) {
	var req KeywordsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required", "")
		return
	}

	dsw := h.generator.GenerateDSW(r.Context(), req.ItemName, req.Description, req.ItemCategory)
	writeJSON(w, http.StatusOK, map[string]string{"dsw": dsw})
}
