package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/botit-ai/enrichment-engine/internal/imagefeatures"
	"github.com/botit-ai/enrichment-engine/internal/observability"
)

// ImagesHandler handles image attribute extraction requests.
type ImagesHandler struct {
	logger            *observability.Logger
	aggregator        *imagefeatures.Aggregator
	defaultAttributes []string
}

// NewImagesHandler creates a new image features handler.
func NewImagesHandler(logger *observability.Logger, aggregator *imagefeatures.Aggregator, defaultAttributes []string) *ImagesHandler {
	return &ImagesHandler{
		logger:            logger,
		aggregator:        aggregator,
		defaultAttributes: defaultAttributes,
	}
}

// ImagesRequestDTO is the request body for image feature extraction.
type ImagesRequestDTO struct {
	ImageURLs   []string `json:"image_urls"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Attributes  []string `json:"attributes,omitempty"`
}

// ImagesResponseDTO is the image feature extraction response.
type ImagesResponseDTO struct {
	Features map[string]imagefeatures.Feature `json:"features"`
	Metadata imagefeatures.Metadata           `json:"metadata"`
}

// Extract handles POST /images/extract.
func (h *ImagesHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ImagesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.ImageURLs) == 0 {
		writeError(w, http.StatusBadRequest, "image_urls is required", "")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required", "")
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required", "")
		return
	}

	attrs := req.Attributes
	if len(attrs) == 0 {
		attrs = h.defaultAttributes
	}

	features, metadata, err := h.aggregator.Aggregate(r.Context(), req.ImageURLs, req.Description, req.Category, attrs)
	if err != nil {
		h.logger.Error().Err(err).Msg("Image feature extraction failed")
		writeError(w, http.StatusInternalServerError, "image feature extraction failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ImagesResponseDTO{Features: features, Metadata: metadata})
}
