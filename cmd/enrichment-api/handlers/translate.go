package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/translate"
)

// TranslateHandler handles Arabic translation requests.
type TranslateHandler struct {
	logger     *observability.Logger
	translator *translate.Translator
}

// NewTranslateHandler creates a new translation handler.
func NewTranslateHandler(logger *observability.Logger, translator *translate.Translator) *TranslateHandler {
	return &TranslateHandler{logger: logger, translator: translator}
}

// TranslateRequestDTO is the request body for translation.
type TranslateRequestDTO struct {
	Text string `json:"text"`
}

// Translate handles POST /translate.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required", "")
		return
	}

	translation := h.translator.Translate(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, map[string]string{"translation": translation})
}
