package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/botit-ai/enrichment-engine/internal/batch"
	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/pipeline"
	"github.com/botit-ai/enrichment-engine/internal/storage"
)

// PipelineHandler handles full enrichment pipeline requests.
type PipelineHandler struct {
	logger       *observability.Logger
	orchestrator *pipeline.Orchestrator
	runner       *batch.Runner
	jobs         *storage.JobRepository
	concurrency  int
}

// NewPipelineHandler creates a new pipeline handler. runner and jobs may be
// nil when no job store is configured; CSV endpoints then report 503.
func NewPipelineHandler(logger *observability.Logger, orchestrator *pipeline.Orchestrator, runner *batch.Runner, jobs *storage.JobRepository, concurrency int) *PipelineHandler {
	return &PipelineHandler{
		logger:       logger,
		orchestrator: orchestrator,
		runner:       runner,
		jobs:         jobs,
		concurrency:  concurrency,
	}
}

// ItemRequestDTO is one item to enrich.
type ItemRequestDTO struct {
	ItemName       string   `json:"item_name"`
	Description    string   `json:"description,omitempty"`
	VendorCategory string   `json:"vendor_category,omitempty"`
	VariantName    string   `json:"variant_name,omitempty"`
	ImageURLs      []string `json:"image_urls,omitempty"`
}

// ProcessItem handles POST /pipeline/item.
func (h *PipelineHandler) ProcessItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required", "")
		return
	}

	enriched, err := h.orchestrator.Process(r.Context(), pipeline.Item{
		Name:           req.ItemName,
		Description:    req.Description,
		VendorCategory: req.VendorCategory,
		VariantName:    req.VariantName,
		ImageURLs:      req.ImageURLs,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("item", req.ItemName).Msg("Item enrichment failed")
		writeError(w, http.StatusInternalServerError, "item enrichment failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"enriched_item": enriched,
	})
}

// BatchRequestDTO is a list of items to enrich in one request.
type BatchRequestDTO struct {
	Items []ItemRequestDTO `json:"items"`
}

// ProcessBatch handles POST /pipeline/batch.
func (h *PipelineHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items is required", "")
		return
	}

	items := make([]pipeline.Item, 0, len(req.Items))
	for _, dto := range req.Items {
		items = append(items, pipeline.Item{
			Name:           dto.ItemName,
			Description:    dto.Description,
			VendorCategory: dto.VendorCategory,
			VariantName:    dto.VariantName,
			ImageURLs:      dto.ImageURLs,
		})
	}

	enriched, err := h.orchestrator.ProcessBatch(r.Context(), items, h.concurrency)
	if err != nil {
		h.logger.Error().Err(err).Int("items", len(items)).Msg("Batch enrichment failed")
		writeError(w, http.StatusInternalServerError, "batch enrichment failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"processed_rows": len(enriched),
		"enriched_items": enriched,
	})
}

// CSVRequestDTO points the pipeline at a CSV on the server filesystem.
type CSVRequestDTO struct {
	CSVPath    string `json:"csv_path"`
	OutputPath string `json:"output_path,omitempty"`
}

// ProcessCSV handles POST /pipeline/csv.
func (h *PipelineHandler) ProcessCSV(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "batch runner not configured", "")
		return
	}

	var req CSVRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.CSVPath == "" {
		writeError(w, http.StatusBadRequest, "csv_path is required", "")
		return
	}
	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = strings.TrimSuffix(req.CSVPath, ".csv") + "_enriched.csv"
	}

	result, err := h.runner.Run(r.Context(), req.CSVPath, outputPath, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("input", req.CSVPath).Msg("CSV enrichment failed")
		writeError(w, http.StatusInternalServerError, "csv enrichment failed", err.Error())
		return
	}

	resp := map[string]interface{}{
		"success":        true,
		"output_path":    result.OutputPath,
		"processed_rows": result.Total,
		"failed_rows":    result.Failed,
	}
	if result.Job != nil {
		resp["job_id"] = result.Job.ID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetJob handles GET /jobs/{jobId}.
func (h *PipelineHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "job store not configured", "")
		return
	}

	jobID, err := uuid.Parse(chi.URLParam(r, "jobId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id", err.Error())
		return
	}

	job, err := h.jobs.GetByID(r.Context(), jobID)
	if err == storage.ErrNotFound {
		writeError(w, http.StatusNotFound, "job not found", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Job lookup failed")
		writeError(w, http.StatusInternalServerError, "job lookup failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":              job.ID.String(),
		"source":          job.Source,
		"status":          job.Status,
		"total_items":     job.TotalItems,
		"processed_items": job.ProcessedItems,
		"failed_items":    job.FailedItems,
		"output_path":     job.OutputPath,
		"created_at":      job.CreatedAt,
		"completed_at":    job.CompletedAt,
	})
}
