// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/botit-ai/enrichment-engine/cmd/enrichment-api/handlers"
	"github.com/botit-ai/enrichment-engine/cmd/enrichment-api/middleware"
	"github.com/botit-ai/enrichment-engine/internal/attributes"
	"github.com/botit-ai/enrichment-engine/internal/batch"
	"github.com/botit-ai/enrichment-engine/internal/classify"
	"github.com/botit-ai/enrichment-engine/internal/config"
	"github.com/botit-ai/enrichment-engine/internal/imagefeatures"
	"github.com/botit-ai/enrichment-engine/internal/keywords"
	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/pipeline"
	"github.com/botit-ai/enrichment-engine/internal/storage"
	"github.com/botit-ai/enrichment-engine/internal/taxonomy"
	"github.com/botit-ai/enrichment-engine/internal/translate"
	"github.com/botit-ai/enrichment-engine/internal/vision"
)

// Services holds the wired pipeline stages shared by all handlers.
type Services struct {
	Store        *taxonomy.Store
	Classifier   *classify.Classifier
	Keywords     *keywords.Generator
	Attributes   *attributes.Extractor
	Translator   *translate.Translator
	Aggregator   *imagefeatures.Aggregator
	Orchestrator *pipeline.Orchestrator
	Runner       *batch.Runner
	Jobs         *storage.JobRepository
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, svc *Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"enrichment-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	// Initialize handlers
	classifyHandler := handlers.NewClassifyHandler(logger, svc.Classifier, svc.Store)
	keywordsHandler := handlers.NewKeywordsHandler(logger, svc.Keywords)
	attributesHandler := handlers.NewAttributesHandler(logger, svc.Attributes)
	translateHandler := handlers.NewTranslateHandler(logger, svc.Translator)
	imagesHandler := handlers.NewImagesHandler(logger, svc.Aggregator, cfg.Vision.Attributes)
	pipelineHandler := handlers.NewPipelineHandler(logger, svc.Orchestrator, svc.Runner, svc.Jobs, cfg.Pipeline.BatchConcurrency)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/taxonomy", classifyHandler.Taxonomy)

		r.Route("/classify", func(r chi.Router) {
			r.Post("/", classifyHandler.ClassifyAll)
			r.Post("/{level}", classifyHandler.ClassifyLevel)
		})

		r.Route("/keywords", func(r chi.Router) {
			r.Post("/skw", keywordsHandler.SKW)
			r.Post("/dsw", keywordsHandler.DSW)
		})

		r.Post("/attributes", attributesHandler.Extract)
		r.Post("/translate", translateHandler.Translate)
		r.Post("/images/extract", imagesHandler.Extract)

		r.Route("/pipeline", func(r chi.Router) {
			r.Post("/item", pipelineHandler.ProcessItem)
			r.Post("/batch", pipelineHandler.ProcessBatch)
			r.Post("/csv", pipelineHandler.ProcessCSV)
		})

		r.Get("/jobs/{jobId}", pipelineHandler.GetJob)
	})

	return r
}

// BuildServices wires the pipeline stages from configuration.
func BuildServices(logger *observability.Logger, cfg *config.Config) (*Services, error) {
	store, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		return nil, err
	}

	completer := llmClient(cfg)

	cacheClient := buildCache(logger, cfg)
	classifier := classify.NewClassifier(logger.WithStage("classify"), store, completer,
		classify.WithCache(cacheClient, cfg.Cache.TTL))

	kw := keywords.NewGenerator(logger.WithStage("keywords"), completer)
	extractor := attributes.NewExtractor(logger.WithStage("attributes"), completer)
	translator := translate.NewTranslator(logger.WithStage("translate"), completer, cfg.Completion.TranslationModel)

	visionClient := vision.NewClient(vision.Config{
		URL:     cfg.Vision.URL,
		Timeout: cfg.Vision.Timeout,
	})
	aggregator := imagefeatures.NewAggregator(logger.WithStage("images"), visionClient,
		cfg.Vision.PerImageTimeout, cfg.Pipeline.StageConcurrency)

	orchestrator := pipeline.NewOrchestrator(logger.WithStage("pipeline"), classifier, kw, extractor, translator,
		pipeline.Options{
			TranslateFields:  cfg.Pipeline.TranslateFields,
			StageConcurrency: cfg.Pipeline.StageConcurrency,
		})

	svc := &Services{
		Store:        store,
		Classifier:   classifier,
		Keywords:     kw,
		Attributes:   extractor,
		Translator:   translator,
		Aggregator:   aggregator,
		Orchestrator: orchestrator,
	}

	jobs, err := buildJobStore(logger, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Job store unavailable, CSV jobs will not be persisted")
	} else {
		svc.Jobs = jobs
	}
	svc.Runner = batch.NewRunner(logger.WithStage("batch"), orchestrator, svc.Jobs,
		cfg.Pipeline.BatchConcurrency, cfg.Pipeline.TranslateFields)

	return svc, nil
}
