package main

import (
	"context"

	"github.com/botit-ai/enrichment-engine/internal/attributes"
	"github.com/botit-ai/enrichment-engine/internal/batch"
	"github.com/botit-ai/enrichment-engine/internal/cache"
	"github.com/botit-ai/enrichment-engine/internal/classify"
	"github.com/botit-ai/enrichment-engine/internal/keywords"
	"github.com/botit-ai/enrichment-engine/internal/llm"
	"github.com/botit-ai/enrichment-engine/internal/pipeline"
	"github.com/botit-ai/enrichment-engine/internal/storage"
	"github.com/botit-ai/enrichment-engine/internal/taxonomy"
	"github.com/botit-ai/enrichment-engine/internal/translate"
)

// buildOrchestrator wires the pipeline for CLI runs. The CLI always uses the
// in-memory cache: runs are short-lived and a Redis dependency would only
// slow startup.
func buildOrchestrator() (*pipeline.Orchestrator, *taxonomy.Store, error) {
	store, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		return nil, nil, err
	}

	completer := llm.NewClient(llm.Config{
		URL:       cfg.Completion.URL,
		Model:     cfg.Completion.Model,
		MaxTokens: cfg.Completion.MaxTokens,
		Timeout:   cfg.Completion.Timeout,
	})

	classifier := classify.NewClassifier(logger.WithStage("classify"), store, completer,
		classify.WithCache(cache.NewMemoryClient(cfg.Cache.MaxEntries), cfg.Cache.TTL))

	kw := keywords.NewGenerator(logger.WithStage("keywords"), completer)
	extractor := attributes.NewExtractor(logger.WithStage("attributes"), completer)
	translator := translate.NewTranslator(logger.WithStage("translate"), completer, cfg.Completion.TranslationModel)

	orchestrator := pipeline.NewOrchestrator(logger.WithStage("pipeline"), classifier, kw, extractor, translator,
		pipeline.Options{
			TranslateFields:  cfg.Pipeline.TranslateFields,
			StageConcurrency: cfg.Pipeline.StageConcurrency,
		})

	return orchestrator, store, nil
}

// buildRunner wires the batch runner, with the job store when available.
func buildRunner(ctx context.Context, orchestrator *pipeline.Orchestrator) *batch.Runner {
	var jobs *storage.JobRepository
	if db, err := storage.Open(cfg.DatabaseDSN()); err == nil {
		if err := storage.EnsureSchema(ctx, db); err == nil {
			jobs = storage.NewJobRepository(db)
		} else {
			logger.Warn().Err(err).Msg("Job schema setup failed, running without job store")
		}
	} else {
		logger.Warn().Err(err).Msg("Job store unavailable, running without it")
	}

	return batch.NewRunner(logger.WithStage("batch"), orchestrator, jobs,
		cfg.Pipeline.BatchConcurrency, cfg.Pipeline.TranslateFields)
}
