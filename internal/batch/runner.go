package batch

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/botit-ai/enrichment-engine/internal/observability"
	"github.com/botit-ai/enrichment-engine/internal/pipeline"
	"github.com/botit-ai/enrichment-engine/internal/storage"
)

// Runner drives a batch enrichment run from an input CSV to an output CSV,
// optionally recording progress in the job store.
type Runner struct {
	orchestrator    *pipeline.Orchestrator
	jobs            *storage.JobRepository
	logger          *observability.Logger
	concurrency     int
	translateFields []string
}

// NewRunner creates a batch runner. jobs may be nil when no job store is
// configured.
func NewRunner(logger *observability.Logger, orchestrator *pipeline.Orchestrator, jobs *storage.JobRepository, concurrency int, translateFields []string) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{
		orchestrator:    orchestrator,
		jobs:            jobs,
		logger:          logger,
		concurrency:     concurrency,
		translateFields: translateFields,
	}
}

// Result summarizes a completed batch run.
type Result struct {
	Job        *storage.Job
	Total      int
	Failed     int
	OutputPath string
}

// Run enriches every row of the input CSV and writes the enriched CSV to
// outputPath. Items are processed concurrently up to the runner's limit; a
// failed item yields an error record, never an aborted batch. progress, if
// non-nil, is called once per finished item.
func (r *Runner) Run(ctx context.Context, inputPath, outputPath string, progress func()) (*Result, error) {
	items, err := ReadItemsFile(inputPath)
	if err != nil {
		return nil, err
	}

	job := &storage.Job{
		Source:     inputPath,
		Status:     storage.JobStatusRunning,
		TotalItems: len(items),
	}
	if r.jobs != nil {
		if err := r.jobs.Create(ctx, job); err != nil {
			return nil, err
		}
	}

	r.logger.Info().
		Str("input", inputPath).
		Int("items", len(items)).
		Int("concurrency", r.concurrency).
		Msg("Starting batch enrichment")

	records := make([]pipeline.EnrichedItem, len(items))
	var (
		mu     sync.Mutex
		done   int
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, item := range items {
		i, item := i, item
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.Go(func() error {
			enriched, procErr := r.orchestrator.Process(gctx, item)
			if procErr != nil {
				if gctx.Err() != nil {
					return procErr
				}
				enriched = pipeline.FailedRecord(item, procErr)
			}

			mu.Lock()
			records[i] = enriched
			done++
			if enriched.Err != "" {
				failed++
			}
			doneNow, failedNow := done, failed
			mu.Unlock()

			if progress != nil {
				progress()
			}
			r.recordItem(gctx, job, i, enriched)
			if r.jobs != nil {
				if err := r.jobs.UpdateProgress(gctx, job.ID, doneNow, failedNow); err != nil {
					r.logger.Warn().Err(err).Msg("Job progress update failed")
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.finishJob(job, storage.JobStatusFailed, outputPath)
		return nil, err
	}

	if err := WriteEnrichedFile(outputPath, records, r.translateFields); err != nil {
		r.finishJob(job, storage.JobStatusFailed, outputPath)
		return nil, err
	}
	r.finishJob(job, storage.JobStatusCompleted, outputPath)

	r.logger.Info().
		Str("output", outputPath).
		Int("items", len(items)).
		Int("failed", failed).
		Msg("Batch enrichment finished")

	return &Result{
		Job:        job,
		Total:      len(items),
		Failed:     failed,
		OutputPath: outputPath,
	}, nil
}

func (r *Runner) recordItem(ctx context.Context, job *storage.Job, row int, enriched pipeline.EnrichedItem) {
	if r.jobs == nil {
		return
	}
	payload, err := json.Marshal(enriched)
	if err != nil {
		payload = nil
	}
	item := &storage.JobItem{
		JobID:    job.ID,
		RowIndex: row,
		ItemName: enriched.Item.Name,
		Enriched: string(payload),
		Error:    enriched.Err,
	}
	if err := r.jobs.AddItem(ctx, item); err != nil {
		r.logger.Warn().Err(err).Int("row", row).Msg("Job item record failed")
	}
}

func (r *Runner) finishJob(job *storage.Job, status, outputPath string) {
	if r.jobs == nil {
		return
	}
	// Job finalization must survive run cancellation.
	if err := r.jobs.Finish(context.Background(), job.ID, status, outputPath); err != nil {
		r.logger.Warn().Err(err).Msg("Job finalization failed")
	}
}
