// Package storage provides database models and repositories for batch
// enrichment jobs.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// Job statuses.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job tracks one batch enrichment run.
type Job struct {
	ID             uuid.UUID
	Source         string // input file path or "api"
	Status         string
	TotalItems     int
	ProcessedItems int
	FailedItems    int
	OutputPath     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

// JobItem records the per-item outcome within a job. Enriched holds the
// serialized output record; Error is set when the item failed.
type JobItem struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	RowIndex  int
	ItemName  string
	Enriched  string
	Error     string
	CreatedAt time.Time
}
