package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Supported drivers. The DSN selects which one is used.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Open connects to the job database. A DSN starting with "postgres://" uses
// the Postgres driver; anything else is treated as a SQLite path (":memory:"
// included). Queries use $N placeholders, which both drivers accept.
func Open(dsn string) (*sql.DB, error) {
	driver := "sqlite3"
	if len(dsn) >= 11 && dsn[:11] == "postgres://" {
		driver = "postgres"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return db, nil
}

// Schema creates the job tables if they do not exist. Types are chosen to
// work on both SQLite and Postgres.
const Schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	total_items INTEGER NOT NULL DEFAULT 0,
	processed_items INTEGER NOT NULL DEFAULT 0,
	failed_items INTEGER NOT NULL DEFAULT 0,
	output_path TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	completed_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS job_items (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL REFERENCES jobs(id),
	row_index INTEGER NOT NULL,
	item_name TEXT NOT NULL,
	enriched TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_job_items_job_id ON job_items(job_id);
`

// EnsureSchema applies the job schema.
func EnsureSchema(ctx context.Context, db DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

// JobRepository handles job CRUD operations.
type JobRepository struct {
	db DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job.
func (r *JobRepository) Create(ctx context.Context, job *Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = JobStatusPending
	}
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()

	query := `
		INSERT INTO jobs (id, source, status, total_items, processed_items, failed_items, output_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID.String(), job.Source, job.Status, job.TotalItems,
		job.ProcessedItems, job.FailedItems, job.OutputPath,
		job.CreatedAt, job.UpdatedAt,
	)
	return err
}

// GetByID retrieves a job by ID.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	query := `
		SELECT id, source, status, total_items, processed_items, failed_items, output_path, created_at, updated_at, completed_at
		FROM jobs WHERE id = $1
	`
	job := &Job{}
	var rawID string
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &job.Source, &job.Status, &job.TotalItems,
		&job.ProcessedItems, &job.FailedItems, &job.OutputPath,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	job.ID, err = uuid.Parse(rawID)
	return job, err
}

// UpdateProgress updates a running job's counters.
func (r *JobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, processed, failed int) error {
	query := `
		UPDATE jobs SET processed_items = $1, failed_items = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, processed, failed, time.Now(), id.String())
	return err
}

// Finish marks a job completed or failed and stamps completion time.
func (r *JobRepository) Finish(ctx context.Context, id uuid.UUID, status, outputPath string) error {
	now := time.Now()
	query := `
		UPDATE jobs SET status = $1, output_path = $2, updated_at = $3, completed_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, status, outputPath, now, now, id.String())
	return err
}

// MarkRunning transitions a job to the running state.
func (r *JobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, JobStatusRunning, time.Now(), id.String())
	return err
}

// AddItem records one item outcome for a job.
func (r *JobRepository) AddItem(ctx context.Context, item *JobItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()

	query := `
		INSERT INTO job_items (id, job_id, row_index, item_name, enriched, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID.String(), item.JobID.String(), item.RowIndex,
		item.ItemName, item.Enriched, item.Error, item.CreatedAt,
	)
	return err
}

// ListItems returns a job's item records ordered by row.
func (r *JobRepository) ListItems(ctx context.Context, jobID uuid.UUID) ([]*JobItem, error) {
	query := `
		SELECT id, job_id, row_index, item_name, enriched, error, created_at
		FROM job_items
		WHERE job_id = $1
		ORDER BY row_index
	`
	rows, err := r.db.QueryContext(ctx, query, jobID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*JobItem
	for rows.Next() {
		item := &JobItem{}
		var rawID, rawJobID string
		if err := rows.Scan(&rawID, &rawJobID, &item.RowIndex, &item.ItemName, &item.Enriched, &item.Error, &item.CreatedAt); err != nil {
			return nil, err
		}
		if item.ID, err = uuid.Parse(rawID); err != nil {
			return nil, err
		}
		if item.JobID, err = uuid.Parse(rawJobID); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
