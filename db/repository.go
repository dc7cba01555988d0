package db

import (
	"context"
	"fmt"
	"time"
)

// HistoryRecord is one row in the generation_history table. It records
// request metadata only: the prompt text and the generated image are
// deliberately never persisted.
type HistoryRecord struct {
	ID            int64     // Auto-incremented primary key
	RequestID     string    // Unique identifier for tracing a request
	Status        string    // "success", "error", "rejected"
	PromptChars   int       // Prompt length in runes
	Width         int       // Requested output width
	Height        int       // Requested output height
	Steps         int       // Requested denoising steps
	GuidanceScale float64   // Requested guidance strength
	Seed          int64     // Resolved seed (0 when not resolved)
	ModelName     string    // Model identifier
	Device        string    // Execution device
	Precision     string    // Weight precision
	DurationMS    int       // Processing duration in milliseconds
	ErrorMessage  string    // Error detail when Status is not "success"
	CreatedAt     time.Time // Row creation timestamp
}

// Repository provides typed access to the generation_history table.
// When an AsyncWriter is configured, inserts are queued off the request
// path and fall back to synchronous writes if the queue is full.
type Repository struct {
	db          *Database
	asyncWriter *AsyncWriter
}

// NewRepository creates a Repository. asyncWriter may be nil, making all
// writes synchronous.
func NewRepository(database *Database, asyncWriter *AsyncWriter) *Repository {
	return &Repository{
		db:          database,
		asyncWriter: asyncWriter,
	}
}

// asyncInsertOp is the payload queued through the AsyncWriter.
type asyncInsertOp struct {
	query string
	args  []interface{}
}

// CreateAsyncWriteHandler returns the WriteHandler that executes queued
// inserts. Wire it into the AsyncWriter before Start.
func (r *Repository) CreateAsyncWriteHandler() WriteHandler {
	return func(op WriteOperation) error {
		insertOp, ok := op.Data.(asyncInsertOp)
		if !ok {
			return fmt.Errorf("invalid operation type: expected asyncInsertOp")
		}

		_, err := r.db.Exec(insertOp.query, insertOp.args...)
		return err
	}
}

// InsertHistory records one generation request. Queued asynchronously
// when an AsyncWriter is running; the returned ID is 0 for async writes.
func (r *Repository) InsertHistory(ctx context.Context, record HistoryRecord) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	query := `
		INSERT INTO generation_history (
			request_id, status, prompt_chars, width, height, steps,
			guidance_scale, seed, model_name, device, precision,
			duration_ms, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	args := []interface{}{
		record.RequestID,
		record.Status,
		record.PromptChars,
		record.Width,
		record.Height,
		record.Steps,
		record.GuidanceScale,
		record.Seed,
		record.ModelName,
		record.Device,
		record.Precision,
		record.DurationMS,
		record.ErrorMessage,
	}

	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		if r.asyncWriter.Write(asyncInsertOp{query: query, args: args}) {
			return 0, nil
		}
		// Queue full: fall through to a synchronous write
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

const historyColumns = `
	id, request_id, status, prompt_chars, width, height, steps,
	guidance_scale, seed, model_name, device, precision,
	duration_ms, error_message, created_at`

// QueryRecentHistory returns the most recent records, newest first.
func (r *Repository) QueryRecentHistory(ctx context.Context, limit int) ([]HistoryRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if limit <= 0 {
		limit = 10
	}

	query := `SELECT` + historyColumns + `
		FROM generation_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// QueryHistoryByRequestID returns all records for one request ID.
func (r *Repository) QueryHistoryByRequestID(ctx context.Context, requestID string) ([]HistoryRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `SELECT` + historyColumns + `
		FROM generation_history
		WHERE request_id = ?
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// CountHistory returns the total number of history records.
func (r *Repository) CountHistory(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM generation_history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count generation history: %w", err)
	}
	return count, nil
}

// CountHistoryByStatus returns the number of records with the given
// status.
func (r *Repository) CountHistoryByStatus(ctx context.Context, status string) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM generation_history WHERE status = ?", status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count generation history: %w", err)
	}
	return count, nil
}

// PruneHistoryBefore deletes records older than cutoff, returning the
// number of rows removed.
func (r *Repository) PruneHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	result, err := r.db.Exec(
		"DELETE FROM generation_history WHERE created_at < ?",
		cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune generation history: %w", err)
	}

	return result.RowsAffected()
}

// scanHistoryRows reads HistoryRecord rows from a result set.
func scanHistoryRows(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]HistoryRecord, error) {
	var records []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.Status,
			&rec.PromptChars,
			&rec.Width,
			&rec.Height,
			&rec.Steps,
			&rec.GuidanceScale,
			&rec.Seed,
			&rec.ModelName,
			&rec.Device,
			&rec.Precision,
			&rec.DurationMS,
			&rec.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation history row: %w", err)
		}

		// SQLite stores DATETIME as text
		rec.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation history rows: %w", err)
	}

	return records, nil
}
