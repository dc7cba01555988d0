package db

import (
	"context"
	"testing"
	"time"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	database, err := NewDatabase(testDBPath(t))
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return database
}

func sampleRecord(requestID, status string) HistoryRecord {
	return HistoryRecord{
		RequestID:     requestID,
		Status:        status,
		PromptChars:   24,
		Width:         352,
		Height:        352,
		Steps:         4,
		GuidanceScale: 2.5,
		Seed:          1234,
		ModelName:     "stabilityai/sd-turbo",
		Device:        "cpu",
		Precision:     "fp32",
		DurationMS:    850,
	}
}

func TestRepository_InsertAndQuery(t *testing.T) {
	repo := NewRepository(newTestDatabase(t), nil)
	ctx := context.Background()

	id, err := repo.InsertHistory(ctx, sampleRecord("req-1", "success"))
	if err != nil {
		t.Fatalf("InsertHistory failed: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id for synchronous insert")
	}

	records, err := repo.QueryRecentHistory(ctx, 10)
	if err != nil {
		t.Fatalf("QueryRecentHistory failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.RequestID != "req-1" || rec.Status != "success" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Width != 352 || rec.Steps != 4 || rec.GuidanceScale != 2.5 {
		t.Errorf("parameters not round-tripped: %+v", rec)
	}
	if rec.ModelName != "stabilityai/sd-turbo" || rec.Device != "cpu" || rec.Precision != "fp32" {
		t.Errorf("model attributes not round-tripped: %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected created_at to be populated")
	}
}

func TestRepository_QueryRecentNewestFirst(t *testing.T) {
	repo := NewRepository(newTestDatabase(t), nil)
	ctx := context.Background()

	for _, id := range []string{"req-1", "req-2", "req-3"} {
		if _, err := repo.InsertHistory(ctx, sampleRecord(id, "success")); err != nil {
			t.Fatalf("InsertHistory failed: %v", err)
		}
	}

	records, err := repo.QueryRecentHistory(ctx, 2)
	if err != nil {
		t.Fatalf("QueryRecentHistory failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].RequestID != "req-3" || records[1].RequestID != "req-2" {
		t.Errorf("expected newest first, got %s then %s", records[0].RequestID, records[1].RequestID)
	}
}

func TestRepository_QueryByRequestID(t *testing.T) {
	repo := NewRepository(newTestDatabase(t), nil)
	ctx := context.Background()

	repo.InsertHistory(ctx, sampleRecord("req-a", "success"))
	repo.InsertHistory(ctx, sampleRecord("req-b", "error"))

	records, err := repo.QueryHistoryByRequestID(ctx, "req-b")
	if err != nil {
		t.Fatalf("QueryHistoryByRequestID failed: %v", err)
	}
	if len(records) != 1 || records[0].RequestID != "req-b" {
		t.Errorf("unexpected records: %+v", records)
	}

	records, err = repo.QueryHistoryByRequestID(ctx, "req-missing")
	if err != nil {
		t.Fatalf("QueryHistoryByRequestID failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records for unknown id, got %d", len(records))
	}
}

func TestRepository_Counts(t *testing.T) {
	repo := NewRepository(newTestDatabase(t), nil)
	ctx := context.Background()

	repo.InsertHistory(ctx, sampleRecord("req-1", "success"))
	repo.InsertHistory(ctx, sampleRecord("req-2", "success"))
	rec := sampleRecord("req-3", "error")
	rec.ErrorMessage = "backend failed"
	repo.InsertHistory(ctx, rec)

	total, err := repo.CountHistory(ctx)
	if err != nil {
		t.Fatalf("CountHistory failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 records, got %d", total)
	}

	successes, err := repo.CountHistoryByStatus(ctx, "success")
	if err != nil {
		t.Fatalf("CountHistoryByStatus failed: %v", err)
	}
	if successes != 2 {
		t.Errorf("expected 2 successes, got %d", successes)
	}
}

func TestRepository_AsyncInsert(t *testing.T) {
	database := newTestDatabase(t)
	repo := NewRepository(database, nil)

	writer := NewAsyncWriter(repo.CreateAsyncWriteHandler())
	repo = NewRepository(database, writer)
	writer.Start()

	ctx := context.Background()
	id, err := repo.InsertHistory(ctx, sampleRecord("req-async", "success"))
	if err != nil {
		t.Fatalf("async InsertHistory failed: %v", err)
	}
	if id != 0 {
		t.Errorf("expected id 0 for queued async write, got %d", id)
	}

	// Stop drains the queue, making the write visible.
	writer.Stop()

	records, err := repo.QueryHistoryByRequestID(ctx, "req-async")
	if err != nil {
		t.Fatalf("QueryHistoryByRequestID failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected async write to be persisted, got %d records", len(records))
	}
}

func TestRepository_PruneHistoryBefore(t *testing.T) {
	repo := NewRepository(newTestDatabase(t), nil)
	ctx := context.Background()

	repo.InsertHistory(ctx, sampleRecord("req-old", "success"))

	// Future cutoff removes everything inserted so far.
	pruned, err := repo.PruneHistoryBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneHistoryBefore failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 pruned record, got %d", pruned)
	}

	total, _ := repo.CountHistory(ctx)
	if total != 0 {
		t.Errorf("expected empty table after prune, got %d", total)
	}
}

func TestDatabase_PingAfterClose(t *testing.T) {
	database, err := NewDatabase(testDBPath(t))
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}

	if err := database.Ping(); err != nil {
		t.Errorf("ping on open database failed: %v", err)
	}
	if err := database.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := database.Ping(); err == nil {
		t.Error("expected ping to fail after close")
	}
	// Close is idempotent.
	if err := database.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
