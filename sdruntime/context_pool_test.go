package sdruntime

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestPool(t *testing.T, maxSize int) *ContextPool {
	t.Helper()
	pool, err := NewContextPool(maxSize, writeModelFile(t), ModelOptions{
		Device:    DeviceCPU,
		Precision: PrecisionFP32,
	}, nil)
	if err != nil {
		t.Fatalf("NewContextPool failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestNewContextPool_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := NewContextPool(size, "model.gguf", ModelOptions{}, nil); err == nil {
			t.Errorf("expected error for pool size %d", size)
		}
	}
}

func TestContextPool_LazyCreation(t *testing.T) {
	pool := newTestPool(t, 2)

	if pool.Created() != 0 {
		t.Fatalf("expected no contexts before first acquire, got %d", pool.Created())
	}

	pc, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if pool.Created() != 1 {
		t.Errorf("expected 1 created context, got %d", pool.Created())
	}

	pool.Release(pc)
	if pool.Size() != 1 {
		t.Errorf("expected 1 idle context after release, got %d", pool.Size())
	}
}

func TestContextPool_ReusesReleasedContext(t *testing.T) {
	pool := newTestPool(t, 2)

	pc1, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	pool.Release(pc1)

	pc2, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	defer pool.Release(pc2)

	if pool.Created() != 1 {
		t.Errorf("expected released context to be reused, created = %d", pool.Created())
	}
}

func TestContextPool_AcquireTimeout(t *testing.T) {
	pool := newTestPool(t, 1)

	pc, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer pool.Release(pc)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = pool.Acquire(ctx)
	if !errors.Is(err, ErrAcquireTimeout) {
		t.Errorf("expected ErrAcquireTimeout, got: %v", err)
	}
}

func TestContextPool_WaitingAcquireGetsReleasedContext(t *testing.T) {
	pool := newTestPool(t, 1)

	pc, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		pc2, err := pool.Acquire(ctx)
		if err == nil {
			pool.Release(pc2)
		}
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	pool.Release(pc)

	if err := <-done; err != nil {
		t.Errorf("waiting Acquire failed after release: %v", err)
	}
}

func TestContextPool_LoadFailureReleasesSlot(t *testing.T) {
	pool, err := NewContextPool(1, "/nonexistent/model.gguf", ModelOptions{
		Device:    DeviceCPU,
		Precision: PrecisionFP32,
	}, nil)
	if err != nil {
		t.Fatalf("NewContextPool failed: %v", err)
	}
	defer pool.Close()

	_, err = pool.Acquire(context.Background())
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got: %v", err)
	}

	// The failed slot must be returned so a retry can attempt again.
	if pool.Created() != 0 {
		t.Errorf("expected created count back to 0 after failed load, got %d", pool.Created())
	}
	_, err = pool.Acquire(context.Background())
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected retry to attempt load again, got: %v", err)
	}
}

func TestContextPool_OnCreateHookRuns(t *testing.T) {
	var hookCalls int
	pool, err := NewContextPool(1, writeModelFile(t), ModelOptions{
		Device:    DeviceCPU,
		Precision: PrecisionFP32,
	}, func(ctx *SDContext) {
		if ctx == nil || !ctx.IsValid() {
			t.Error("onCreate received an invalid context")
		}
		hookCalls++
	})
	if err != nil {
		t.Fatalf("NewContextPool failed: %v", err)
	}
	defer pool.Close()

	pc, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	pool.Release(pc)

	// Reuse must not re-run the hook.
	pc, err = pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	pool.Release(pc)

	if hookCalls != 1 {
		t.Errorf("expected onCreate to run once, ran %d times", hookCalls)
	}
}

func TestContextPool_WarmUp(t *testing.T) {
	pool := newTestPool(t, 1)

	if err := pool.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp failed: %v", err)
	}
	if pool.Created() != 1 {
		t.Errorf("expected 1 context after warm-up, got %d", pool.Created())
	}
	if pool.Size() != 1 {
		t.Errorf("expected warmed context to be idle, size = %d", pool.Size())
	}
}

func TestContextPool_WarmUp_MissingModel(t *testing.T) {
	pool, err := NewContextPool(1, "/nonexistent/model.gguf", ModelOptions{}, nil)
	if err != nil {
		t.Fatalf("NewContextPool failed: %v", err)
	}
	defer pool.Close()

	if err := pool.WarmUp(context.Background()); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got: %v", err)
	}
}

func TestContextPool_Generate_InvalidParams(t *testing.T) {
	pool := newTestPool(t, 1)

	params := DefaultParams()
	params.Prompt = "ok" // below minimum length
	params.Steps = 0

	_, err := pool.Generate(context.Background(), params)
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got: %v", err)
	}
	if pool.Created() != 0 {
		t.Errorf("validation failure must not create contexts, created = %d", pool.Created())
	}
}

func TestContextPool_Generate_StubBackendFails(t *testing.T) {
	pool := newTestPool(t, 1)

	params := DefaultParams()
	params.Prompt = "a lighthouse in fog"

	_, err := pool.Generate(context.Background(), params)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed from stub backend, got: %v", err)
	}
}

func TestContextPool_Close(t *testing.T) {
	pool := newTestPool(t, 1)

	pc, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !pool.IsClosed() {
		t.Error("expected pool to report closed")
	}

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrContextPoolClosed) {
		t.Errorf("expected ErrContextPoolClosed, got: %v", err)
	}

	// Releasing into a closed pool frees the context.
	pool.Release(pc)
	if pc.IsValid() {
		t.Error("expected context released into closed pool to be freed")
	}

	// Idempotent.
	if err := pool.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
