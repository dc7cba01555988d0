package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func successRecord(id string, dur time.Duration) GenerationRecord {
	return GenerationRecord{
		ID:            id,
		Status:        StatusSuccess,
		PromptChars:   20,
		Width:         352,
		Height:        352,
		Steps:         4,
		GuidanceScale: 2.5,
		Seed:          7,
		Device:        "cpu",
		StartTime:     time.Now().Add(-dur),
		EndTime:       time.Now(),
		Duration:      dur,
	}
}

func TestMetricsStore_RecordAndStats(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	store.RecordGeneration(successRecord("a", 2*time.Second))
	store.RecordGeneration(successRecord("b", 4*time.Second))
	store.RecordGeneration(GenerationRecord{ID: "c", Status: StatusError, ErrorMsg: "backend failed"})
	store.RecordGeneration(GenerationRecord{ID: "d", Status: StatusRejected, ErrorMsg: "steps out of range"})

	stats := store.GetGenerationStats()
	if stats.TotalProcessed != 4 {
		t.Errorf("expected 4 processed, got %d", stats.TotalProcessed)
	}
	if stats.TotalSuccess != 2 {
		t.Errorf("expected 2 successes, got %d", stats.TotalSuccess)
	}
	if stats.TotalErrors != 1 {
		t.Errorf("expected 1 error, got %d", stats.TotalErrors)
	}
	if stats.TotalRejected != 1 {
		t.Errorf("expected 1 rejected, got %d", stats.TotalRejected)
	}
	// 2 of 3 attempted (rejected requests don't count against the rate)
	if stats.SuccessRate < 66.6 || stats.SuccessRate > 66.7 {
		t.Errorf("expected ~66.67%% success rate, got %v", stats.SuccessRate)
	}
	if stats.AvgDuration != 3*time.Second {
		t.Errorf("expected 3s avg duration, got %v", stats.AvgDuration)
	}
}

func TestMetricsStore_EmptyStats(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	stats := store.GetGenerationStats()
	if stats.TotalProcessed != 0 || stats.SuccessRate != 0 || stats.AvgDuration != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if got := store.GetRecentGenerations(10); len(got) != 0 {
		t.Errorf("expected empty history, got %d records", len(got))
	}
}

func TestMetricsStore_RecentNewestFirst(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	for i := 0; i < 5; i++ {
		store.RecordGeneration(successRecord(fmt.Sprintf("gen-%d", i), time.Second))
	}

	recent := store.GetRecentGenerations(3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}
	want := []string{"gen-4", "gen-3", "gen-2"}
	for i, w := range want {
		if recent[i].ID != w {
			t.Errorf("position %d: expected %s, got %s", i, w, recent[i].ID)
		}
	}
}

func TestMetricsStore_CircularBufferWraps(t *testing.T) {
	store := NewMetricsStore(StoreConfig{HistoryCapacity: 3, Version: "test"}, time.Now())

	for i := 0; i < 5; i++ {
		store.RecordGeneration(successRecord(fmt.Sprintf("gen-%d", i), time.Second))
	}

	recent := store.GetRecentGenerations(10)
	if len(recent) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(recent))
	}
	if recent[0].ID != "gen-4" || recent[2].ID != "gen-2" {
		t.Errorf("unexpected retained window: %v, %v, %v", recent[0].ID, recent[1].ID, recent[2].ID)
	}

	// Aggregates keep counting past the buffer cap.
	if stats := store.GetGenerationStats(); stats.TotalProcessed != 5 {
		t.Errorf("expected 5 processed, got %d", stats.TotalProcessed)
	}
}

func TestMetricsStore_GPUMetrics(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	gpu := GPUMetrics{
		Utilization: 80,
		Temperature: 70,
		MemoryTotal: 8 << 30,
		MemoryUsed:  4 << 30,
		MemoryFree:  4 << 30,
	}
	store.UpdateGPUMetrics(gpu)

	if got := store.GetGPUMetrics(); got != gpu {
		t.Errorf("expected %+v, got %+v", gpu, got)
	}
}

func TestMetricsStore_SystemStatus(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	store := NewMetricsStore(StoreConfig{HistoryCapacity: 10, Version: "1.2.3"}, start)

	status := store.GetSystemStatus()
	if status.Health != SystemHealthRunning {
		t.Errorf("expected running health, got %q", status.Health)
	}
	if status.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", status.Version)
	}
	if status.PipelineState != "uninitialized" {
		t.Errorf("expected uninitialized pipeline state, got %q", status.PipelineState)
	}
	if status.Uptime < time.Minute {
		t.Errorf("expected uptime >= 1m, got %v", status.Uptime)
	}

	store.SetPipelineInfo("ready", "stabilityai/sd-turbo", "cuda")
	status = store.GetSystemStatus()
	if status.PipelineState != "ready" || status.Model != "stabilityai/sd-turbo" || status.Device != "cuda" {
		t.Errorf("unexpected pipeline info: %+v", status)
	}

	store.SetPipelineInfo("failed", "stabilityai/sd-turbo", "")
	if status = store.GetSystemStatus(); status.Health != SystemHealthError {
		t.Errorf("expected error health when pipeline failed, got %q", status.Health)
	}
}

func TestMetricsStore_ConcurrentAccess(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.RecordGeneration(successRecord(fmt.Sprintf("gen-%d", i), time.Second))
		}(i)
		go func() {
			defer wg.Done()
			store.GetGenerationStats()
			store.GetRecentGenerations(5)
		}()
	}
	wg.Wait()

	if stats := store.GetGenerationStats(); stats.TotalProcessed != 10 {
		t.Errorf("expected 10 processed, got %d", stats.TotalProcessed)
	}
}
