// Package metrics: MetricsStore is the in-memory storage organism backing
// the status and history endpoints. It composes a circular buffer of
// GenerationRecord atoms with running aggregates, guarded by a RWMutex.
package metrics

import (
	"sync"
	"time"
)

// MetricsStore is a thread-safe in-memory store implementing Collector.
//
// Usage:
//
//	store := NewMetricsStore(DefaultStoreConfig(), time.Now())
//	store.RecordGeneration(record)
//	stats := store.GetGenerationStats()
type MetricsStore struct {
	mu sync.RWMutex

	// Generation history (circular buffer)
	history  []GenerationRecord
	histCap  int
	histHead int // write index
	histSize int

	// Running aggregates
	totalProcessed int64
	totalSuccess   int64
	totalErrors    int64
	totalRejected  int64
	successDur     time.Duration // sum of successful generation durations

	// GPU metrics (latest snapshot)
	gpuMetrics GPUMetrics

	// Pipeline introspection, pushed by the server layer
	pipelineState string
	model         string
	device        string

	// System metadata
	startTime time.Time
	version   string
}

// StoreConfig configures the MetricsStore.
type StoreConfig struct {
	// HistoryCapacity is the maximum number of records retained
	HistoryCapacity int
	// Version is the application version string
	Version string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		HistoryCapacity: 100,
		Version:         "0.0.0",
	}
}

// NewMetricsStore creates a MetricsStore. startTime is used to calculate
// uptime; a non-positive history capacity falls back to the default.
func NewMetricsStore(config StoreConfig, startTime time.Time) *MetricsStore {
	capacity := config.HistoryCapacity
	if capacity < 1 {
		capacity = 100
	}

	return &MetricsStore{
		history:       make([]GenerationRecord, capacity),
		histCap:       capacity,
		pipelineState: "uninitialized",
		startTime:     startTime,
		version:       config.Version,
	}
}

// RecordGeneration logs one generation request outcome.
func (s *MetricsStore) RecordGeneration(record GenerationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[s.histHead] = record
	s.histHead = (s.histHead + 1) % s.histCap
	if s.histSize < s.histCap {
		s.histSize++
	}

	s.totalProcessed++
	switch record.Status {
	case StatusSuccess:
		s.totalSuccess++
		s.successDur += record.Duration
	case StatusError:
		s.totalErrors++
	case StatusRejected:
		s.totalRejected++
	}
}

// GetGenerationStats returns aggregated statistics.
func (s *MetricsStore) GetGenerationStats() GenerationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := GenerationStats{
		TotalProcessed: s.totalProcessed,
		TotalSuccess:   s.totalSuccess,
		TotalErrors:    s.totalErrors,
		TotalRejected:  s.totalRejected,
	}

	attempted := s.totalSuccess + s.totalErrors
	if attempted > 0 {
		stats.SuccessRate = float64(s.totalSuccess) / float64(attempted) * 100
	}
	if s.totalSuccess > 0 {
		stats.AvgDuration = s.successDur / time.Duration(s.totalSuccess)
	}

	return stats
}

// GetRecentGenerations returns up to limit records, newest first.
func (s *MetricsStore) GetRecentGenerations(limit int) []GenerationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.histSize == 0 {
		return []GenerationRecord{}
	}
	if limit > s.histSize {
		limit = s.histSize
	}

	result := make([]GenerationRecord, limit)
	for i := 0; i < limit; i++ {
		// Walk backwards from the write head: newest first
		idx := (s.histHead - 1 - i + s.histCap) % s.histCap
		result[i] = s.history[idx]
	}
	return result
}

// UpdateGPUMetrics records the latest GPU telemetry snapshot.
func (s *MetricsStore) UpdateGPUMetrics(gpu GPUMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gpuMetrics = gpu
}

// GetGPUMetrics returns the latest GPU telemetry snapshot.
func (s *MetricsStore) GetGPUMetrics() GPUMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gpuMetrics
}

// SetPipelineInfo updates the pipeline introspection fields reported by
// GetSystemStatus. The server layer pushes these after state changes.
func (s *MetricsStore) SetPipelineInfo(state, model, device string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelineState = state
	s.model = model
	s.device = device
}

// GetSystemStatus returns the overall service health.
func (s *MetricsStore) GetSystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	health := SystemHealthRunning
	if s.pipelineState == "failed" {
		health = SystemHealthError
	}

	return SystemStatus{
		Health:        health,
		Version:       s.version,
		PipelineState: s.pipelineState,
		Model:         s.model,
		Device:        s.device,
		Uptime:        time.Since(s.startTime),
		LastCheck:     time.Now(),
	}
}

// Verify MetricsStore implements the Collector interface
var _ Collector = (*MetricsStore)(nil)
