// Package metrics provides the Collector interface for aggregating
// generation and GPU metrics. This is a molecule composing the atom-level
// types from types.go.
package metrics

// Collector defines the interface for recording and querying service
// metrics. Implementations must be safe for concurrent use and return
// zero values for unavailable metrics.
type Collector interface {
	// RecordGeneration logs one completed (or failed) generation request.
	RecordGeneration(record GenerationRecord)

	// GetGenerationStats returns aggregated generation statistics.
	GetGenerationStats() GenerationStats

	// GetRecentGenerations returns up to limit most-recent records,
	// newest first.
	GetRecentGenerations(limit int) []GenerationRecord

	// UpdateGPUMetrics records the latest GPU telemetry snapshot.
	UpdateGPUMetrics(gpu GPUMetrics)

	// GetGPUMetrics returns the latest GPU telemetry snapshot.
	GetGPUMetrics() GPUMetrics

	// GetSystemStatus returns the overall service health.
	GetSystemStatus() SystemStatus
}
