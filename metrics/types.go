// Package metrics provides in-memory metrics for the generation service:
// per-request generation records, aggregated statistics, and GPU telemetry
// for the status dashboard.
//
// This file contains atom-level type definitions with no behavior.
package metrics

import "time"

// GenerationRecord describes one image generation request. Only request
// metadata is tracked; the prompt text and the produced image bytes are
// never stored here.
type GenerationRecord struct {
	// ID is the unique identifier for this generation
	ID string `json:"id"`

	// Status indicates the outcome: "success", "error", "rejected"
	Status string `json:"status"`

	// PromptChars is the prompt length in runes
	PromptChars int `json:"prompt_chars"`

	// Width and Height are the requested output dimensions
	Width  int `json:"width"`
	Height int `json:"height"`

	// Steps is the number of denoising steps requested
	Steps int `json:"steps"`

	// GuidanceScale is the guidance strength requested
	GuidanceScale float64 `json:"guidance_scale"`

	// Seed is the resolved seed for successful generations
	Seed int64 `json:"seed"`

	// Device is the device the generation ran on ("cuda", "cpu")
	Device string `json:"device,omitempty"`

	// StartTime is when the request began processing
	StartTime time.Time `json:"start_time"`

	// EndTime is when processing finished
	EndTime time.Time `json:"end_time,omitempty"`

	// Duration is the total processing time
	Duration time.Duration `json:"duration"`

	// ErrorMsg contains error details if Status is not "success"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// GPUMetrics represents a snapshot of GPU resource utilization.
type GPUMetrics struct {
	// Utilization is the GPU utilization percentage (0-100)
	Utilization float64 `json:"utilization"`

	// Temperature is the GPU temperature in Celsius
	Temperature float64 `json:"temperature"`

	// MemoryTotal is the total GPU memory in bytes
	MemoryTotal int64 `json:"memory_total"`

	// MemoryUsed is the GPU memory currently in use (bytes)
	MemoryUsed int64 `json:"memory_used"`

	// MemoryFree is the available GPU memory (bytes)
	MemoryFree int64 `json:"memory_free"`
}

// SystemStatus represents overall service health for the status endpoint.
type SystemStatus struct {
	// Health indicates the service state: "running", "error"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// PipelineState is the generation pipeline lifecycle state
	PipelineState string `json:"pipeline_state"`

	// Model is the configured model identifier
	Model string `json:"model"`

	// Device is the selected execution device, empty before first init
	Device string `json:"device,omitempty"`

	// Uptime is the duration since the service started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of this status snapshot
	LastCheck time.Time `json:"last_check"`
}

// GenerationStats represents aggregated generation statistics.
type GenerationStats struct {
	// TotalProcessed is the total number of generation requests recorded
	TotalProcessed int64 `json:"total_processed"`

	// TotalSuccess is the count of successful generations
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of failed generations
	TotalErrors int64 `json:"total_errors"`

	// TotalRejected is the count of requests rejected during validation
	TotalRejected int64 `json:"total_rejected"`

	// SuccessRate is the percentage of successful generations (0-100),
	// over non-rejected requests
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the average duration of successful generations
	AvgDuration time.Duration `json:"avg_duration"`
}

// Status constants for GenerationRecord
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusRejected = "rejected"
)

// Health constants for SystemStatus
const (
	SystemHealthRunning = "running"
	SystemHealthError   = "error"
)
