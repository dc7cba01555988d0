package sdruntime

import (
	"os"
	"strconv"
	"time"
)

// SDConfig holds configuration for the Stable Diffusion pipeline.
type SDConfig struct {
	// Model configuration
	ModelID   string // Model identifier reported to clients
	ModelPath string // Path to the local weights file

	// Execution configuration
	Device  Device // Target device; empty means auto-detect at first use
	Threads int    // CPU threads for non-GPU work (0 = runtime default)

	// Image generation defaults
	ImageSize      int     // Default image size (256-1024)
	InferenceSteps int     // Default inference steps (1-40)
	GuidanceScale  float64 // Default guidance scale (0.0-20.0)
	NegativePrompt string  // Default negative prompt

	// Runtime configuration
	Timeout       time.Duration // Generation timeout
	MaxConcurrent int           // Maximum concurrent generations
}

// Default configuration values
const (
	DefaultTimeoutSeconds = 300
	DefaultMaxConcurrent  = 1
	DefaultModelID        = "stabilityai/sd-turbo"
)

// LoadSDConfig loads pipeline configuration from environment variables.
// Invalid values fall back to defaults; the per-request bounds in
// ValidateParams remain the authority at generation time.
func LoadSDConfig() *SDConfig {
	var device Device
	if d, ok := ParseDevice(os.Getenv("SD_DEVICE")); ok {
		device = d
	}

	return &SDConfig{
		ModelID:        envOrDefault("SD_MODEL_IMAGE", DefaultModelID),
		ModelPath:      os.Getenv("SD_MODEL_PATH"),
		Device:         device,
		Threads:        parseThreads(os.Getenv("SD_THREADS")),
		ImageSize:      parseImageSize(os.Getenv("SD_IMAGE_SIZE")),
		InferenceSteps: parseInferenceSteps(os.Getenv("SD_INFERENCE_STEPS")),
		GuidanceScale:  parseGuidanceScale(os.Getenv("SD_GUIDANCE_SCALE")),
		NegativePrompt: os.Getenv("SD_NEGATIVE_PROMPT"),
		Timeout:        parseTimeout(os.Getenv("SD_TIMEOUT_SECONDS")),
		MaxConcurrent:  parseMaxConcurrent(os.Getenv("SD_MAX_CONCURRENT")),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseImageSize parses and validates the default image size from string.
// Returns the default if invalid, out of range, or empty.
func parseImageSize(s string) int {
	if s == "" {
		return DefaultImageSize
	}

	size, err := strconv.Atoi(s)
	if err != nil {
		return DefaultImageSize
	}

	if size < MinImageSize || size > MaxImageSize {
		return DefaultImageSize
	}
	return size
}

// parseInferenceSteps parses and validates inference steps from string.
// Returns the default if invalid or out of range.
func parseInferenceSteps(s string) int {
	if s == "" {
		return DefaultSteps
	}

	steps, err := strconv.Atoi(s)
	if err != nil {
		return DefaultSteps
	}

	if steps < MinSteps || steps > MaxSteps {
		return DefaultSteps
	}
	return steps
}

// parseGuidanceScale parses and validates the guidance scale from string.
// Returns the default if invalid or out of range.
func parseGuidanceScale(s string) float64 {
	if s == "" {
		return DefaultGuidanceScale
	}

	scale, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return DefaultGuidanceScale
	}

	if scale < MinGuidanceScale || scale > MaxGuidanceScale {
		return DefaultGuidanceScale
	}
	return scale
}

// parseThreads parses the CPU thread count. Zero means let the runtime
// decide; negative counts are treated as unset.
func parseThreads(s string) int {
	if s == "" {
		return 0
	}

	threads, err := strconv.Atoi(s)
	if err != nil || threads < 0 {
		return 0
	}
	return threads
}

// parseTimeout parses timeout in seconds from string.
// Returns the default if invalid.
func parseTimeout(s string) time.Duration {
	if s == "" {
		return time.Duration(DefaultTimeoutSeconds) * time.Second
	}

	seconds, err := strconv.Atoi(s)
	if err != nil || seconds <= 0 {
		return time.Duration(DefaultTimeoutSeconds) * time.Second
	}

	return time.Duration(seconds) * time.Second
}

// parseMaxConcurrent parses max concurrent generations from string.
// Returns the default if invalid.
func parseMaxConcurrent(s string) int {
	if s == "" {
		return DefaultMaxConcurrent
	}

	concurrent, err := strconv.Atoi(s)
	if err != nil || concurrent < 1 {
		return DefaultMaxConcurrent
	}

	return concurrent
}
