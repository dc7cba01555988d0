package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// GenerationMetrics captures what one image generation cost and produced.
// Implements zapcore.ObjectMarshaler so it can be logged as a nested
// object rather than a flat field soup.
//
// Example:
//
//	metrics := GenerationMetrics{
//		Model:         "stabilityai/sd-turbo",
//		Device:        "cuda",
//		Precision:     "fp16",
//		Width:         352,
//		Height:        352,
//		Steps:         4,
//		GuidanceScale: 2.5,
//		Seed:          1234,
//		Duration:      800 * time.Millisecond,
//	}
//	logger.Info("generation complete", zap.Object("generation", metrics))
type GenerationMetrics struct {
	// Model identifies which diffusion model produced the image
	Model string `json:"model"`

	// Device is the execution device ("cuda" or "cpu")
	Device string `json:"device"`

	// Precision is the numeric precision of the loaded weights
	Precision string `json:"precision"`

	// Width and Height are the output dimensions in pixels
	Width  int `json:"width"`
	Height int `json:"height"`

	// Steps is the number of denoising steps performed
	Steps int `json:"steps"`

	// GuidanceScale is the classifier-free guidance strength used
	GuidanceScale float64 `json:"guidance_scale"`

	// Seed is the resolved RNG seed (after random-seed resolution)
	Seed int64 `json:"seed"`

	// PromptChars is the length of the prompt in runes. The prompt text
	// itself is never logged.
	PromptChars int `json:"prompt_chars"`

	// Duration is the wall-clock time of the generation
	Duration time.Duration `json:"duration"`

	// OutputBytes is the size of the encoded PNG
	OutputBytes int `json:"output_bytes"`
}

// StepsPerSecond returns the denoising throughput, or 0 for a zero
// duration.
func (m GenerationMetrics) StepsPerSecond() float64 {
	secs := m.Duration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(m.Steps) / secs
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
// Duration is encoded in milliseconds for readability.
func (m GenerationMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("model", m.Model)
	enc.AddString("device", m.Device)
	enc.AddString("precision", m.Precision)
	enc.AddInt("width", m.Width)
	enc.AddInt("height", m.Height)
	enc.AddInt("steps", m.Steps)
	enc.AddFloat64("guidance_scale", m.GuidanceScale)
	enc.AddInt64("seed", m.Seed)
	enc.AddInt("prompt_chars", m.PromptChars)
	enc.AddInt64("duration_ms", m.Duration.Milliseconds())
	enc.AddFloat64("steps_per_second", m.StepsPerSecond())
	enc.AddInt("output_bytes", m.OutputBytes)
	return nil
}
