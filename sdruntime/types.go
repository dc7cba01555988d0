package sdruntime

import (
	"fmt"
	"unicode/utf8"
)

// GenerateParams holds parameters for image generation.
type GenerateParams struct {
	Prompt         string  // Required: text description of the image to generate
	NegativePrompt string  // Optional: what to avoid in the image
	Width          int     // Image width in pixels (256-1024)
	Height         int     // Image height in pixels (256-1024)
	Steps          int     // Number of inference steps (1-40)
	GuidanceScale  float64 // Classifier-free guidance scale (0.0-20.0)
	Seed           int64   // Seed for reproducible sampling; only meaningful when HasSeed is true
	HasSeed        bool    // True when the caller supplied an explicit seed; false means randomize
}

// Parameter validation constants.
// Bounds are enforced before any pipeline call; out-of-range values are
// rejected, never clamped.
const (
	MinImageSize     = 256
	MaxImageSize     = 1024
	DefaultImageSize = 352

	MinSteps     = 1
	MaxSteps     = 40
	DefaultSteps = 4

	MinGuidanceScale     = 0.0
	MaxGuidanceScale     = 20.0
	DefaultGuidanceScale = 2.5

	MinPromptLength = 3
	MaxPromptLength = 1000
)

// DefaultParams returns default parameters for image generation.
// The caller should at minimum set the Prompt field. No seed is set, so
// generation samples non-deterministically unless the caller provides one.
func DefaultParams() GenerateParams {
	return GenerateParams{
		Width:         DefaultImageSize,
		Height:        DefaultImageSize,
		Steps:         DefaultSteps,
		GuidanceScale: DefaultGuidanceScale,
	}
}

// ValidateParams validates generation parameters and returns an error if invalid.
// This is a pure function with no side effects.
func ValidateParams(p GenerateParams) error {
	if err := ValidatePrompt(p.Prompt); err != nil {
		return err
	}

	if p.Width < MinImageSize || p.Width > MaxImageSize {
		return fmt.Errorf("%w: width %d must be between %d and %d",
			ErrInvalidParams, p.Width, MinImageSize, MaxImageSize)
	}

	if p.Height < MinImageSize || p.Height > MaxImageSize {
		return fmt.Errorf("%w: height %d must be between %d and %d",
			ErrInvalidParams, p.Height, MinImageSize, MaxImageSize)
	}

	if p.Steps < MinSteps || p.Steps > MaxSteps {
		return fmt.Errorf("%w: steps %d must be between %d and %d",
			ErrInvalidParams, p.Steps, MinSteps, MaxSteps)
	}

	if p.GuidanceScale < MinGuidanceScale || p.GuidanceScale > MaxGuidanceScale {
		return fmt.Errorf("%w: guidance scale %.2f must be between %.1f and %.1f",
			ErrInvalidParams, p.GuidanceScale, MinGuidanceScale, MaxGuidanceScale)
	}

	// Negative prompt is optional, but if provided, validate length
	if n := utf8.RuneCountInString(p.NegativePrompt); n > MaxPromptLength {
		return fmt.Errorf("%w: negative prompt length %d exceeds maximum %d",
			ErrInvalidParams, n, MaxPromptLength)
	}

	return nil
}
