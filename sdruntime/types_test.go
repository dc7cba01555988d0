package sdruntime

import (
	"errors"
	"testing"
)

func validParams() GenerateParams {
	return GenerateParams{
		Prompt:         "a red ball on wet sand at golden hour",
		NegativePrompt: "blurry, lowres",
		Width:          352,
		Height:         352,
		Steps:          4,
		GuidanceScale:  2.5,
		Seed:           12345,
	}
}

func TestValidateParams_ValidInput(t *testing.T) {
	if err := ValidateParams(validParams()); err != nil {
		t.Errorf("expected no error for valid params, got: %v", err)
	}
}

func TestValidateParams_BoundaryValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerateParams)
	}{
		{"min width and height", func(p *GenerateParams) { p.Width = 256; p.Height = 256 }},
		{"max width and height", func(p *GenerateParams) { p.Width = 1024; p.Height = 1024 }},
		{"min steps", func(p *GenerateParams) { p.Steps = 1 }},
		{"max steps", func(p *GenerateParams) { p.Steps = 40 }},
		{"zero guidance", func(p *GenerateParams) { p.GuidanceScale = 0.0 }},
		{"max guidance", func(p *GenerateParams) { p.GuidanceScale = 20.0 }},
		{"negative explicit seed", func(p *GenerateParams) { p.Seed = -1; p.HasSeed = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			if err := ValidateParams(params); err != nil {
				t.Errorf("expected boundary value to be accepted, got: %v", err)
			}
		})
	}
}

func TestValidateParams_InvalidWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
	}{
		{"too small", 100},
		{"just under minimum", 255},
		{"too large", 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			params.Width = tt.width

			err := ValidateParams(params)
			if err == nil {
				t.Fatalf("expected error for width %d", tt.width)
			}
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got: %v", err)
			}
		})
	}
}

func TestValidateParams_InvalidHeight(t *testing.T) {
	tests := []struct {
		name   string
		height int
	}{
		{"too small", 128},
		{"too large", 1025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			params.Height = tt.height

			err := ValidateParams(params)
			if err == nil {
				t.Fatalf("expected error for height %d", tt.height)
			}
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got: %v", err)
			}
		})
	}
}

func TestValidateParams_InvalidSteps(t *testing.T) {
	tests := []struct {
		name  string
		steps int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too many", 41},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			params.Steps = tt.steps

			err := ValidateParams(params)
			if err == nil {
				t.Fatalf("expected error for steps %d", tt.steps)
			}
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got: %v", err)
			}
		})
	}
}

func TestValidateParams_InvalidGuidanceScale(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
	}{
		{"negative", -0.1},
		{"too large", 20.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			params.GuidanceScale = tt.scale

			err := ValidateParams(params)
			if err == nil {
				t.Fatalf("expected error for guidance scale %v", tt.scale)
			}
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got: %v", err)
			}
		})
	}
}

func TestValidateParams_NegativePromptTooLong(t *testing.T) {
	params := validParams()
	long := make([]byte, MaxPromptLength+1)
	for i := range long {
		long[i] = 'x'
	}
	params.NegativePrompt = string(long)

	err := ValidateParams(params)
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got: %v", err)
	}
}

func TestDefaultParams(t *testing.T) {
	params := DefaultParams()

	if params.Width != DefaultImageSize || params.Height != DefaultImageSize {
		t.Errorf("expected %dx%d default size, got %dx%d",
			DefaultImageSize, DefaultImageSize, params.Width, params.Height)
	}
	if params.Steps != DefaultSteps {
		t.Errorf("expected %d default steps, got %d", DefaultSteps, params.Steps)
	}
	if params.GuidanceScale != DefaultGuidanceScale {
		t.Errorf("expected %v default guidance, got %v", DefaultGuidanceScale, params.GuidanceScale)
	}
	if params.HasSeed {
		t.Error("defaults must not carry an explicit seed")
	}
}
