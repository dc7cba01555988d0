package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vision_backend/sdruntime"
)

func decodeBody(t *testing.T, body string) (*GenerateRequest, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	return DecodeGenerateRequest(req)
}

func TestDecodeGenerateRequest_Defaults(t *testing.T) {
	req, err := decodeBody(t, `{"prompt":"  a red fox  "}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	params := req.ToParams()
	if params.Prompt != "a red fox" {
		t.Errorf("prompt should be trimmed, got %q", params.Prompt)
	}
	if params.Width != sdruntime.DefaultImageSize || params.Height != sdruntime.DefaultImageSize {
		t.Errorf("expected default size %d, got %dx%d",
			sdruntime.DefaultImageSize, params.Width, params.Height)
	}
	if params.Steps != sdruntime.DefaultSteps {
		t.Errorf("expected default steps %d, got %d", sdruntime.DefaultSteps, params.Steps)
	}
	if params.GuidanceScale != sdruntime.DefaultGuidanceScale {
		t.Errorf("expected default guidance %v, got %v",
			sdruntime.DefaultGuidanceScale, params.GuidanceScale)
	}
	if params.HasSeed {
		t.Error("absent seed must not count as explicit")
	}
}

func TestDecodeGenerateRequest_ExplicitFields(t *testing.T) {
	req, err := decodeBody(t, `{
		"prompt": "a red fox",
		"negative_prompt": "blurry",
		"steps": 8,
		"guidance_scale": 7.5,
		"width": 512,
		"height": 768,
		"seed": 12345
	}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	params := req.ToParams()
	if params.NegativePrompt != "blurry" {
		t.Errorf("unexpected negative prompt %q", params.NegativePrompt)
	}
	if params.Steps != 8 || params.GuidanceScale != 7.5 {
		t.Errorf("unexpected steps/guidance %d/%v", params.Steps, params.GuidanceScale)
	}
	if params.Width != 512 || params.Height != 768 {
		t.Errorf("unexpected size %dx%d", params.Width, params.Height)
	}
	if !params.HasSeed || params.Seed != 12345 {
		t.Errorf("expected explicit seed 12345, got HasSeed=%v seed=%d", params.HasSeed, params.Seed)
	}
}

func TestDecodeGenerateRequest_ZeroSeedIsExplicit(t *testing.T) {
	req, err := decodeBody(t, `{"prompt":"a red fox","seed":0}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if params := req.ToParams(); !params.HasSeed || params.Seed != 0 {
		t.Errorf("explicit seed 0 must be preserved, got HasSeed=%v seed=%d", params.HasSeed, params.Seed)
	}
}

func TestDecodeGenerateRequest_NegativeSeedIsExplicit(t *testing.T) {
	req, err := decodeBody(t, `{"prompt":"a red fox","seed":-5}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if params := req.ToParams(); !params.HasSeed || params.Seed != -5 {
		t.Errorf("explicit seed -5 must be preserved, got HasSeed=%v seed=%d", params.HasSeed, params.Seed)
	}
}

func TestDecodeGenerateRequest_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"prompt":`},
		{"unknown field", `{"prompt":"a red fox","scheduler":"ddim"}`},
		{"wrong type", `{"prompt":"a red fox","steps":"four"}`},
		{"trailing data", `{"prompt":"a red fox"}{"extra":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeBody(t, tt.body)
			if err == nil {
				t.Fatal("expected a decode error")
			}
			if !errors.Is(err, sdruntime.ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}
