package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"vision_backend/sdruntime"
)

// maxRequestBody bounds the /generate request body. Prompts cap at 1000
// runes, so 64 KiB is generous even with every optional field present.
const maxRequestBody = 64 * 1024

// GenerateRequest is the JSON body accepted by POST /generate.
// Optional numeric fields are pointers so "absent" and "zero" stay
// distinguishable; absent fields get defaults, present fields are
// validated against the documented bounds and rejected, never clamped.
type GenerateRequest struct {
	Prompt         string   `json:"prompt"`
	NegativePrompt string   `json:"negative_prompt,omitempty"`
	Steps          *int     `json:"steps,omitempty"`
	GuidanceScale  *float64 `json:"guidance_scale,omitempty"`
	Width          *int     `json:"width,omitempty"`
	Height         *int     `json:"height,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
}

// DecodeGenerateRequest reads and parses a /generate body.
// Unknown fields and trailing garbage are rejected so schema violations
// surface as 422s instead of being silently ignored.
func DecodeGenerateRequest(r *http.Request) (*GenerateRequest, error) {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req GenerateRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", sdruntime.ErrInvalidParams, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected trailing data", sdruntime.ErrInvalidParams)
	}
	// Drain so keep-alive connections can be reused.
	io.Copy(io.Discard, body)

	return &req, nil
}

// ToParams converts the request to generation parameters, applying
// defaults for absent fields.
func (r *GenerateRequest) ToParams() sdruntime.GenerateParams {
	params := sdruntime.DefaultParams()
	params.Prompt = sdruntime.SanitizePrompt(r.Prompt)
	params.NegativePrompt = r.NegativePrompt

	if r.Steps != nil {
		params.Steps = *r.Steps
	}
	if r.GuidanceScale != nil {
		params.GuidanceScale = *r.GuidanceScale
	}
	if r.Width != nil {
		params.Width = *r.Width
	}
	if r.Height != nil {
		params.Height = *r.Height
	}
	if r.Seed != nil {
		params.Seed = *r.Seed
		params.HasSeed = true
	}

	return params
}
