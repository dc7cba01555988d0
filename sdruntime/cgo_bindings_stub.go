//go:build !sd || stub

// Stub implementation of the CGo bindings for when stable-diffusion.cpp
// is not available. Build with: go build (no tags), or -tags stub.
//
// Stub contexts validate the model path and track lifecycle state so the
// pool and pipeline logic is fully testable, but generation fails with
// ErrGenerationFailed.

package sdruntime

import (
	"fmt"
	"os"
	"sync/atomic"
)

// stubContextCounter generates unique IDs for stub contexts
var stubContextCounter uint64

// loadModelImpl is the stub implementation of LoadModel.
// It validates the model path exists but does not actually load a model.
func loadModelImpl(modelPath string, opts ModelOptions) (*SDContext, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to access %s: %v", ErrModelLoadFailed, modelPath, err)
	}

	return &SDContext{
		id:        atomic.AddUint64(&stubContextCounter, 1),
		modelPath: modelPath,
		opts:      opts,
		valid:     true,
	}, nil
}

// generateImageImpl is the stub implementation of GenerateImage.
// It returns an error indicating the real library is not available.
func generateImageImpl(ctx *SDContext, params GenerateParams) (*GenerateResult, error) {
	if ctx == nil || !ctx.valid {
		return nil, fmt.Errorf("%w: context is nil or invalid", ErrGenerationFailed)
	}

	return nil, fmt.Errorf("%w: stable-diffusion.cpp library not available (stub mode). "+
		"Build with CGO and the 'sd' tag to enable image generation", ErrGenerationFailed)
}

// freeContextImpl is the stub implementation of FreeContext.
// It marks the context as invalid.
func freeContextImpl(ctx *SDContext) {
	if ctx == nil {
		return
	}
	ctx.valid = false
}

// enableFlashAttentionImpl always fails in stub mode; the pipeline treats
// optimization failures as advisory.
func enableFlashAttentionImpl(ctx *SDContext) error {
	return fmt.Errorf("flash attention unavailable in stub mode")
}

// enableAttentionSlicingImpl is a no-op in stub mode.
func enableAttentionSlicingImpl(ctx *SDContext) error {
	if ctx == nil || !ctx.valid {
		return fmt.Errorf("context is nil or invalid")
	}
	return nil
}

// setThreadCountImpl validates arguments but has nothing to configure in
// stub mode.
func setThreadCountImpl(ctx *SDContext, n int) error {
	if ctx == nil || !ctx.valid {
		return fmt.Errorf("context is nil or invalid")
	}
	if n <= 0 {
		return fmt.Errorf("thread count must be positive, got %d", n)
	}
	return nil
}

// getBackendInfoImpl returns backend info for stub mode.
func getBackendInfoImpl() string {
	return "stub (no stable-diffusion.cpp library linked)"
}
