// Package sdruntime provides CGo bindings for stable-diffusion.cpp.
//
// This file contains the platform-independent wrapper functions. The real
// implementation lives in cgo_bindings_sd.go (build tag "sd"); the default
// build uses the stub in cgo_bindings_stub.go, which loads nothing and
// fails generation with ErrGenerationFailed.
//
// Example build with real library:
//
//	CGO_CFLAGS="-I${SD_CPP_PATH}" \
//	CGO_LDFLAGS="-L${SD_CPP_PATH}/build -lstable-diffusion" \
//	go build -tags sd
package sdruntime

// ModelOptions fixes the attributes of a model context at construction
// time: the target device, the numeric precision the weights are loaded
// with, and the CPU thread budget.
type ModelOptions struct {
	Device    Device
	Precision Precision
	Threads   int
}

// SDContext represents an opaque handle to a loaded diffusion model.
// In the real implementation, this wraps a C pointer to sd_ctx_t.
// The stub implementation uses an internal ID for tracking.
type SDContext struct {
	// id is used for implementation-side tracking
	id uint64
	// modelPath stores the path used to load this context
	modelPath string
	// opts are the construction-time attributes
	opts ModelOptions
	// valid indicates if this context is usable
	valid bool
}

// IsValid returns whether this context is valid and usable.
func (c *SDContext) IsValid() bool {
	if c == nil {
		return false
	}
	return c.valid
}

// ModelPath returns the model path used to create this context.
func (c *SDContext) ModelPath() string {
	if c == nil {
		return ""
	}
	return c.modelPath
}

// Options returns the construction-time attributes of this context.
func (c *SDContext) Options() ModelOptions {
	if c == nil {
		return ModelOptions{}
	}
	return c.opts
}

// GenerateResult holds the result of an image generation operation.
type GenerateResult struct {
	// ImageData contains the encoded PNG image bytes
	ImageData []byte
	// Width of the generated image
	Width int
	// Height of the generated image
	Height int
	// Seed used for generation (randomly resolved when the caller
	// supplied none)
	Seed int64
}

// LoadModel loads a Stable Diffusion model and returns a context for
// generation, attached to opts.Device with opts.Precision weights.
// The modelPath should point to a valid .safetensors or .gguf model file.
//
// Error modes:
//   - ErrModelNotFound: modelPath does not exist
//   - ErrModelLoadFailed: the backend fails to load the model
//
// The returned SDContext must be freed with FreeContext when no longer needed.
func LoadModel(modelPath string, opts ModelOptions) (*SDContext, error) {
	return loadModelImpl(modelPath, opts)
}

// GenerateImage generates an image using the provided context and parameters.
// The context must be valid (created via LoadModel and not yet freed).
// The call blocks for the full duration of inference.
//
// Error modes:
//   - ErrInvalidParams: params fail validation (via ValidateParams)
//   - ErrGenerationFailed: the backend fails to generate
func GenerateImage(ctx *SDContext, params GenerateParams) (*GenerateResult, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	return generateImageImpl(ctx, params)
}

// FreeContext releases resources associated with an SDContext.
// Calling FreeContext on a nil or already-freed context is safe (no-op).
// After calling FreeContext, the context is invalid and must not be used.
func FreeContext(ctx *SDContext) {
	freeContextImpl(ctx)
}

// EnableFlashAttention turns on the fused attention kernel for a context.
// Only meaningful on the CUDA path. Callers treat failure as advisory.
func EnableFlashAttention(ctx *SDContext) error {
	return enableFlashAttentionImpl(ctx)
}

// EnableAttentionSlicing trades speed for lower peak memory by computing
// attention in slices. Used on the CPU path. Callers treat failure as
// advisory.
func EnableAttentionSlicing(ctx *SDContext) error {
	return enableAttentionSlicingImpl(ctx)
}

// SetThreadCount caps the CPU thread budget for a context.
// Zero or negative counts are rejected.
func SetThreadCount(ctx *SDContext, n int) error {
	return setThreadCountImpl(ctx, n)
}

// GetBackendInfo returns information about the available compute backend.
// This can be used to determine if CUDA or CPU is being used.
func GetBackendInfo() string {
	return getBackendInfoImpl()
}
