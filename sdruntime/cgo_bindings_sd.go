//go:build sd && cgo && !stub

// Real CGo implementation of stable-diffusion.cpp bindings.
// Build with: CGO_ENABLED=1 go build -tags sd
//
// Prerequisites:
//  1. stable-diffusion.cpp compiled as a shared library
//  2. CGO_CFLAGS pointing at the header: -I/path/to/stable-diffusion.cpp
//  3. CGO_LDFLAGS linking the library: -L/path/to/build -lstable-diffusion

package sdruntime

/*
#cgo CFLAGS: -I${SRCDIR}/../vendor/stable-diffusion.cpp
#cgo LDFLAGS: -L${SRCDIR}/../vendor/stable-diffusion.cpp/build -lstable-diffusion

// NOTE: The actual header include is commented out until the library is
// vendored. When stable-diffusion.cpp is integrated, uncomment:
//
// #include <stable-diffusion.h>

#include <stdlib.h>
#include <stdint.h>

// Placeholder type definition - replaced by stable-diffusion.h when vendored
typedef void* sd_ctx_t;

// Library functions used once the header is available:
//
// extern sd_ctx_t* sd_ctx_create(const char* model_path, int n_threads,
//                                int use_fp16, int on_gpu);
// extern void sd_ctx_free(sd_ctx_t* ctx);
// extern uint8_t* txt2img(sd_ctx_t* ctx, const char* prompt, const char* negative_prompt,
//                         int width, int height, int steps, float cfg_scale, int64_t seed);
// extern void sd_free_image(uint8_t* img);
// extern int sd_set_flash_attention(sd_ctx_t* ctx, int enabled);
// extern int sd_set_attention_slicing(sd_ctx_t* ctx, int enabled);
// extern int sd_set_n_threads(sd_ctx_t* ctx, int n);
// extern const char* sd_get_backend_info();
*/
import "C"

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"
)

// cgoContext holds the C context pointer alongside Go metadata
type cgoContext struct {
	cCtx *C.sd_ctx_t
}

// contextMap stores the mapping from SDContext.id to cgoContext
var contextMap sync.Map

// loadModelImpl is the real CGo implementation of LoadModel.
func loadModelImpl(modelPath string, opts ModelOptions) (*SDContext, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to access %s: %v", ErrModelLoadFailed, modelPath, err)
	}

	cModelPath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cModelPath))

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	// TODO: switch to C.sd_ctx_create once stable-diffusion.cpp is vendored:
	//
	// useFP16 := 0
	// if opts.Precision == PrecisionFP16 { useFP16 = 1 }
	// onGPU := 0
	// if opts.Device == DeviceCUDA { onGPU = 1 }
	// cCtx := C.sd_ctx_create(cModelPath, C.int(threads), C.int(useFP16), C.int(onGPU))
	// if cCtx == nil {
	//     return nil, fmt.Errorf("%w: C library returned null context", ErrModelLoadFailed)
	// }
	// id := atomic.AddUint64(&sdContextCounter, 1)
	// contextMap.Store(id, &cgoContext{cCtx: cCtx})
	// return &SDContext{id: id, modelPath: modelPath, opts: opts, valid: true}, nil

	_ = threads
	return nil, fmt.Errorf("%w: stable-diffusion.cpp CGo bindings not yet wired. "+
		"Library header integration pending", ErrModelLoadFailed)
}

// generateImageImpl is the real CGo implementation of GenerateImage.
func generateImageImpl(ctx *SDContext, params GenerateParams) (*GenerateResult, error) {
	if ctx == nil || !ctx.valid {
		return nil, fmt.Errorf("%w: context is nil or invalid", ErrGenerationFailed)
	}

	v, ok := contextMap.Load(ctx.id)
	if !ok {
		return nil, fmt.Errorf("%w: no C context found for id %d", ErrGenerationFailed, ctx.id)
	}
	cgoCtx := v.(*cgoContext)
	if cgoCtx == nil || cgoCtx.cCtx == nil {
		return nil, fmt.Errorf("%w: C context is nil", ErrGenerationFailed)
	}

	cPrompt := C.CString(params.Prompt)
	defer C.free(unsafe.Pointer(cPrompt))

	cNegPrompt := C.CString(params.NegativePrompt)
	defer C.free(unsafe.Pointer(cNegPrompt))

	// TODO: call C.txt2img once stable-diffusion.cpp is vendored. The raw
	// RGBA buffer returned by the library goes through EncodeToPNG; the C
	// buffer is freed with C.sd_free_image after the copy.
	return nil, fmt.Errorf("%w: stable-diffusion.cpp CGo bindings not yet wired", ErrGenerationFailed)
}

// freeContextImpl is the real CGo implementation of FreeContext.
func freeContextImpl(ctx *SDContext) {
	if ctx == nil || !ctx.valid {
		return
	}

	if v, ok := contextMap.LoadAndDelete(ctx.id); ok {
		if cgoCtx, ok := v.(*cgoContext); ok && cgoCtx.cCtx != nil {
			// TODO: C.sd_ctx_free(cgoCtx.cCtx) once the library is vendored
			cgoCtx.cCtx = nil
		}
	}
	ctx.valid = false
}

func enableFlashAttentionImpl(ctx *SDContext) error {
	if ctx == nil || !ctx.valid {
		return fmt.Errorf("context is nil or invalid")
	}
	// TODO: C.sd_set_flash_attention once the library is vendored
	return fmt.Errorf("flash attention not yet wired")
}

func enableAttentionSlicingImpl(ctx *SDContext) error {
	if ctx == nil || !ctx.valid {
		return fmt.Errorf("context is nil or invalid")
	}
	// TODO: C.sd_set_attention_slicing once the library is vendored
	return nil
}

func setThreadCountImpl(ctx *SDContext, n int) error {
	if ctx == nil || !ctx.valid {
		return fmt.Errorf("context is nil or invalid")
	}
	if n <= 0 {
		return fmt.Errorf("thread count must be positive, got %d", n)
	}
	// TODO: C.sd_set_n_threads once the library is vendored
	return nil
}

// getBackendInfoImpl returns backend info for the real build.
func getBackendInfoImpl() string {
	// TODO: query C.sd_get_backend_info once the library is vendored
	return "stable-diffusion.cpp (header integration pending)"
}
