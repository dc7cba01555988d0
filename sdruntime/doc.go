// Package sdruntime provides local text-to-image generation backed by
// stable-diffusion.cpp.
//
// The package owns the full inference-request lifecycle below the HTTP
// layer: parameter validation, lazy pipeline initialization with
// device-aware precision selection, bounded concurrent inference, and
// PNG encoding of results.
//
// # Public API
//
// The primary entry point is the Pipeline:
//
//	cfg := sdruntime.LoadSDConfig()
//	pipe := sdruntime.NewPipeline(*cfg, logger)
//	defer pipe.Close()
//
//	params := sdruntime.DefaultParams()
//	params.Prompt = "a red ball on wet sand"
//
//	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
//	defer cancel()
//
//	result, err := pipe.Generate(ctx, params)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// result.ImageData is PNG bytes; result.Seed is the seed actually used.
//
// # Lifecycle
//
// The pipeline is a process-wide singleton: absent at startup, constructed
// on the first generation request, retained for the process lifetime. Its
// state machine is {uninitialized, initializing, ready, failed, closed}.
// A failed initialization is retryable: the next request attempts a fresh
// load. Concurrent first requests block on the single initializer rather
// than racing it.
//
// Device and precision are fixed at initialization: fp16 on a detected
// CUDA accelerator, fp32 on the CPU path. Optional optimizations (flash
// attention on CUDA; attention slicing and a thread cap on CPU) are
// applied best-effort and never abort initialization.
//
// # Concurrency
//
// Generate is safe for concurrent use. Inference runs through a bounded
// pool of model contexts (SD_MAX_CONCURRENT slots); waiting for a slot
// honors the caller's context deadline, a generation already in flight
// does not.
//
// # Build Tags
//
// The package supports two build modes:
//
//   - Stub mode (default): go build
//     Pool and pipeline logic work; generation returns ErrGenerationFailed.
//
//   - Real mode: CGO_ENABLED=1 go build -tags sd
//     Requires stable-diffusion.cpp built and linkable.
//
// # Error Handling
//
// Sentinel errors cover the failure modes; use errors.Is:
//
//	_, err := pipe.Generate(ctx, params)
//	if errors.Is(err, sdruntime.ErrInvalidParams) {
//	    // reject as a client error
//	}
package sdruntime
