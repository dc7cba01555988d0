package sdruntime

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// OptimizationStep is one optional, best-effort setup step applied to a
// freshly loaded model context. Steps are independent: a failing step is
// logged and skipped, and must never abort initialization.
type OptimizationStep struct {
	// Name identifies the step in logs.
	Name string
	// Apply performs the step against a loaded context.
	Apply func(*SDContext) error
}

// OptimizationsFor returns the ordered optimization steps for a device.
//
// CUDA path: fused (flash) attention for throughput.
// CPU path: attention slicing for peak memory, plus a thread cap so
// inference does not starve the rest of the process.
func OptimizationsFor(device Device, threads int) []OptimizationStep {
	if device == DeviceCUDA {
		return []OptimizationStep{
			{Name: "flash_attention", Apply: EnableFlashAttention},
		}
	}

	if threads <= 0 {
		threads = runtime.NumCPU() / 2
		if threads < 1 {
			threads = 1
		}
	}

	return []OptimizationStep{
		{Name: "attention_slicing", Apply: EnableAttentionSlicing},
		{Name: "thread_cap", Apply: func(ctx *SDContext) error {
			return SetThreadCount(ctx, threads)
		}},
	}
}

// ApplyOptimizations runs each step against the context, isolating
// failures: a step that errors is logged at warn level and the remaining
// steps still run. Never returns an error.
func ApplyOptimizations(ctx *SDContext, steps []OptimizationStep, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if step.Apply == nil {
			continue
		}
		if err := applyStep(ctx, step); err != nil {
			logger.Warn("optimization step skipped",
				zap.String("step", step.Name),
				zap.Error(err),
			)
			continue
		}
		logger.Debug("optimization step applied", zap.String("step", step.Name))
	}
}

// applyStep runs one step, converting panics into errors so a misbehaving
// backend hook cannot take down initialization.
func applyStep(ctx *SDContext, step OptimizationStep) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", step.Name, r)
		}
	}()
	return step.Apply(ctx)
}
