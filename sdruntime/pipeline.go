// pipeline.go implements the process-wide pipeline manager: one shared,
// lazily-initialized generation capability per process.
package sdruntime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// State is the lifecycle state of the pipeline.
type State int32

const (
	// StateUninitialized means no initialization has been attempted.
	StateUninitialized State = iota
	// StateInitializing means the first caller is loading the model.
	StateInitializing
	// StateReady means the pipeline can serve generations.
	StateReady
	// StateFailed means the last initialization attempt failed; the next
	// EnsureReady call retries from scratch.
	StateFailed
	// StateClosed means the pipeline was shut down.
	StateClosed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Pipeline owns the single shared generation capability for the process.
// It is constructed cheaply at startup; the expensive work (device
// detection, precision selection, model load, optimization setup) happens
// on the first EnsureReady call. Attributes chosen at initialization are
// fixed for the process lifetime; reconfiguration requires a restart.
//
// Pipeline is safe for concurrent use. Concurrent first requests block on
// the single initializer instead of racing it.
type Pipeline struct {
	cfg    SDConfig
	logger *zap.Logger

	// state is readable without the mutex for cheap fast-path checks and
	// introspection; transitions happen only under mu.
	state atomic.Int32

	mu        sync.Mutex
	device    Device
	precision Precision
	pool      *ContextPool
	lastErr   error
}

// NewPipeline creates an uninitialized pipeline. No model is loaded until
// the first EnsureReady or Generate call.
func NewPipeline(cfg SDConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
	}
}

// EnsureReady initializes the pipeline on demand.
//
// Behavior:
//  1. No-op if already initialized (idempotent).
//  2. Detects accelerator availability (unless a device is configured).
//  3. Chooses precision: fp16 on an accelerator, fp32 otherwise.
//  4. Loads the model with those attributes via a warm-up context.
//  5. Applies best-effort optimizations; failures never abort.
//  6. On load failure, records the error and transitions to StateFailed
//     so a future call may retry.
func (p *Pipeline) EnsureReady(ctx context.Context) error {
	if State(p.state.Load()) == StateReady {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch State(p.state.Load()) {
	case StateReady:
		// Another caller finished initialization while we waited.
		return nil
	case StateClosed:
		return ErrPipelineClosed
	}

	p.state.Store(int32(StateInitializing))

	if err := p.initLocked(ctx); err != nil {
		p.lastErr = err
		p.state.Store(int32(StateFailed))
		return err
	}

	p.lastErr = nil
	p.state.Store(int32(StateReady))
	return nil
}

// initLocked performs the actual initialization. Caller holds p.mu.
func (p *Pipeline) initLocked(ctx context.Context) error {
	device := p.cfg.Device
	if device == "" {
		device = DetectDevice()
	}
	precision := PrecisionFor(device)

	p.logger.Info("initializing pipeline",
		zap.String("model", p.cfg.ModelID),
		zap.String("model_path", p.cfg.ModelPath),
		zap.String("device", string(device)),
		zap.String("precision", string(precision)),
		zap.Int("max_concurrent", p.cfg.MaxConcurrent),
	)

	opts := ModelOptions{
		Device:    device,
		Precision: precision,
		Threads:   p.cfg.Threads,
	}
	steps := OptimizationsFor(device, p.cfg.Threads)

	pool, err := NewContextPool(p.cfg.MaxConcurrent, p.cfg.ModelPath, opts, func(sdCtx *SDContext) {
		ApplyOptimizations(sdCtx, steps, p.logger)
	})
	if err != nil {
		return err
	}

	// Load one context eagerly so bad weights fail here, not mid-request.
	if err := pool.WarmUp(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("model warm-up: %w", err)
	}

	if p.pool != nil {
		// Previous failed attempt left a pool behind
		p.pool.Close()
	}
	p.pool = pool
	p.device = device
	p.precision = precision

	p.logger.Info("pipeline ready",
		zap.String("backend", GetBackendInfo()),
		zap.String("device", string(device)),
	)
	return nil
}

// Generate produces one image. It validates parameters, ensures the
// pipeline is ready, resolves the seed (negative means non-deterministic),
// and runs inference through the bounded context pool.
func (p *Pipeline) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	if err := p.EnsureReady(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()
	if pool == nil {
		return nil, ErrPipelineClosed
	}

	return pool.Generate(ctx, params)
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// LastError returns the error from the most recent failed initialization,
// or nil.
func (p *Pipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Device returns the device selected at initialization.
// Only meaningful once the pipeline is ready.
func (p *Pipeline) Device() Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.device
}

// Precision returns the precision selected at initialization.
// Only meaningful once the pipeline is ready.
func (p *Pipeline) Precision() Precision {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.precision
}

// ModelID returns the configured model identifier.
func (p *Pipeline) ModelID() string {
	return p.cfg.ModelID
}

// MaxConcurrent returns the configured inference concurrency bound.
func (p *Pipeline) MaxConcurrent() int {
	return p.cfg.MaxConcurrent
}

// Close shuts down the pipeline and frees all model contexts.
// After Close, EnsureReady and Generate return ErrPipelineClosed.
// Close is safe to call multiple times.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if State(p.state.Load()) == StateClosed {
		return nil
	}
	p.state.Store(int32(StateClosed))

	if p.pool != nil {
		err := p.pool.Close()
		p.pool = nil
		return err
	}
	return nil
}
