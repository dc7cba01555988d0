// context_pool.go implements a thread-safe pool of model contexts.
//
// The pool decouples inference from the request-accept path: it bounds
// concurrent generations to its size, and acquisition honors the caller's
// context deadline so a burst of requests fails fast instead of piling up.
package sdruntime

import (
	"context"
	"fmt"
	"sync"
)

// PooledContext wraps an SDContext with pool management metadata.
type PooledContext struct {
	// SDContext is the underlying context from cgo_bindings
	*SDContext
	// poolID identifies which pool slot this context belongs to
	poolID int
	// inUse tracks whether this context is currently acquired
	inUse bool
}

// ContextPool manages a bounded set of SDContext instances for reuse.
// Contexts are created lazily on first acquisition, up to maxSize, all
// with the same model path and ModelOptions.
//
// ContextPool is safe for concurrent use.
type ContextPool struct {
	mu        sync.Mutex
	contexts  chan *PooledContext
	maxSize   int
	modelPath string
	opts      ModelOptions
	onCreate  func(*SDContext)
	closed    bool
	created   int // number of live contexts
	nextID    int // next pool slot ID to assign
}

// NewContextPool creates a pool with the specified maximum size.
// Contexts are loaded lazily from modelPath with opts on first Acquire.
// onCreate, if non-nil, runs once per freshly loaded context (used for
// best-effort optimization setup); it must not retain the context.
//
// Returns an error if maxSize is invalid.
func NewContextPool(maxSize int, modelPath string, opts ModelOptions, onCreate func(*SDContext)) (*ContextPool, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: pool size %d must be positive", ErrInvalidParams, maxSize)
	}

	return &ContextPool{
		contexts:  make(chan *PooledContext, maxSize),
		maxSize:   maxSize,
		modelPath: modelPath,
		opts:      opts,
		onCreate:  onCreate,
		nextID:    1,
	}, nil
}

// WarmUp forces creation of one context so model-load failures surface
// during initialization rather than on the first generation request.
// The loaded context is returned to the pool for reuse.
func (p *ContextPool) WarmUp(ctx context.Context) error {
	pc, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	p.Release(pc)
	return nil
}

// Generate creates an image from the given parameters.
// It acquires a context from the pool, generates the image, and releases
// the context. The ctx parameter controls cancellation while waiting for
// a pool slot; a generation already in flight is not cancellable.
//
// Error cases:
//   - ErrInvalidParams: parameters fail validation
//   - ErrAcquireTimeout: ctx.Done() before acquiring a pool slot
//   - ErrContextPoolClosed: pool has been closed
//   - ErrModelNotFound / ErrModelLoadFailed: lazy context creation failed
//   - ErrGenerationFailed: backend generation failed
func (p *ContextPool) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	// Without an explicit seed each call samples with a fresh random one.
	// Explicit seeds, negative values included, are passed through so
	// identical requests reproduce identical images.
	if !params.HasSeed {
		params.Seed = RandomSeed()
		params.HasSeed = true
	}

	pooledCtx, err := p.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire context: %w", err)
	}
	defer p.Release(pooledCtx)

	result, err := GenerateImage(pooledCtx.SDContext, params)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	if err := ValidateImageData(result.ImageData); err != nil {
		return nil, fmt.Errorf("generated image validation failed: %w", err)
	}

	result.Seed = params.Seed
	return result, nil
}

// Acquire retrieves a context from the pool, respecting the provided
// context's deadline. If no context is available and the pool has
// capacity, a new context is lazily created.
func (p *ContextPool) Acquire(ctx context.Context) (*PooledContext, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrContextPoolClosed
	}

	// Try to get an idle context without blocking
	select {
	case pc := <-p.contexts:
		pc.inUse = true
		p.mu.Unlock()
		return pc, nil
	default:
	}

	// Create a new context if the pool has capacity
	if p.created < p.maxSize {
		poolID := p.nextID
		p.nextID++
		p.created++
		p.mu.Unlock()

		sdCtx, err := LoadModel(p.modelPath, p.opts)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		if p.onCreate != nil {
			p.onCreate(sdCtx)
		}

		return &PooledContext{
			SDContext: sdCtx,
			poolID:    poolID,
			inUse:     true,
		}, nil
	}
	p.mu.Unlock()

	// Pool at capacity: wait for a release or caller cancellation
	select {
	case pc := <-p.contexts:
		if pc == nil {
			return nil, ErrContextPoolClosed
		}
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			FreeContext(pc.SDContext)
			return nil, ErrContextPoolClosed
		}
		pc.inUse = true
		p.mu.Unlock()
		return pc, nil

	case <-ctx.Done():
		return nil, ErrAcquireTimeout
	}
}

// Release returns a context to the pool for reuse.
// If the pool is closed, the context is freed instead.
// Passing nil is a safe no-op.
func (p *ContextPool) Release(pc *PooledContext) {
	if pc == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pc.inUse = false

	if p.closed {
		FreeContext(pc.SDContext)
		p.created--
		return
	}

	select {
	case p.contexts <- pc:
	default:
		// Pool is full (shouldn't happen with proper usage), free context
		FreeContext(pc.SDContext)
		p.created--
	}
}

// Close shuts down the pool and frees all idle contexts. Contexts still
// acquired are freed on Release. After Close, Acquire and Generate return
// ErrContextPoolClosed. Close is safe to call multiple times.
func (p *ContextPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.contexts)

	for pc := range p.contexts {
		if pc != nil && pc.SDContext != nil {
			FreeContext(pc.SDContext)
			p.created--
		}
	}

	return nil
}

// Size returns the number of idle contexts currently available.
func (p *ContextPool) Size() int {
	return len(p.contexts)
}

// Created returns the number of live contexts (idle plus acquired).
func (p *ContextPool) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// MaxSize returns the maximum capacity of the pool.
func (p *ContextPool) MaxSize() int {
	return p.maxSize
}

// IsClosed returns whether the pool has been closed.
func (p *ContextPool) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
