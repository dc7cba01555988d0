package server

import (
	"context"

	"vision_backend/sdruntime"
)

// ImageBackend is the generation capability the HTTP handlers drive.
// sdruntime.Pipeline is the production implementation; tests substitute
// a fake that synthesizes deterministic PNGs.
type ImageBackend interface {
	// Generate produces one image for the given parameters, lazily
	// initializing the pipeline on first use.
	Generate(ctx context.Context, params sdruntime.GenerateParams) (*sdruntime.GenerateResult, error)

	// State reports the pipeline lifecycle state for status endpoints.
	State() sdruntime.State

	// ModelID reports the loaded model identifier.
	ModelID() string

	// Device reports the selected execution device.
	Device() sdruntime.Device
}

// OperationWrapper tracks a request as an in-flight operation so graceful
// shutdown can wait for it. shutdown.Manager satisfies this interface.
type OperationWrapper interface {
	WrapOperation(ctx context.Context, name string, fn func(context.Context) error) error
}
