// Package server provides the HTTP surface for the image generation service.
// This file contains the error-kind atoms used at the HTTP boundary.
package server

import (
	"errors"
	"net/http"

	"vision_backend/sdruntime"
)

// ErrorKind is a closed enumeration of failures the HTTP boundary can
// surface. Every internal error is mapped to exactly one kind; the client
// sees the kind's detail text while the raw error goes to the log. This
// keeps internal messages (file paths, backend strings) out of responses.
type ErrorKind int

const (
	// KindValidation covers malformed or out-of-bounds request bodies.
	KindValidation ErrorKind = iota

	// KindConfiguration covers requests rejected because the process is
	// not configured for local inference.
	KindConfiguration

	// KindNotReady covers pipeline initialization failures (model missing,
	// weights failed to load). The pipeline stays retryable.
	KindNotReady

	// KindGeneration covers inference failures after a ready pipeline
	// accepted the request.
	KindGeneration

	// KindInternal covers everything else.
	KindInternal
)

// String returns a stable label for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindNotReady:
		return "not_ready"
	case KindGeneration:
		return "generation"
	default:
		return "internal"
	}
}

// StatusCode maps a kind to its HTTP status.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConfiguration:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// localModeDetail is the exact body text for configuration rejections.
const localModeDetail = "This build runs local mode only."

// Detail returns the client-visible detail text for a kind.
// The validation kind carries a per-request message and is handled at the
// call site; this covers the fixed-text kinds.
func (k ErrorKind) Detail() string {
	switch k {
	case KindConfiguration:
		return localModeDetail
	case KindNotReady:
		return "pipeline initialization failed"
	case KindGeneration:
		return "image generation failed"
	default:
		return "internal server error"
	}
}

// ClassifyError maps an internal error to its boundary kind.
// Unrecognized errors fall through to KindInternal.
func ClassifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, sdruntime.ErrInvalidPrompt),
		errors.Is(err, sdruntime.ErrInvalidParams):
		return KindValidation
	case errors.Is(err, sdruntime.ErrModelNotFound),
		errors.Is(err, sdruntime.ErrModelLoadFailed):
		return KindNotReady
	case errors.Is(err, sdruntime.ErrGenerationFailed),
		errors.Is(err, sdruntime.ErrGenerationTimeout),
		errors.Is(err, sdruntime.ErrAcquireTimeout),
		errors.Is(err, sdruntime.ErrPipelineClosed),
		errors.Is(err, sdruntime.ErrContextPoolClosed):
		return KindGeneration
	default:
		return KindInternal
	}
}
