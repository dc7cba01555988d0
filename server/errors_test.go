package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"vision_backend/sdruntime"
)

func TestErrorKind_StatusCode(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{KindValidation, http.StatusUnprocessableEntity},
		{KindConfiguration, http.StatusBadRequest},
		{KindNotReady, http.StatusInternalServerError},
		{KindGeneration, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorKind_ConfigurationDetail(t *testing.T) {
	if got := KindConfiguration.Detail(); got != "This build runs local mode only." {
		t.Errorf("unexpected configuration detail %q", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"invalid prompt", sdruntime.ErrInvalidPrompt, KindValidation},
		{"invalid params wrapped", fmt.Errorf("steps: %w", sdruntime.ErrInvalidParams), KindValidation},
		{"model not found", sdruntime.ErrModelNotFound, KindNotReady},
		{"model load failed", sdruntime.ErrModelLoadFailed, KindNotReady},
		{"generation failed", sdruntime.ErrGenerationFailed, KindGeneration},
		{"generation timeout", sdruntime.ErrGenerationTimeout, KindGeneration},
		{"acquire timeout", sdruntime.ErrAcquireTimeout, KindGeneration},
		{"pipeline closed", sdruntime.ErrPipelineClosed, KindGeneration},
		{"unknown error", errors.New("something else"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}
