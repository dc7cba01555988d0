// Package validation provides startup validation for the generation
// service: configuration checks, model weight presence, and GPU probing,
// run before any heavy initialization so misconfiguration fails fast with
// readable output.
package validation

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"vision_backend/core"
	"vision_backend/sdruntime"
)

// ValidationResult is the outcome of a single configuration check.
type ValidationResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator runs environment-level checks that need no network or
// device access. This is a molecule composing individual check atoms.
type ConfigValidator struct {
	envPath string
}

// NewConfigValidator creates a ConfigValidator with the default .env path.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{envPath: ".env"}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile verifies the .env file exists. A missing file is valid
// (environment variables may be set directly) but worth reporting.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if _, err := os.Stat(v.envPath); err != nil {
		return ValidationResult{
			Valid:   true,
			Message: fmt.Sprintf("%s not found, using process environment", v.envPath),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("loaded %s", v.envPath),
	}
}

// CheckInferenceMode verifies the configured mode. Any mode other than
// "local" is valid for startup but makes /generate reject every request,
// so it is surfaced prominently.
func (v *ConfigValidator) CheckInferenceMode() ValidationResult {
	mode := os.Getenv("INFERENCE_MODE")
	if mode == "" || mode == core.ModeLocal {
		return ValidationResult{Valid: true, Message: "local"}
	}
	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("%q: /generate will reject all requests", mode),
	}
}

// CheckServerAddress verifies SERVER_HOST/SERVER_PORT parse to a usable
// listen address.
func (v *ConfigValidator) CheckServerAddress() ValidationResult {
	host := os.Getenv("SERVER_HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		return ValidationResult{
			Valid:   true,
			Message: fmt.Sprintf("%s (default port)", host),
		}
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return ValidationResult{
			Valid:   false,
			Message: "invalid SERVER_PORT",
			Error:   fmt.Errorf("SERVER_PORT %q is not a valid port", portStr),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: net.JoinHostPort(host, portStr),
	}
}

// CheckModelWeights verifies SD_MODEL_PATH points at an existing file
// when set. Unset is valid: the pipeline fails lazily on first use, which
// is the documented behavior, but catching a typo at startup is cheaper.
func (v *ConfigValidator) CheckModelWeights() ValidationResult {
	path := os.Getenv("SD_MODEL_PATH")
	if path == "" {
		return ValidationResult{
			Valid:   true,
			Message: "SD_MODEL_PATH not set, model resolved at first request",
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "model weights not found",
			Error:   fmt.Errorf("SD_MODEL_PATH %q: %w", path, sdruntime.ErrModelNotFound),
		}
	}
	if info.IsDir() {
		return ValidationResult{
			Valid:   false,
			Message: "model path is a directory",
			Error:   fmt.Errorf("SD_MODEL_PATH %q is a directory, expected a weights file", path),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: filepath.Base(path),
	}
}

// CheckDatabasePath verifies the history database location is usable.
// An empty DB_PATH disables history and passes.
func (v *ConfigValidator) CheckDatabasePath() ValidationResult {
	path := os.Getenv("DB_PATH")
	if path == "" {
		return ValidationResult{
			Valid:   true,
			Message: "history disabled",
		}
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return ValidationResult{
			Valid:   false,
			Message: "database parent is not a directory",
			Error:   fmt.Errorf("DB_PATH parent %q is not a directory", dir),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: path,
	}
}
