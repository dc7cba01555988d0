package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing = "ENV_FILE_MISSING"
	ErrCodeInvalidMode    = "INVALID_MODE"
	ErrCodeMissingModel   = "MISSING_MODEL"
	ErrCodeInvalidPort    = "INVALID_PORT"
	ErrCodeInvalidBounds  = "INVALID_BOUNDS"
	ErrCodeMissingConfig  = "MISSING_CONFIG"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env and configure the required values",
	}
}

// ErrInvalidMode returns an error for an unrecognized inference mode.
// Unrecognized modes are still accepted at startup (the generate endpoint
// rejects them per-request), but empty mode strings are a hard error.
func ErrInvalidMode(mode string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidMode,
		Message: fmt.Sprintf("Invalid INFERENCE_MODE value: %q", mode),
		Action:  `Set INFERENCE_MODE to "local" (the only functional mode in this build)`,
	}
}

// ErrMissingModel returns an error for a missing model configuration.
func ErrMissingModel() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingModel,
		Message: "No image model configured",
		Action:  "Set SD_MODEL_IMAGE to a model identifier and SD_MODEL_PATH to the local weights file",
	}
}

// ErrInvalidPort returns an error for an out-of-range server port.
func ErrInvalidPort(port int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPort,
		Message: fmt.Sprintf("Invalid SERVER_PORT value: %d", port),
		Action:  "Set SERVER_PORT to a value between 1 and 65535",
	}
}

// ErrInvalidBounds returns an error when a configured default falls outside
// the generation parameter bounds.
func ErrInvalidBounds(name string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidBounds,
		Message: fmt.Sprintf("Invalid %s: %s", name, reason),
		Action:  fmt.Sprintf("Adjust %s to a value within the documented range", name),
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
