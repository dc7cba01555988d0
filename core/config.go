// Package core provides process-wide configuration, environment parsing,
// and shared error types for the vision backend.
package core

import (
	"net"
	"os"
	"strconv"
	"strings"
)

// ModeLocal is the only inference mode this build can serve. Any other
// configured mode keeps the server up (health stays green) but makes the
// generate endpoint reject every request.
const ModeLocal = "local"

// DefaultModelImage is the model identifier reported to clients when none
// is configured. Matches the small text-to-image model the backend ships
// tuned defaults for.
const DefaultModelImage = "stabilityai/sd-turbo"

// Config holds the process-wide configuration, read once at startup.
// Reconfiguration requires a process restart.
type Config struct {
	// Mode is the inference mode string. Only ModeLocal is functional.
	Mode string

	// ModelImage is the model identifier reported in /health and /generate
	// responses. The diffusion runtime loads its weights separately via the
	// SD_* variables (see sdruntime.LoadSDConfig).
	ModelImage string

	// Host and Port for the HTTP server.
	Host string
	Port int

	// DBPath is the generation history database file. Empty disables history.
	DBPath string

	// LogFilePath is where structured logs are written (alongside console).
	LogFilePath string

	// DevMode enables debug logging and human-readable console output.
	DevMode bool
}

// LoadConfig reads configuration from the environment.
// Values are normalized (mode lowercased) but never clamped: invalid
// values produce a ConfigError instead of a silent correction.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Mode:        strings.ToLower(strings.TrimSpace(GetEnvOrDefault("INFERENCE_MODE", ModeLocal))),
		ModelImage:  GetEnvOrDefault("SD_MODEL_IMAGE", DefaultModelImage),
		Host:        GetEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		Port:        ParseIntEnv("SERVER_PORT", 8000),
		DBPath:      os.Getenv("DB_PATH"),
		LogFilePath: GetEnvOrDefault("LOG_FILE", "vision_backend.log"),
		DevMode:     ParseBoolEnv("DEV_MODE", false),
	}

	if cfg.Mode == "" {
		return nil, ErrInvalidMode(cfg.Mode)
	}
	if cfg.ModelImage == "" {
		return nil, ErrMissingModel()
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, ErrInvalidPort(cfg.Port)
	}

	return cfg, nil
}

// IsLocalMode reports whether this process is configured for local inference.
func (c *Config) IsLocalMode() bool {
	return c.Mode == ModeLocal
}

// Addr returns the host:port string for the HTTP listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
