package core

import (
	"testing"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INFERENCE_MODE", "SD_MODEL_IMAGE", "SERVER_HOST",
		"SERVER_PORT", "DB_PATH", "LOG_FILE", "DEV_MODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mode != ModeLocal {
		t.Errorf("expected default mode %q, got %q", ModeLocal, cfg.Mode)
	}
	if !cfg.IsLocalMode() {
		t.Error("expected IsLocalMode() to be true by default")
	}
	if cfg.ModelImage != DefaultModelImage {
		t.Errorf("expected default model %q, got %q", DefaultModelImage, cfg.ModelImage)
	}
	if cfg.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Port)
	}
	if cfg.DBPath != "" {
		t.Errorf("expected history disabled by default, got %q", cfg.DBPath)
	}
}

func TestLoadConfig_ModeNormalized(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		isLocal bool
	}{
		{"uppercase local", "LOCAL", "local", true},
		{"mixed case with spaces", "  Local ", "local", true},
		{"remote mode accepted but not local", "remote", "remote", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("INFERENCE_MODE", tt.value)

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Mode != tt.want {
				t.Errorf("expected mode %q, got %q", tt.want, cfg.Mode)
			}
			if cfg.IsLocalMode() != tt.isLocal {
				t.Errorf("expected IsLocalMode()=%v for mode %q", tt.isLocal, tt.want)
			}
		})
	}
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"too large", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("SERVER_PORT", tt.port)

			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected error for port %s", tt.port)
			}
			if GetErrorCode(err) != ErrCodeInvalidPort {
				t.Errorf("expected %s, got %s", ErrCodeInvalidPort, GetErrorCode(err))
			}
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: 8000}
	if got := cfg.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("expected 127.0.0.1:8000, got %s", got)
	}
}
