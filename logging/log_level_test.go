package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLogLevelString(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"  info  ", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel}, // unrecognized falls back
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLogLevelString(tt.input, zapcore.InfoLevel)
			if got != tt.want {
				t.Errorf("ParseLogLevelString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_FromEnv(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "error")
	if got := ParseLogLevel("TEST_LOG_LEVEL", zapcore.InfoLevel); got != zapcore.ErrorLevel {
		t.Errorf("expected error level, got %v", got)
	}

	t.Setenv("TEST_LOG_LEVEL", "")
	if got := ParseLogLevel("TEST_LOG_LEVEL", zapcore.WarnLevel); got != zapcore.WarnLevel {
		t.Errorf("expected default warn level, got %v", got)
	}
}
