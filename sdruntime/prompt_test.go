package sdruntime

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantErr error
	}{
		{"valid prompt", "a cat wearing a tiny hat", nil},
		{"minimum length", "cat", nil},
		{"unicode counted by runes", "日本語", nil},
		{"empty", "", ErrInvalidPrompt},
		{"whitespace only", "   \t\n  ", ErrInvalidPrompt},
		{"too short", "ab", ErrInvalidPrompt},
		{"short after trim", "  ab  ", ErrInvalidPrompt},
		{"null byte", "a cat\x00dog", ErrInvalidPrompt},
		{"too long", strings.Repeat("a", MaxPromptLength+1), ErrInvalidPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrompt(tt.prompt)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestSanitizePrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  a red fox  ", "a red fox"},
		{"trims newlines", "\na red fox\n", "a red fox"},
		{"unchanged", "a red fox", "a red fox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePrompt(tt.input); got != tt.want {
				t.Errorf("SanitizePrompt(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
