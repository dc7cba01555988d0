package sdruntime

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidatePrompt validates a prompt string for image generation.
// Returns an error if the prompt is invalid.
// This is a pure function with no side effects.
func ValidatePrompt(prompt string) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrInvalidPrompt)
	}

	if utf8.RuneCountInString(trimmed) < MinPromptLength {
		return fmt.Errorf("%w: prompt must be at least %d characters",
			ErrInvalidPrompt, MinPromptLength)
	}

	// Check for null bytes (security concern for C interop)
	if strings.ContainsRune(prompt, '\x00') {
		return fmt.Errorf("%w: prompt contains null bytes", ErrInvalidPrompt)
	}

	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength {
		return fmt.Errorf("%w: prompt length %d exceeds maximum %d",
			ErrInvalidPrompt, n, MaxPromptLength)
	}

	return nil
}

// SanitizePrompt cleans a prompt by trimming whitespace.
// This is a pure function that transforms input to output.
func SanitizePrompt(prompt string) string {
	return strings.TrimSpace(prompt)
}
