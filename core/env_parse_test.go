package core

import "testing"

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_VALUE", "set")
	if got := GetEnvOrDefault("TEST_ENV_VALUE", "fallback"); got != "set" {
		t.Errorf("expected 'set', got %q", got)
	}

	t.Setenv("TEST_ENV_VALUE", "")
	if got := GetEnvOrDefault("TEST_ENV_VALUE", "fallback"); got != "fallback" {
		t.Errorf("empty value should fall back, got %q", got)
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      int
		expected int
	}{
		{"valid integer", "42", 10, 42},
		{"empty uses default", "", 10, 10},
		{"invalid uses default", "abc", 10, 10},
		{"negative passes through", "-5", 10, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			if got := ParseIntEnv("TEST_INT", tt.def); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"yes uppercase", "YES", false, true},
		{"on", "on", false, true},
		{"padded true", "  true  ", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"off", "off", true, false},
		{"empty uses default", "", true, true},
		{"garbage uses default", "maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := ParseBoolEnv("TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
