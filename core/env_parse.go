package core

import (
	"os"
	"strconv"
	"strings"
)

// GetEnvOrDefault reads an environment variable, falling back to def when
// it is unset or empty. Empty values are treated as unset so a stray
// `VAR=` line in a .env file cannot blank out a default.
func GetEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// ParseIntEnv reads an environment variable as an integer. Unset or
// unparseable values yield def; range checks are the caller's job since
// valid ranges differ per setting (ports, pool sizes, timeouts).
func ParseIntEnv(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// ParseBoolEnv reads an environment variable as a boolean flag.
// "true", "1", "yes" and "on" enable; "false", "0", "no" and "off"
// disable; comparison is case-insensitive. Anything else, including an
// unset variable, yields def.
func ParseBoolEnv(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}
