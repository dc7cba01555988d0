package core

// Version is the application version, set at build time via ldflags.
// To inject a version during build, use:
//
//	go build -ldflags "-X vision_backend/core.Version=v1.0.0" .
//
// If not set at build time, defaults to "dev".
var Version = "dev"

// BuildTime is the build timestamp, set at build time via ldflags:
//
//	go build -ldflags "-X vision_backend/core.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" .
var BuildTime = "unknown"

// GitCommit is the git commit hash, set at build time via ldflags:
//
//	go build -ldflags "-X vision_backend/core.GitCommit=$(git rev-parse --short HEAD)" .
var GitCommit = "unknown"

// GetVersion returns the application version string.
func GetVersion() string {
	return Version
}

// GetVersionInfo returns a formatted version information string.
// Includes version, build time, and git commit if available.
//
// Example: "v1.0.0 (built 2026-01-15T10:30:00Z, commit abc1234)"
func GetVersionInfo() string {
	return Version + " (built " + BuildTime + ", commit " + GitCommit + ")"
}
