// Package logging provides structured logging for the image generation
// service: a zap-based Logger organism plus field helpers that keep log
// entries consistent across packages.
package logging

import (
	"time"

	"go.uber.org/zap"
)

// GenerationFields wraps GenerationMetrics as a single nested zap field.
//
// Example:
//
//	logger.Info("generation complete", logging.GenerationFields(metrics))
func GenerationFields(metrics GenerationMetrics) zap.Field {
	return zap.Object("generation", metrics)
}

// RequestFields returns the standard fields for one HTTP request log line.
//
// Example:
//
//	logger.Info("request handled", logging.RequestFields("POST", "/generate", 200, elapsed)...)
func RequestFields(method, path string, status int, duration time.Duration) []zap.Field {
	return []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	}
}

// TimingFields returns start/end/duration fields for a timed operation.
func TimingFields(startTime, endTime time.Time) []zap.Field {
	return []zap.Field{
		zap.Time("start_time", startTime),
		zap.Time("end_time", endTime),
		zap.Duration("duration", endTime.Sub(startTime)),
	}
}
