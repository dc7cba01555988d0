package server

import (
	"net/http"
	"strings"
	"time"

	"vision_backend/logging"

	"go.uber.org/zap"
)

// LoggingMiddleware is a molecule that logs every HTTP request with
// method, path, status code, duration and client address.
//
// It composes a ResponseWriter wrapper (to capture the status code) with
// the structured logger. Paths in skipPaths (health checks, status polls)
// are passed through without logging to keep the log readable.
type LoggingMiddleware struct {
	logger    *zap.Logger
	skipPaths map[string]bool
}

// NewLoggingMiddleware creates a LoggingMiddleware.
// skipPaths lists exact URL paths that are never logged.
func NewLoggingMiddleware(logger *zap.Logger, skipPaths []string) *LoggingMiddleware {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &LoggingMiddleware{
		logger:    logger,
		skipPaths: skip,
	}
}

// Handler wraps next with request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		fields := logging.RequestFields(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		fields = append(fields,
			zap.String("remote_addr", clientIP(r)),
			zap.Int64("bytes", wrapped.bytesWritten),
		)

		switch {
		case wrapped.statusCode >= 500:
			m.logger.Error("Request failed", fields...)
		case wrapped.statusCode >= 400:
			m.logger.Warn("Request rejected", fields...)
		default:
			m.logger.Info("Request completed", fields...)
		}
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code
// and response size.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
