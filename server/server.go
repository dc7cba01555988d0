// Package server provides the HTTP surface for the image generation
// service. This file contains the Server organism that wires together the
// generation handler, the viewer, the dashboard API and the request
// logging middleware.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"vision_backend/core"
	"vision_backend/db"
	"vision_backend/metrics"

	"go.uber.org/zap"
)

// ServerConfig configures the Server.
type ServerConfig struct {
	// Host to bind to (default "0.0.0.0")
	Host string

	// Port to listen on (default 8000)
	Port int

	// ReadTimeout for HTTP requests (default 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Generations block for their full
	// duration, so this must cover the slowest CPU render (default 10m).
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default 30s)
	ShutdownTimeout time.Duration

	// LogSkipPaths are paths excluded from request logging.
	LogSkipPaths []string

	// CORSAllowOrigin is the Access-Control-Allow-Origin value sent on
	// every response. Empty means "*" (any origin).
	CORSAllowOrigin string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8000,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogSkipPaths:    []string{"/health", "/api/status", "/api/gpu"},
	}
}

// Deps holds the collaborators the Server drives. Backend and Logger are
// required; the rest are optional and their endpoints degrade gracefully
// when absent.
type Deps struct {
	// Backend runs generations. Required.
	Backend ImageBackend

	// Mode is the configured inference mode; anything but "local" makes
	// /generate reject every request.
	Mode string

	// ModelImage is the model identifier reported in responses.
	ModelImage string

	// Store receives per-request records for /api/status and /api/history.
	Store *metrics.MetricsStore

	// GPU provides telemetry for /api/gpu. Nil on hosts without a GPU.
	GPU *metrics.GPUCollector

	// History persists generation records. Nil disables persistence.
	History *db.Repository

	// Wrapper tracks requests for graceful shutdown. Nil runs untracked.
	Wrapper OperationWrapper

	// Logger for request and handler logging. Nil gets a no-op logger.
	Logger *zap.Logger
}

// Server is the HTTP server organism.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	logger     *zap.Logger

	backend    ImageBackend
	mode       string
	modelImage string
	version    string
	store      *metrics.MetricsStore
	gpu        *metrics.GPUCollector
	history    *db.Repository
	wrapper    OperationWrapper
	preview    previewState
}

// NewServer creates a Server with the given configuration and wires up
// all routes and middleware.
func NewServer(config ServerConfig, deps Deps) (*Server, error) {
	if deps.Backend == nil {
		return nil, fmt.Errorf("server: backend is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mux:        http.NewServeMux(),
		config:     config,
		logger:     logger,
		backend:    deps.Backend,
		mode:       deps.Mode,
		modelImage: deps.ModelImage,
		version:    core.GetVersion(),
		store:      deps.Store,
		gpu:        deps.GPU,
		history:    deps.History,
		wrapper:    deps.Wrapper,
	}

	s.setupRoutes()

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	loggingMw := NewLoggingMiddleware(logger, config.LogSkipPaths)
	corsMw := NewCORSMiddleware(config.CORSAllowOrigin)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      loggingMw.Handler(corsMw.Handler(s.mux)),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("HTTP server created",
		zap.String("addr", addr),
		zap.String("mode", deps.Mode),
		zap.Bool("history_enabled", deps.History != nil),
	)

	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/generate", s.handleGenerate)
	s.mux.HandleFunc("/viewer", s.handleViewer)

	s.mux.HandleFunc("/api/status", s.handleAPIStatus)
	s.mux.HandleFunc("/api/history", s.handleAPIHistory)
	s.mux.HandleFunc("/api/gpu", s.handleAPIGPU)
	s.mux.HandleFunc("/api/preview", s.handleAPIPreview)

	s.mux.HandleFunc("/", s.handleRoot)
}

// Handler returns the root handler with middleware applied.
// Exposed for httptest-based testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening for HTTP requests and blocks until the server
// is shut down. http.ErrServerClosed is swallowed: it is the normal
// result of a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for active
// connections within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
