// Command vision_backend runs the local text-to-image generation service:
// an HTTP API over a lazily-initialized Stable Diffusion pipeline, with an
// embedded browser viewer and a generation history dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"vision_backend/core"
	"vision_backend/core/validation"
	"vision_backend/db"
	"vision_backend/logging"
	"vision_backend/metrics"
	"vision_backend/sdruntime"
	"vision_backend/server"
	"vision_backend/shutdown"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Service management commands (install/uninstall/...) short-circuit
	// before anything else runs.
	if HandleServiceCommand(os.Args) {
		return
	}
	if isService, err := RunAsService(); err != nil {
		fmt.Fprintf(os.Stderr, "Service error: %v\n", err)
		os.Exit(core.ExitCodeError)
	} else if isService {
		return
	}

	os.Exit(run())
}

// run contains the whole application lifecycle and returns the process
// exit code. Split from main so deferred cleanup runs before os.Exit.
func run() int {
	startTime := time.Now()

	// Load .env if present. The logger is not up yet, so plain stdout.
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"
	logFilePath := core.GetEnvOrDefault("LOG_FILE", "vision_backend.log")

	logger, err := logging.NewLogger(isDevelopment, logFilePath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer logger.Sync()

	logger.Info("Starting vision backend",
		zap.String("version", core.GetVersion()),
		zap.Bool("dev_mode", isDevelopment),
	)

	// Startup validation before any heavy initialization.
	result := validation.NewValidationSuite().
		WithShowProgress(true).
		Validate()
	if !result.Success {
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}
		return core.ExitCodeError
	}

	config, err := core.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Configuration loaded",
		zap.String("mode", config.Mode),
		zap.String("model_image", config.ModelImage),
		zap.String("addr", config.Addr()),
		zap.String("db_path", config.DBPath),
	)
	if !config.IsLocalMode() {
		logger.Warn("Non-local inference mode: /generate will reject all requests",
			zap.String("mode", config.Mode),
		)
	}

	// Shutdown coordination. Handlers registered below run lowest
	// priority first.
	manager := shutdown.NewManager(logger.Zap())
	manager.Register("logger", 5, func(ctx context.Context) error {
		return logger.Sync()
	})

	// Pipeline: constructed cheaply here, initialized on first request.
	sdConfig := sdruntime.LoadSDConfig()
	pipeline := sdruntime.NewPipeline(*sdConfig, logger.Zap())
	manager.Register("pipeline", 30, func(ctx context.Context) error {
		return pipeline.Close()
	})

	// In-memory metrics plus GPU telemetry for the dashboard.
	store := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), startTime)
	store.SetPipelineInfo(pipeline.State().String(), sdConfig.ModelID, string(pipeline.Device()))

	gpuCollector := metrics.NewGPUCollector(metrics.DefaultGPUCollectorConfig(), store.UpdateGPUMetrics)
	gpuCollector.Start()
	manager.Register("gpu-collector", 20, func(ctx context.Context) error {
		gpuCollector.Stop()
		return nil
	})

	// Generation history, enabled by DB_PATH.
	var repo *db.Repository
	if config.DBPath != "" {
		database, dbErr := db.NewDatabase(config.DBPath)
		if dbErr != nil {
			logger.Error("Failed to open history database", zap.Error(dbErr))
			return core.ExitCodeError
		}
		if dbErr := database.Migrate(); dbErr != nil {
			logger.Error("Failed to migrate history database", zap.Error(dbErr))
			database.Close()
			return core.ExitCodeError
		}

		base := db.NewRepository(database, nil)
		writer := db.NewAsyncWriter(base.CreateAsyncWriteHandler())
		writer.Start()
		repo = db.NewRepository(database, writer)

		manager.Register("history-writer", 25, func(ctx context.Context) error {
			if !writer.StopWithTimeout(10 * time.Second) {
				return fmt.Errorf("history writer did not drain in time")
			}
			return nil
		})
		manager.Register("database", 35, func(ctx context.Context) error {
			return database.Close()
		})

		logger.Info("Generation history enabled", zap.String("path", config.DBPath))
	} else {
		logger.Info("Generation history disabled (DB_PATH not set)")
	}

	serverConfig := server.DefaultServerConfig()
	serverConfig.Host = config.Host
	serverConfig.Port = config.Port

	srv, err := server.NewServer(serverConfig, server.Deps{
		Backend:    pipeline,
		Mode:       config.Mode,
		ModelImage: config.ModelImage,
		Store:      store,
		GPU:        gpuCollector,
		History:    repo,
		Wrapper:    manager,
		Logger:     logger.Zap(),
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", zap.Error(err))
		return core.ExitCodeError
	}
	manager.Register("http-server", 10, srv.Shutdown)

	manager.Start()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	// Block until a shutdown signal or a listener failure.
	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			manager.Shutdown()
			return core.ExitCodeError
		}
	case <-manager.Context().Done():
	}

	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Goodbye!")
	return core.ExitCodeForSignal(manager.ReceivedSignal())
}
