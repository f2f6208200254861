package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"werewolf/internal/app"
	"werewolf/internal/config"
	"werewolf/internal/platform/otel"
	"werewolf/internal/storage/sqlite"
	httpTransport "werewolf/internal/transport/http"
)

func main() {
	// A local .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting werewolf server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	// Tracing
	shutdownTracing, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Error("tracing disabled", "error", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	// Match storage
	var (
		snapshots app.SnapshotStore
		results   httpTransport.ResultStore
	)
	if cfg.Storage.Path != "" {
		store, err := sqlite.Open(ctx, cfg.Storage.Path)
		if err != nil {
			logger.Error("failed to open storage", "path", cfg.Storage.Path, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		snapshots, results = store, store
		logger.Info("match storage ready", "path", cfg.Storage.Path)
	}

	// Create game hub
	hub := app.NewGameHub(app.HubConfig{
		RoomCodeLength: cfg.Game.RoomCodeLength,
		Session: app.SessionConfig{
			Lobby:   cfg.LobbySettings(),
			Options: cfg.EngineOptions(),
			Store:   snapshots,
		},
	}, logger)
	defer hub.Close()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, results, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
