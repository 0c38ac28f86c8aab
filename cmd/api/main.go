package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/logger"
	"github.com/pageza/healthy-cookbook/backend/internal/server"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()
	srv, err := server.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize server", zap.Error(err))
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			zlog.Fatal("Server error", zap.Error(err))
		}
	case sig := <-quit:
		zlog.Info("Received signal", zap.String("signal", sig.String()))
	}

	// Gracefully shutdown the server
	zlog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("Server shutdown error", zap.Error(err))
	}
	zlog.Info("Server stopped")
}
