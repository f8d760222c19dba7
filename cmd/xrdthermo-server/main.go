// Package main provides the reference prediction service for xrdthermo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/xrdthermo/internal/config"
	"github.com/raphaelgruber/xrdthermo/internal/server"
)

func main() {
	// Parse flags
	noModel := flag.Bool("no-model", false, "start without a model (every prediction answers 503)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	port := cfg.ServerPort

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel, config.LogConsole)
	defer func() { _ = cleanup() }()

	var model server.Model = server.DefaultLinear()
	if *noModel {
		model = nil
		logger.Warn("starting without a model")
	}
	srv := server.New(model, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("xrdthermo-server listening",
			"url", fmt.Sprintf("http://localhost:%s/", port),
			"metrics", fmt.Sprintf("http://localhost:%s/metrics", port),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
