// Package cli provides common initialization utilities shared by
// cmd/walletsync and cmd/walletsync-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"walletsync/internal/config"
	"walletsync/internal/kv"
	"walletsync/internal/log"
)

// SetupLogger initializes structured logging with default settings and
// installs it as the process-wide default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the configured key-value backend, exiting the process on
// failure. The returned cleanup closes it.
func OpenStore(logger *log.Logger, cfg *config.Config) (kv.Store, func() error) {
	if cfg.KVBackend == "memory" {
		logger.Info("Using in-memory key-value store")
		return kv.NewMemory(), func() error { return nil }
	}

	store, err := kv.NewSQLite(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite key-value store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	return store, store.Close
}

// GracefulShutdown sets up signal handling. The returned context is
// cancelled on SIGINT/SIGTERM after cleanup has run within timeout.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()
	}()

	return ctx
}
