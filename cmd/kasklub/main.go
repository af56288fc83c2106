package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kasklub/internal/amqp"
	"kasklub/internal/auth"
	"kasklub/internal/config"
	apphttp "kasklub/internal/http"
	applog "kasklub/internal/log"
	"kasklub/internal/services"
	"kasklub/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentApp})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose the ledger store backend (default: sqlite)
	var store storage.Store
	switch cfg.DataBackend {
	case "memory":
		store = storage.NewMemoryStore()
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	default:
		if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
			logger.Error("Failed to run migrations", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		store = repo
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	}

	// AMQP mirror publishing is optional; without it the worker pipeline
	// is simply off and the API still serves.
	var publisher services.MirrorPublisher
	if cfg.MirrorEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without mirror", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP mirror publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - ledger changes will not be mirrored")
	}

	svc := services.NewLedgerService(store, publisher)
	gate := auth.NewGate(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminToken)

	srv := apphttp.NewServer(":"+cfg.Port, svc, gate, logger)

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting kasklub server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
