package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kasklub/internal/amqp"
	"kasklub/internal/config"
	applog "kasklub/internal/log"
	"kasklub/internal/sheets"
	gsheet "kasklub/internal/sheets/google"
	mem "kasklub/internal/sheets/memory"
	"kasklub/internal/storage"
	"kasklub/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting kasklub-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if !cfg.MirrorEnabled() {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	// The worker reads the ledger store directly so stale messages can
	// never resurrect deleted rows.
	store, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var mirror sheets.LedgerMirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		mirror = mem.New()
		logger.Info("No GOOGLE_SPREADSHEET_ID provided - using in-memory mirror")
	}

	mirrorWorker := worker.NewMirrorWorker(store, mirror)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// On startup, replay the whole ledger into the mirror to cover
	// messages dropped while the worker was down.
	if err := mirrorWorker.CatchUpScan(ctx); err != nil {
		logger.Error("Startup catch-up scan failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqp.ConsumeMirrorWithReconnect(gctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, mirrorWorker.HandleMessage)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := mirrorWorker.CatchUpScan(gctx); err != nil {
					logger.Error("Periodic catch-up scan failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
