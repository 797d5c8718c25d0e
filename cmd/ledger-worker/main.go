package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"clientledger/internal/amqp"
	"clientledger/internal/config"
	"clientledger/internal/feed/api"
	applog "clientledger/internal/log"
	"clientledger/internal/storage"
)

// The worker keeps the SQLite mirror current: every jobs-changed message
// triggers a full re-fetch of the user's jobs from the remote feed,
// swapped into the mirror in one transaction.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "worker"})
	applog.SetDefault(logger)

	logger.Info("Starting ledger-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.FeedAPIURL == "" {
		logger.Error("FEED_API_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	feedClient := api.NewClient(cfg.FeedAPIURL)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncUser := func(msg *amqp.JobsChangedMessage) error {
		syncCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		jobs, err := feedClient.ListJobs(syncCtx, msg.UserID)
		if err != nil {
			return err
		}
		if err := repo.ReplaceUserJobs(syncCtx, msg.UserID, jobs); err != nil {
			return err
		}
		logger.Info("Synced user jobs", "user_id", msg.UserID, "jobs", len(jobs))
		return nil
	}

	if err := amqpClient.ConsumeWithReconnect(ctx, cfg.AMQPURL, syncUser); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
