package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"clientledger/internal/amqp"
	"clientledger/internal/backend"
	"clientledger/internal/config"
	apphttp "clientledger/internal/http"
	applog "clientledger/internal/log"
	"clientledger/internal/reports"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "server"})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := backend.NewFactory(logger.Logger)
	source, err := factory.CreateSource(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize job source", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if source.Cleanup != nil {
		defer func() {
			if err := source.Cleanup(); err != nil {
				logger.Error("Job source cleanup failed", "error", err)
			}
		}()
	}

	svc := reports.NewService(source.Source, cfg.CacheSize, cfg.CacheTTL)

	// AMQP is optional; without it the refresh endpoint still drops caches
	// locally, it just doesn't notify the worker.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without messaging", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	var publisher apphttp.ChangePublisher
	if amqpClient != nil {
		publisher = amqpClient
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, publisher)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting clientledger server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeWithReconnect(gctx, cfg.AMQPURL, func(msg *amqp.JobsChangedMessage) error {
				dropped := svc.Invalidate(msg.UserID)
				logger.Info("Invalidated cached reports", "user_id", msg.UserID, "dropped", dropped)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
