package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"clientledger/internal/backend"
	"clientledger/internal/config"
	"clientledger/internal/core"
	"clientledger/internal/export/sheets"
	applog "clientledger/internal/log"
	"clientledger/internal/reports"
)

// One-shot export: compute a period overview and append it to the
// configured spreadsheet.
func main() {
	userID := flag.String("user", "", "user whose overview to export")
	period := flag.String("period", "", "period to export (year or empty for all time)")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "export"})
	applog.SetDefault(logger)

	if *userID == "" {
		logger.Error("Missing required -user flag")
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	source, err := backend.NewFactory(logger.Logger).CreateSource(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize job source", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if source.Cleanup != nil {
		defer source.Cleanup()
	}

	exporter, err := sheets.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize sheets exporter", "error", err)
		os.Exit(1)
	}

	svc := reports.NewService(source.Source, cfg.CacheSize, cfg.CacheTTL)
	p := core.ParsePeriod(*period)

	ov, err := svc.Overview(ctx, *userID, p)
	if err != nil {
		logger.Error("Failed to compute overview", "error", err, "user_id", *userID)
		os.Exit(1)
	}

	if err := exporter.AppendOverview(ctx, ov); err != nil {
		logger.Error("Failed to append overview", "error", err)
		os.Exit(1)
	}

	logger.Info("Exported overview",
		"user_id", *userID,
		"period", p.String(),
		"clients", len(ov.Clients))
}
