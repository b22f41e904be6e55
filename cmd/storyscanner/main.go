package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"StoryScanner/internal/app"
	"StoryScanner/internal/config"
	"StoryScanner/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
