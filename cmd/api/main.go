package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"crm-service/internal/app"
	"crm-service/internal/config"

	"go.uber.org/zap"
)

func main() {
	envPath := flag.String("env", ".env", "path to .env file")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("[MAIN] failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("[MAIN] failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := app.NewServer(cfg, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}
