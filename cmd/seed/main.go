// Command seed loads the standard outlet directory and ensures an admin account exists.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"crm-service/internal/app"
	"crm-service/internal/config"
	"crm-service/internal/db"
	"crm-service/internal/pkg/jwt"
	"crm-service/internal/repository/postgres"
	authUsecase "crm-service/internal/service/auth"
	outletsvc "crm-service/internal/service/outlet"

	"go.uber.org/zap"
)

func main() {
	envPath := flag.String("env", ".env", "path to .env file")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("[SEED] failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("[SEED] failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding completed")
}

func run(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	if err := db.UpMigrations(cfg.Postgres.DSN); err != nil {
		return err
	}
	pool, err := db.ConnectDB(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	outletService := outletsvc.NewOutletService(postgres.NewOutletRepository(pool), logger)
	if err := outletService.Seed(ctx, outletsvc.StandardOutlets()); err != nil {
		return err
	}

	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		logger.Warn("SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	jwtManager, err := jwt.NewManager(cfg.JWTConfig())
	if err != nil {
		return err
	}
	authService := authUsecase.NewAuthService(postgres.NewUserRepository(pool), jwtManager, logger)
	return authService.EnsureAdminExists(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, cfg.Seed.AdminName)
}
