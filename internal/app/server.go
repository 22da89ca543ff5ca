// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"crm-service/internal/config"
	"crm-service/internal/db"
	authHandler "crm-service/internal/handlers/auth"
	customerHandler "crm-service/internal/handlers/customer"
	outletHandler "crm-service/internal/handlers/outlet"
	wsHandler "crm-service/internal/handlers/websocket"
	xilnexHandler "crm-service/internal/handlers/xilnex"
	"crm-service/internal/middleware"
	"crm-service/internal/pkg/jwt"
	"crm-service/internal/pkg/lock"
	"crm-service/internal/repository/postgres"
	authUsecase "crm-service/internal/service/auth"
	customersvc "crm-service/internal/service/customer"
	outletsvc "crm-service/internal/service/outlet"
	"crm-service/internal/service/xilnex"
	"crm-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// Start wires every dependency and serves HTTP until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	logger := s.logger

	// ----- PostgreSQL -----
	if err := db.UpMigrations(s.cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	pool, err := db.ConnectDB(ctx, s.cfg.Postgres.DSN, s.cfg.Postgres.MaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to PostgreSQL")

	// ----- Creation lock -----
	var locker lock.Locker = lock.NewLocalLocker()
	if s.cfg.Redis.Addr != "" {
		redisClient, err := db.NewRedisClient(db.RedisConfig{
			Addresses: []string{s.cfg.Redis.Addr},
			Password:  s.cfg.Redis.Pass,
			DB:        s.cfg.Redis.DB,
			PoolSize:  10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient)
		logger.Info("connected to Redis, using distributed creation lock")
	} else {
		logger.Info("REDIS_ADDR not set, using in-process creation lock")
	}

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWTConfig())
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	outletRepo := postgres.NewOutletRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(jwtManager.Verifier, logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// ----- Services -----
	outletService := outletsvc.NewOutletService(outletRepo, logger)
	xilnexClient := xilnex.NewClient(s.cfg.XilnexConfig(), outletService, logger)
	if s.cfg.Xilnex.Enabled && !xilnexClient.Enabled() {
		logger.Warn("xilnex integration enabled but credentials are missing, sync will be skipped",
			zap.Strings("missing", xilnexClient.MissingCredentials()),
		)
	}
	customerService := customersvc.NewCustomerService(customerRepo, xilnexClient, outletService, locker, hub, logger)
	authService := authUsecase.NewAuthService(userRepo, jwtManager, logger)

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestLogger(logger),
		middleware.CORSMiddleware(s.cfg.FrontendURL),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:     authHandler.NewAuthHandler(authService, logger),
		CustomerHandler: customerHandler.NewCustomerHandler(customerService, s.cfg.Xilnex.BatchSize, logger),
		OutletHandler:   outletHandler.NewOutletHandler(outletService, logger),
		XilnexHandler:   xilnexHandler.NewXilnexHandler(xilnexClient),
		WSHandler:       wsHandler.NewWebSocketHandler(hub, s.cfg.FrontendURL, logger),
		AuthMiddleware:  middleware.NewAuthMiddleware(jwtManager.Verifier),
		Health:          dbWrapper,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
