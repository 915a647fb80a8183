package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ideas-service/internal/api/http"
	"github.com/spec-kit/ideas-service/internal/api/http/handlers"
	"github.com/spec-kit/ideas-service/internal/auth"
	"github.com/spec-kit/ideas-service/internal/config"
	"github.com/spec-kit/ideas-service/internal/events"
	"github.com/spec-kit/ideas-service/internal/observability"
	"github.com/spec-kit/ideas-service/internal/persistence"
	"github.com/spec-kit/ideas-service/internal/repository"
	"github.com/spec-kit/ideas-service/internal/service"
	"github.com/spec-kit/ideas-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	secret, err := auth.LoadSecret(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("invalid signing secret", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ideaRepo := repository.NewIdeaRepository(pool)
	historyRepo := repository.NewIdeaHistoryRepository(pool)

	metrics := observability.NewMetrics("ideas")
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, historyRepo, logger))

	tokens := auth.NewTokenManager(secret)
	throttle := auth.NewLoginThrottle(redis.Client, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Throttle:   throttle,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	ideaService := service.NewIdeaService(ideaRepo, historyRepo, dispatcher, logger)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo, logger, metrics)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, logger),
		Auth:           handlers.NewAuthHandler(authService, cfg.App.IsProduction()),
		Ideas:          handlers.NewIdeasHandler(ideaService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
