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

	httptransport "github.com/spec-kit/feedback-service/internal/api/http"
	"github.com/spec-kit/feedback-service/internal/api/http/handlers"
	"github.com/spec-kit/feedback-service/internal/auth"
	"github.com/spec-kit/feedback-service/internal/cache"
	"github.com/spec-kit/feedback-service/internal/config"
	"github.com/spec-kit/feedback-service/internal/events"
	"github.com/spec-kit/feedback-service/internal/observability"
	"github.com/spec-kit/feedback-service/internal/persistence"
	"github.com/spec-kit/feedback-service/internal/repository"
	"github.com/spec-kit/feedback-service/internal/repository/memory"
	"github.com/spec-kit/feedback-service/internal/service"
	"github.com/spec-kit/feedback-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var store repository.Store
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		mem := memory.New()
		if _, err := mem.SeedEstablishments(ctx); err != nil {
			logger.Fatal("failed to seed in-memory store", zap.Error(err))
		}
		logger.Warn("using in-memory store; data is lost on exit")
		store = mem
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	feedbackCache := cache.NewNoopFeedbackCache()
	var redisPinger handlers.Pinger
	if err := redis.Ping(ctx); err == nil {
		feedbackCache = cache.NewRedisFeedbackCache(redis.Client, cfg.Redis.CacheTTL())
		redisPinger = redis
	} else if !pg.Enabled() {
		logger.Warn("redis unavailable; caching feedback lists in process", zap.Error(err))
		feedbackCache = cache.NewMemoryFeedbackCache(cfg.Redis.CacheTTL())
	} else {
		logger.Warn("feedback list cache disabled", zap.Error(err))
	}

	tokens, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	if err != nil {
		logger.Fatal("invalid token configuration", zap.Error(err))
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	metrics := observability.NewMetrics()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))
	worker.StartCacheInvalidationWorker(service.NewCacheInvalidator(dispatcher, feedbackCache))

	repos := store.Repositories()
	authService := service.NewAuthService(service.AuthDependencies{
		Customers: repos.Customers,
		Tokens:    tokens,
		Hasher:    hasher,
	})
	feedbackService := service.NewFeedbackService(service.FeedbackDependencies{
		Store:      store,
		Cache:      feedbackCache,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	establishmentService := service.NewEstablishmentService(repos.Establishments)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, redisPinger),
		Auth:           handlers.NewAuthHandler(authService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		Establishments: handlers.NewEstablishmentHandler(establishmentService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, logger),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
