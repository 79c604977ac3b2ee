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

	httptransport "github.com/spec-kit/favorite-board/internal/api/http"
	"github.com/spec-kit/favorite-board/internal/api/http/handlers"
	"github.com/spec-kit/favorite-board/internal/auth"
	"github.com/spec-kit/favorite-board/internal/config"
	"github.com/spec-kit/favorite-board/internal/delivery"
	"github.com/spec-kit/favorite-board/internal/events"
	"github.com/spec-kit/favorite-board/internal/observability"
	"github.com/spec-kit/favorite-board/internal/persistence"
	"github.com/spec-kit/favorite-board/internal/repository"
	"github.com/spec-kit/favorite-board/internal/service"
	"github.com/spec-kit/favorite-board/internal/worker"
)

const shutdownTimeout = 30 * time.Second

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var throttle auth.Throttle = auth.NoopThrottle{}
	if redis.Enabled() {
		throttle = auth.NewRedisThrottle(redis.Client, cfg.Auth.MagicLinkMaxRequests, cfg.Auth.MagicLinkWindow())
	}

	var channel delivery.Channel
	if cfg.Notification.SMTPConfigured() {
		channel = delivery.NewSMTPChannel(cfg.Notification)
		logger.Info("smtp delivery enabled",
			zap.String("host", cfg.Notification.SMTPHost),
			zap.Int("port", cfg.Notification.SMTPPort))
	} else {
		channel = delivery.NewLogChannel(logger)
		logger.Warn("SMTP credentials missing; deliveries will only be logged")
	}

	metrics := observability.NewMetrics()
	repos := repository.NewRepositories(pg.PoolHandle())

	pool := worker.NewPool(worker.Options{
		Workers:    cfg.Notification.Workers,
		QueueSize:  cfg.Notification.QueueSize,
		JobTimeout: cfg.Notification.SendTimeout(),
	}, logger.Named("fanout"))

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		PrincipalRepo: repos.Principals,
		Channel:       channel,
		Pool:          pool,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		BaseURL:       cfg.App.BaseURL,
	})
	notificationService.RegisterHandlers()

	authService := service.NewAuthService(service.AuthDependencies{
		PrincipalRepo: repos.Principals,
		TokenManager:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTLMinutes),
		Throttle:      throttle,
		Dispatcher:    dispatcher,
		Logger:        logger,
		BaseURL:       cfg.App.BaseURL,
		MagicLinkTTL:  cfg.Auth.MagicLinkTTL(),
	})
	favoriteService := service.NewFavoriteService(service.FavoriteDependencies{
		FavoriteRepo: repos.Favorites,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	subscriptionService := service.NewSubscriptionService(repos.Principals, logger)
	userService := service.NewUserService(repos.Principals, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.CookieSecure),
		Subscriptions:  handlers.NewSubscriptionsHandler(subscriptionService),
		Favorites:      handlers.NewFavoritesHandler(favoriteService),
		Admin:          handlers.NewAdminHandler(userService, metrics),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		logger.Warn("deliveries abandoned at shutdown", zap.Int64("in_flight", pool.InFlight()), zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
