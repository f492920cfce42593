package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/logistics-realtime/internal/api/http"
	"github.com/spec-kit/logistics-realtime/internal/api/http/handlers"
	"github.com/spec-kit/logistics-realtime/internal/auth"
	"github.com/spec-kit/logistics-realtime/internal/config"
	"github.com/spec-kit/logistics-realtime/internal/events"
	"github.com/spec-kit/logistics-realtime/internal/observability"
	"github.com/spec-kit/logistics-realtime/internal/persistence"
	"github.com/spec-kit/logistics-realtime/internal/presence"
	"github.com/spec-kit/logistics-realtime/internal/realtime"
	"github.com/spec-kit/logistics-realtime/internal/repository"
	"github.com/spec-kit/logistics-realtime/internal/service"
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

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)

	statusSink := presence.MultiSink{
		presence.NewRedisSink(redis.Client),
		presence.NewRepositorySink(userRepo),
	}
	registry := presence.NewRegistry(statusSink, cfg.Presence.SinkTimeout(), logger)
	defer registry.Close()

	hub := realtime.NewHub(logger)
	emitter := realtime.NewEmitter(hub, metrics, logger)
	realtime.Init(emitter)
	defer realtime.Reset()

	relay := realtime.NewRelay(hub, registry, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authenticator := auth.NewSocketAuthenticator(tokenManager, userRepo)
	socketHandler := realtime.NewSocketHandler(authenticator, hub, registry, relay, conversationRepo, metrics, logger, cfg.Realtime)

	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, emitter, logger)
	notificationService.RegisterHandlers()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, hub)
	eventsHandler := handlers.NewEventsHandler(dispatcher, logger)
	notificationsHandler := handlers.NewNotificationsHandler(notificationService, logger)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Events:         eventsHandler,
		Notifications:  notificationsHandler,
		Socket:         socketHandler,
		InternalAPIKey: cfg.App.InternalAPIKey,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
