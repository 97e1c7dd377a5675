package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/campus-helpdesk/internal/api/http"
	"github.com/spec-kit/campus-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/campus-helpdesk/internal/auth"
	"github.com/spec-kit/campus-helpdesk/internal/cache"
	"github.com/spec-kit/campus-helpdesk/internal/config"
	"github.com/spec-kit/campus-helpdesk/internal/events"
	"github.com/spec-kit/campus-helpdesk/internal/mailer"
	"github.com/spec-kit/campus-helpdesk/internal/observability"
	"github.com/spec-kit/campus-helpdesk/internal/persistence"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
	"github.com/spec-kit/campus-helpdesk/internal/service"
	"github.com/spec-kit/campus-helpdesk/internal/worker"
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
	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required to serve tickets")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := repository.NewStore(pg.PoolHandle())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Store:      store,
		Cache:      cache.NewUnreadCounter(redis.Client, cfg.Notification.UnreadCacheTTL()),
		Mailer:     mailer.New(cfg.Mail, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
		Config:     cfg.Notification,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:         store,
		Routing:       service.NewRoutingEngine(cfg.Routing),
		Forms:         service.NewTicketForms(),
		Notifications: notificationService,
		Dispatcher:    dispatcher,
		Logger:        logger,
		PreviewLength: cfg.Notification.PreviewLength,
	})
	staffService := service.NewStaffService(*cfg, store)
	authService := service.NewAuthService(*cfg, store.Directory())
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Directory())

	worker.StartMailWorker(notificationService, dispatcher, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Me:             handlers.NewMeHandler(staffService, notificationService),
		AuthMiddleware: authMiddleware,
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
