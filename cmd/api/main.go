package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/it-helpdesk/internal/api/http"
	"github.com/spec-kit/it-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/it-helpdesk/internal/auth"
	"github.com/spec-kit/it-helpdesk/internal/config"
	"github.com/spec-kit/it-helpdesk/internal/events"
	"github.com/spec-kit/it-helpdesk/internal/notify"
	"github.com/spec-kit/it-helpdesk/internal/observability"
	"github.com/spec-kit/it-helpdesk/internal/persistence"
	"github.com/spec-kit/it-helpdesk/internal/store"
	"github.com/spec-kit/it-helpdesk/internal/worker"
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

	adapter, closeAdapter, err := newPersistence(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init persistence", zap.Error(err))
	}
	defer closeAdapter()

	dispatcher := events.NewInMemoryDispatcher()
	history := notify.NewLog()

	ticketStore, err := store.New(ctx, store.Dependencies{
		Persistence: adapter,
		Dispatcher:  dispatcher,
		History:     history,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to load ticket store", zap.Error(err))
	}

	mailer := notify.NewMailer(&notify.LogSender{Logger: logger}, history, cfg.Notification.AdminEmail, logger)
	worker.StartNotificationWorker(notify.NewService(dispatcher, mailer, logger))

	roster, err := auth.NewRoster(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to build credential roster", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Auth:           handlers.NewAuthHandler(roster, tokens),
		Tickets:        handlers.NewTicketsHandler(ticketStore),
		Stats:          handlers.NewStatsHandler(ticketStore),
		Admin:          handlers.NewAdminHandler(ticketStore, metrics),
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

func newPersistence(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persistence.Adapter, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := persistence.NewPostgresStore(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case config.StorageDriverRedis:
		rd := persistence.NewRedisStore(cfg.Redis, logger)
		return rd, rd.Close, nil
	default:
		fs, err := persistence.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
