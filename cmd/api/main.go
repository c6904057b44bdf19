package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-service/internal/api/http"
	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/persistence"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/sla"
	"github.com/spec-kit/sla-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	holidayRepo := repository.NewHolidayRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	hours, err := cfg.SLA.BusinessHours()
	if err != nil {
		logger.Fatal("invalid business hours", zap.Error(err))
	}
	calendar := sla.NewCalendar(hours, holidayRepo, sla.CalendarOptions{
		TTL:            cfg.SLA.HolidayCacheTTL,
		Logger:         logger,
		OnRefreshError: metrics.RecordHolidayRefreshFailure,
	})
	policy := sla.NewPolicy(nil, logger)
	thresholds := cfg.SLA.Thresholds()

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartHistoryWorker(service.NewHistoryService(dispatcher, historyRepo, logger))

	slaService := service.NewSLAService(service.SLADependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Calendar:    calendar,
		Policy:      policy,
		Thresholds:  thresholds,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	sweepService := service.NewSweepService(service.SweepDependencies{
		TicketRepo: ticketRepo,
		Calendar:   calendar,
		Thresholds: thresholds,
		Notifier:   service.NewNotificationService(notificationRepo, staffRepo, logger),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Workers:    cfg.Sweep.Workers,
	})

	sweepWorker, err := worker.NewSweepWorker(sweepService, worker.NewRedisLocker(redis), cfg.Sweep, cfg.SLA.Timezone, metrics, logger)
	if err != nil {
		logger.Fatal("invalid sweep schedule", zap.Error(err))
	}
	if cfg.Sweep.Enabled {
		sweepWorker.Start()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, staffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		SLA:            handlers.NewSLAHandler(slaService, sweepWorker),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if cfg.Sweep.Enabled {
		sweepWorker.Stop(shutdownCtx)
	}
	_ = app.ShutdownWithContext(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
