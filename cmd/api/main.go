package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-engine/internal/api/http"
	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/service"
	"github.com/spec-kit/sla-engine/internal/slaclock"
	"github.com/spec-kit/sla-engine/internal/worker"
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

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	pool := pg.PoolHandle()
	staffRepo := repository.NewStaffRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	calendarRepo := repository.NewCalendarRepository(pool)
	policyRepo := repository.NewPolicyRepository(pool)
	slaRepo := repository.NewSlaRepository(pool)

	engine := slaclock.NewEngine(
		domain.NewStatusSet(cfg.Sla.CountedStatuses...),
		domain.NewStatusSet(cfg.Sla.PausedStatuses...),
	)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, staffRepo)
	calendarService := service.NewCalendarService(calendarRepo, logger)
	policyService := service.NewPolicyService(policyRepo, logger)
	slaService := service.NewSlaService(
		engine,
		ticketRepo,
		historyRepo,
		calendarRepo,
		slaRepo,
		policyService,
		dispatcher,
		redis,
		cfg.Sla.StatsCacheTTL(),
		metrics,
		logger,
	)
	recomputeService := service.NewRecomputeService(
		slaService,
		ticketRepo,
		cfg.Sla.RecomputeWorkers,
		cfg.Sla.RecomputeBatchSize,
		metrics,
		logger,
	)
	notificationService := service.NewNotificationService(cfg.Notification, logger)
	worker.RegisterNotificationHandlers(dispatcher, notificationService)

	recomputeWorker := worker.NewRecomputeWorker(recomputeService, cfg.Sla.RecomputeSchedule, logger)
	if err := recomputeWorker.Start(); err != nil {
		logger.Fatal("failed to start recompute worker", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Staff:          handlers.NewStaffHandler(authService),
		Tickets:        handlers.NewTicketsHandler(slaService),
		Calendars:      handlers.NewCalendarsHandler(calendarService),
		Policies:       handlers.NewPoliciesHandler(policyService),
		Sla:            handlers.NewSlaHandler(slaService, recomputeService),
		AuthMiddleware: authMiddleware,
		Registry:       registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	recomputeWorker.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
