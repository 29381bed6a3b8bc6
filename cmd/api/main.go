package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-sla/internal/api/http"
	"github.com/spec-kit/helpdesk-sla/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-sla/internal/auth"
	"github.com/spec-kit/helpdesk-sla/internal/cache"
	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/persistence"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
	"github.com/spec-kit/helpdesk-sla/internal/worker"
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

	zone, err := sla.ParseOffset(cfg.SLA.UTCOffset)
	if err != nil {
		logger.Fatal("invalid SLA_UTC_OFFSET", zap.String("offset", cfg.SLA.UTCOffset), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	hoursRepo := repository.NewOperationalHoursRepository(pool)
	holidayRepo := repository.NewHolidayRepository(pool)
	policyRepo := repository.NewSLAPolicyRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	calendarService := service.NewCalendarService(service.CalendarDependencies{
		HoursRepo:   hoursRepo,
		HolidayRepo: holidayRepo,
		Cache:       cache.NewRedisCalendarCache(redis.Client, cfg.SLA.CacheTTL(), logger),
		Zone:        zone,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	policyService := service.NewSLAPolicyService(policyRepo, calendarService, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		HistoryRepo:    historyRepo,
		PolicyRepo:     policyRepo,
		TechnicianRepo: technicianRepo,
		Calendar:       calendarService,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	authService := service.NewAuthService(*cfg, technicianRepo, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartEventSubscribers(dispatcher, notificationService, policyService)

	seedCalendar(ctx, cfg.SLA.CalendarSeedPath, calendarService, logger)
	if _, err := authService.EnsureBootstrapAdmin(ctx, cfg.Auth); err != nil {
		logger.Fatal("failed to create bootstrap admin", zap.Error(err))
	}

	sweeper := worker.NewSLASweeper(worker.SweeperDependencies{
		Tickets:    ticketRepo,
		History:    historyRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Interval:   cfg.SLA.SweepInterval(),
	})
	go sweeper.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		SLA:            handlers.NewSLAHandler(calendarService),
		Calendar:       handlers.NewCalendarAdminHandler(calendarService),
		Policies:       handlers.NewSLAPolicyHandler(policyService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), technicianRepo),
		Metrics:        metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// seedCalendar installs the shipped calendar on an empty database. A missing
// seed file only means the calendar must be configured through the admin API.
func seedCalendar(ctx context.Context, path string, calendar *service.CalendarService, logger *zap.Logger) {
	if path == "" {
		return
	}
	seed, err := config.LoadCalendarSeed(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("calendar seed not found", zap.String("path", path))
			return
		}
		logger.Fatal("failed to load calendar seed", zap.String("path", path), zap.Error(err))
	}
	if _, err := calendar.SeedIfEmpty(ctx, seed); err != nil {
		logger.Fatal("failed to seed calendar", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
