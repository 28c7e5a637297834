package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/barbershop-api/internal/api/http"
	"github.com/spec-kit/barbershop-api/internal/api/http/handlers"
	"github.com/spec-kit/barbershop-api/internal/auth"
	"github.com/spec-kit/barbershop-api/internal/config"
	"github.com/spec-kit/barbershop-api/internal/events"
	"github.com/spec-kit/barbershop-api/internal/limiter"
	"github.com/spec-kit/barbershop-api/internal/observability"
	"github.com/spec-kit/barbershop-api/internal/persistence"
	"github.com/spec-kit/barbershop-api/internal/repository"
	"github.com/spec-kit/barbershop-api/internal/service"
	"github.com/spec-kit/barbershop-api/internal/worker"
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

	if err := pg.Migrate(ctx, logger, false); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	loginLimiter := redis.LoginLimiter(cfg.Login, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), cfg.Notification.WebhookURL, logger)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Limiter:    loginLimiter,
		Dispatcher: dispatcher,
		Throttled:  metrics,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo, dispatcher, logger)
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		ScheduleRepo: scheduleRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Location:     cfg.App.Location(),
	})
	gate := auth.NewGate(authService.TokenCodec(), metrics)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:           logger,
		Metrics:          metrics,
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:     handlers.NewUsersHandler(authService, userService),
		Schedules: handlers.NewSchedulesHandler(scheduleService),
		Gate:      gate,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),

		ClientLimiter: limiter.NewRequestLimiter(cfg.Login.IPRatePerMinute),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
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
