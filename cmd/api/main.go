package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/campuskit/access-service/internal/api/http"
	"github.com/campuskit/access-service/internal/api/http/handlers"
	"github.com/campuskit/access-service/internal/auth"
	"github.com/campuskit/access-service/internal/config"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/observability"
	"github.com/campuskit/access-service/internal/persistence"
	"github.com/campuskit/access-service/internal/ratelimit"
	"github.com/campuskit/access-service/internal/repository"
	"github.com/campuskit/access-service/internal/security"
	"github.com/campuskit/access-service/internal/service"
	"github.com/campuskit/access-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := domain.AssertAdminSuperset(); err != nil {
		log.Fatalf("permission matrix invalid: %v", err)
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	sink := security.Sink(security.NewLogSink(logger))
	if cfg.Security.PublishToRedis {
		sink = security.Fanout{
			security.NewLogSink(logger),
			security.NewStreamSink(rdb.Client, cfg.Security.EventStream, logger),
		}
		auditWorker := worker.NewAuditWorker(rdb.Client, cfg.Security, logger)
		go auditWorker.Run(ctx)
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Sink:              sink,
	})
	gate := auth.NewGate(authService.TokenManager(), userRepo)
	userService := service.NewUserService(userRepo, gate, sink)

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	validate := validator.New()
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	requestCtx := httptransport.NewRequestContext()
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Auth:       handlers.NewAuthHandler(authService, requestCtx),
		AdminUsers: handlers.NewAdminUsersHandler(userService, requestCtx),
		Analytics:  handlers.NewAnalyticsHandler(metrics),
		Gate:       gate,
		Limiter:    limiter,
		Validate:   validate,
		Metrics:    metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
