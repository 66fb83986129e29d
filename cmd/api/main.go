package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/support-kit/case-assistant/internal/api/http"
	"github.com/support-kit/case-assistant/internal/api/http/handlers"
	"github.com/support-kit/case-assistant/internal/auth"
	"github.com/support-kit/case-assistant/internal/config"
	"github.com/support-kit/case-assistant/internal/events"
	"github.com/support-kit/case-assistant/internal/observability"
	"github.com/support-kit/case-assistant/internal/pagination"
	"github.com/support-kit/case-assistant/internal/persistence"
	"github.com/support-kit/case-assistant/internal/repository"
	"github.com/support-kit/case-assistant/internal/service"
	"github.com/support-kit/case-assistant/internal/servicenow"
	"github.com/support-kit/case-assistant/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
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

	snClient := servicenow.NewClient(cfg.ServiceNow, logger)
	caseRepo := repository.NewCaseRepository(snClient, cfg.ServiceNow, logger)
	accountRepo := repository.NewAccountRepository(snClient, cfg.ServiceNow)
	suggestionCache := repository.NewSuggestionCache(redis.Client, cfg.Search.SuggestCacheTTL(), logger)

	// Without Postgres the codec keeps every token inline and there is no
	// state table to sweep.
	var stateRepo repository.SearchStateRepository
	if pool := pg.PoolHandle(); pool != nil {
		stateRepo = repository.NewSearchStateRepository(pool)
	} else {
		logger.Warn("postgres unavailable; pagination tokens stay inline and state sweeping is disabled")
	}

	dispatcher := events.NewInMemoryDispatcher()

	searchService := service.NewCaseSearchService(service.SearchDependencies{
		CaseRepo:        caseRepo,
		AccountRepo:     accountRepo,
		SuggestionCache: suggestionCache,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
	})
	escalationService := service.NewEscalationService(dispatcher, logger, cfg.Escalation)
	worker.StartEscalationWorker(escalationService)

	codec := pagination.NewCodec(stateRepo, logger, metrics, pagination.Options{
		InlineBudget: cfg.Search.InlineTokenBudget,
		StateTTL:     cfg.Search.StateTTL(),
	})

	var sweeper *worker.StateSweeper
	if stateRepo != nil {
		sweeper = worker.NewStateSweeper(stateRepo, logger, cfg.Search.SweepSchedule)
		if err := sweeper.Start(ctx); err != nil {
			logger.Fatal("failed to start state sweeper", zap.Error(err))
		}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics)
	searchHandler := handlers.NewSearchHandler(searchService, codec)
	workloadHandler := handlers.NewWorkloadHandler(searchService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Search:         searchHandler,
		Workload:       workloadHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	sweeper.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
