package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/cqox-backend/internal/causal"
	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	"github.com/yungbote/cqox-backend/internal/data/db"
	"github.com/yungbote/cqox-backend/internal/data/repos"
	httpserver "github.com/yungbote/cqox-backend/internal/http"
	httpH "github.com/yungbote/cqox-backend/internal/http/handlers"
	"github.com/yungbote/cqox-backend/internal/jobs/pipeline/causal_estimate"
	jobruntime "github.com/yungbote/cqox-backend/internal/jobs/runtime"
	"github.com/yungbote/cqox-backend/internal/jobs/worker"
	"github.com/yungbote/cqox-backend/internal/observability"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/services"
)

type Services struct {
	Bus        services.EventBus
	Notifier   services.JobNotifier
	Jobs       services.JobService
	Estimation services.EstimationService
	Outcomes   services.OutcomeService
	Results    services.ResultsService
}

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    repos.Set
	Services Services
	Metrics  *observability.Metrics
	Worker   *worker.Worker

	store        *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New wires the whole backend. cfg is normally LoadConfig's result; log may
// be shared with the caller.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log)

	store, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrateAll(store.DB()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := store.DB()

	catalog, err := causal.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	log.Info("Wiring repos...")
	reposet := repos.NewSet(theDB, log)

	log.Info("Wiring services...")
	bus := newEventBus(log, cfg)
	notifier := services.NewJobNotifier(bus, log)
	jobs := services.NewJobService(theDB, log, reposet.JobRuns, notifier)
	resultStore := aggregates.NewResultStore(aggregates.ResultStoreDeps{
		BaseDeps: aggregates.BaseDeps{
			DB:    theDB,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Effects:  reposet.Effects,
		Paths:    reposet.PathSummaries,
		Partners: reposet.PartnerSummaries,
	})
	serviceset := Services{
		Bus:      bus,
		Notifier: notifier,
		Jobs:     jobs,
		Estimation: services.NewEstimationService(
			log, reposet.Records, resultStore, causal.NewEncoder(catalog), cfg.Estimator, bus, metrics,
		),
		Outcomes: services.NewOutcomeService(
			log, aggregates.NewGormTxRunner(theDB), reposet.Episodes, reposet.Outcomes, jobs,
		),
		Results: services.NewResultsService(log, reposet.Effects, reposet.PathSummaries, reposet.PartnerSummaries),
	}

	registry := jobruntime.NewRegistry()
	if err := registry.Register(causal_estimate.New(log, serviceset.Estimation)); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("register job handler: %w", err)
	}
	log.Info("Registered job handlers", "job_types", registry.Types())

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Worker:       worker.NewWorker(theDB, log, reposet.JobRuns, registry, notifier, metrics, cfg.Worker),
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

// newEventBus falls back to logging when Redis is not configured or not
// reachable; events are best-effort notifications.
func newEventBus(log *logger.Logger, cfg Config) services.EventBus {
	if cfg.RedisAddr == "" {
		return services.NewLogEventBus(log)
	}
	bus, err := services.NewRedisEventBus(log, services.RedisBusConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
	if err != nil {
		log.Warn("Redis event bus unavailable, logging events instead", "error", err)
		return services.NewLogEventBus(log)
	}
	return bus
}

// Start launches the job worker pool.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if a.Worker != nil {
		a.Worker.Start(ctx)
	}
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := httpserver.NewServer(httpserver.RouterConfig{
		Log:            a.Log,
		Metrics:        a.Metrics,
		ServiceName:    a.Cfg.Otel.ServiceName,
		CORSOrigins:    a.Cfg.CORSOrigins,
		HealthHandler:  httpH.NewHealthHandler(a.DB),
		ResultsHandler: httpH.NewResultsHandler(a.Services.Results),
		OutcomeHandler: httpH.NewOutcomeHandler(a.Services.Outcomes),
	})
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return srv.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		if a.Worker != nil {
			a.Worker.Wait()
		}
	}
	if a.Services.Bus != nil {
		_ = a.Services.Bus.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
