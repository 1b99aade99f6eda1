package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/cqox-backend/internal/causal"
	"github.com/yungbote/cqox-backend/internal/data/db"
	"github.com/yungbote/cqox-backend/internal/jobs/worker"
	"github.com/yungbote/cqox-backend/internal/observability"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/platform/envutil"
	"github.com/yungbote/cqox-backend/internal/services"
)

const serviceName = "cqox-backend"

type Config struct {
	DatabaseURL string
	Port        string
	LogMode     string
	CORSOrigins []string
	CatalogPath string

	RedisAddr    string
	RedisChannel string

	Worker    worker.Config
	Estimator services.EstimationConfig
	Otel      observability.OtelConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	est := services.DefaultEstimationConfig()
	est.Seed = envutil.Uint64("ESTIMATOR_SEED", est.Seed)
	est.Effect.Forest.Trees = envutil.Int("ESTIMATOR_FOREST_TREES", est.Effect.Forest.Trees)
	est.Effect.Forest.Workers = envutil.Int("ESTIMATOR_FOREST_WORKERS", est.Effect.Forest.Workers)
	est.Effect.MinRows = envutil.Int("ESTIMATOR_MIN_ROWS", est.Effect.MinRows)
	est.Path.Bootstrap = envutil.Int("ESTIMATOR_BOOTSTRAP_SAMPLES", est.Path.Bootstrap)
	est.Path.MinEpisodes = envutil.Int("ESTIMATOR_MIN_PATH_EPISODES", est.Path.MinEpisodes)

	mode, err := causal.ParseIntervalMode(envutil.String("PATH_INTERVAL_MODE", string(est.Path.IntervalMode)))
	if err != nil {
		return Config{}, fmt.Errorf("PATH_INTERVAL_MODE: %w", err)
	}
	est.Path.IntervalMode = mode

	cfg := Config{
		DatabaseURL:  db.ResolveURL(),
		Port:         envutil.String("PORT", "8080"),
		LogMode:      envutil.String("LOG_MODE", "development"),
		CORSOrigins:  envutil.List("CORS_ORIGINS", nil),
		CatalogPath:  strings.TrimSpace(envutil.String("CATALOG_PATH", "")),
		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_CHANNEL", "cqox-events"),
		Worker:       worker.ConfigFromEnv(),
		Estimator:    est,
		Otel:         observability.OtelConfigFromEnv(serviceName),
	}
	if log != nil {
		log.Info("Loaded configuration",
			"port", cfg.Port,
			"worker_concurrency", cfg.Worker.Concurrency,
			"estimator_seed", est.Seed,
			"forest_trees", est.Effect.Forest.Trees,
			"bootstrap_samples", est.Path.Bootstrap,
			"interval_mode", string(est.Path.IntervalMode),
			"redis", cfg.RedisAddr != "",
			"otel", cfg.Otel.Enabled,
		)
	}
	return cfg, nil
}
