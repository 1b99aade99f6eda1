package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	"github.com/yungbote/cqox-backend/internal/data/sample"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("ESTIMATOR_SEED", "99")
	t.Setenv("ESTIMATOR_BOOTSTRAP_SAMPLES", "40")
	t.Setenv("PATH_INTERVAL_MODE", "marginal")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	require.Equal(t, "file::memory:", cfg.DatabaseURL)
	require.Equal(t, uint64(99), cfg.Estimator.Seed)
	require.Equal(t, 40, cfg.Estimator.Path.Bootstrap)
	require.Equal(t, "marginal", string(cfg.Estimator.Path.IntervalMode))
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, "cqox-backend", cfg.Otel.ServiceName)

	t.Setenv("PATH_INTERVAL_MODE", "sideways")
	_, err = LoadConfig(logger.Nop())
	require.Error(t, err)
}

func TestSeedThenEstimate(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("OTEL_ENABLED", "false")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	cfg.Estimator.Effect.Forest.Trees = 15
	cfg.Estimator.Path.Bootstrap = 20

	ctx := context.Background()
	a, err := New(ctx, logger.Nop(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	gen := sample.DefaultConfig()
	gen.Episodes = 240
	gen.Users = 2
	gen.HeavyUsers = 0
	data, err := sample.Generate(gen)
	require.NoError(t, err)
	require.NoError(t, sample.Write(ctx, aggregates.NewGormTxRunner(a.DB), a.Repos, data))

	summaries, err := a.Services.Estimation.Run(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	effects := 0
	for _, s := range summaries {
		effects += s.Effects
		stored, err := a.Services.Results.TreatmentEffects(ctx, s.UserID)
		require.NoError(t, err)
		require.Len(t, stored, s.Effects)
	}
	require.Positive(t, effects)
}
