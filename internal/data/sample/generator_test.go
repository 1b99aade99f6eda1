package sample

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	"github.com/yungbote/cqox-backend/internal/data/repos"
	"github.com/yungbote/cqox-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Episodes = 400
	cfg.Users = 6
	cfg.HeavyUsers = 2
	return cfg
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(smallConfig())
	require.NoError(t, err)
	b, err := Generate(smallConfig())
	require.NoError(t, err)

	require.Equal(t, a.Users, b.Users)
	require.Len(t, b.Episodes, len(a.Episodes))
	for i := range a.Episodes {
		require.Equal(t, a.Episodes[i].ID, b.Episodes[i].ID)
		require.Equal(t, a.Episodes[i].Status, b.Episodes[i].Status)
	}
	require.Len(t, b.Outcomes, len(a.Outcomes))

	other := smallConfig()
	other.Seed = 7
	c, err := Generate(other)
	require.NoError(t, err)
	require.NotEqual(t, a.Episodes[0].ID, c.Episodes[0].ID)
}

func TestGenerateRespectsDomains(t *testing.T) {
	cfg := smallConfig()
	data, err := Generate(cfg)
	require.NoError(t, err)
	require.Len(t, data.Episodes, cfg.Episodes)

	completed := map[string]bool{}
	for _, ep := range data.Episodes {
		if ep.ScheduledAt.After(cfg.Today) {
			require.NotEqual(t, types.EpisodeCompleted, ep.Status)
		}
		if ep.Status == types.EpisodeCompleted {
			completed[ep.ID.String()] = true
		}
		require.GreaterOrEqual(t, ep.PreAnxiety, 0)
		require.LessOrEqual(t, ep.PreAnxiety, 10)
		require.NotNil(t, ep.EvalThreatLevel)
	}
	require.Len(t, data.Outcomes, len(completed))
	for _, o := range data.Outcomes {
		require.True(t, completed[o.EpisodeID.String()])
		require.GreaterOrEqual(t, o.RelationshipImpact, -5)
		require.LessOrEqual(t, o.RelationshipImpact, 5)
		require.True(t, o.PartnerReaction.Valid())
	}
	for _, p := range data.Preparations {
		require.True(t, types.IsTreatmentKey(p.TemplateKey))
		require.Greater(t, *p.PlannedIntensity, 0)
	}

	_, err = Generate(Config{})
	require.Error(t, err)
}

func TestWriteFeedsTheExtractor(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	data, err := Generate(smallConfig())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Write(ctx, aggregates.NewGormTxRunner(db), set, data))

	records, err := set.Records.ListCompleted(dbctx.Context{Ctx: ctx}, repos.EpisodeFilter{})
	require.NoError(t, err)
	require.Len(t, records, len(data.Outcomes))

	withTraits := 0
	for _, r := range records {
		if r.TraitSocialAnxiety != nil {
			withTraits++
		}
	}
	if len(data.Traits) > 0 {
		require.Positive(t, withTraits)
	}
}
