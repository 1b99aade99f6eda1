package emotion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cqox-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

func TestListCompletedJoinsOutcomeAndTraits(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewEpisodeRecordRepo(db, testutil.Logger(t))

	withTraits := uuid.New()
	noTraits := uuid.New()
	testutil.SeedTraitProfile(t, ctx, db, withTraits, 7, 3)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	second := testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{
		UserID: withTraits, ScheduledAt: base.Add(time.Hour), WithOutcome: true,
		PreAnxiety: 6, CryingLevel: 4, StressAfter: 3,
		EvalThreat: pointers.Int(8), Suppress: pointers.Int(2), PartnerRole: pointers.String("上司"),
		Preparations: map[string]int{types.TreatmentBreathing: 7},
	})
	first := testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{
		UserID: withTraits, ScheduledAt: base, WithOutcome: true, CryingLevel: 2,
	})
	// Completed without an outcome, and an outcome on a planned episode: both excluded.
	testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: withTraits, ScheduledAt: base})
	testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: withTraits, Status: types.EpisodePlanned, WithOutcome: true})
	other := testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: noTraits, WithOutcome: true})

	all, err := repo.ListCompleted(dbctx.Context{Ctx: ctx}, EpisodeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	got, err := repo.ListCompleted(dbctx.Context{Ctx: ctx}, EpisodeFilter{UserID: &withTraits})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, first.ID, got[0].EpisodeID)
	require.Equal(t, second.ID, got[1].EpisodeID)

	r := got[1]
	require.Equal(t, 6.0, r.PreAnxiety)
	require.Equal(t, 4.0, r.CryingLevel)
	require.Equal(t, 3.0, r.StressAfter)
	require.Equal(t, 8.0, *r.EvalThreatLevel)
	require.Equal(t, 2.0, *r.SuppressIntentLevel)
	require.Equal(t, "上司", r.PartnerRoleOrDefault())
	require.Equal(t, 7.0, *r.TraitSocialAnxiety)
	require.Equal(t, 3.0, *r.TraitCryingProneness)
	require.Equal(t, 7.0, r.Intensity[types.TreatmentBreathing])
	for _, k := range types.TreatmentKeys {
		_, ok := r.Intensity[k]
		require.True(t, ok, k)
	}
	require.Nil(t, got[0].EvalThreatLevel)
	require.Equal(t, types.UnspecifiedPartner, got[0].PartnerRoleOrDefault())

	lone, err := repo.ListCompleted(dbctx.Context{Ctx: ctx}, EpisodeFilter{UserID: &noTraits})
	require.NoError(t, err)
	require.Len(t, lone, 1)
	require.Equal(t, other.ID, lone[0].EpisodeID)
	require.Nil(t, lone[0].TraitSocialAnxiety)
	require.Nil(t, lone[0].TraitCryingProneness)
}

func TestListCompletedPartnerFilter(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewEpisodeRecordRepo(db, testutil.Logger(t))
	user := uuid.New()

	testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: user, WithOutcome: true, PartnerRole: pointers.String("面接官")})
	testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: user, WithOutcome: true})
	testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: user, WithOutcome: true, PartnerRole: pointers.String("")})
	testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: user, WithOutcome: true, PartnerRole: pointers.String("  ")})
	testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: user, WithOutcome: true, PartnerRole: pointers.String(" 面接官 ")})

	got, err := repo.ListCompleted(dbctx.Context{Ctx: ctx}, EpisodeFilter{UserID: &user, PartnerRole: pointers.String("面接官")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		require.Equal(t, "面接官", r.PartnerRoleOrDefault())
	}

	got, err = repo.ListCompleted(dbctx.Context{Ctx: ctx}, EpisodeFilter{UserID: &user, PartnerRole: pointers.String(types.UnspecifiedPartner)})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, r := range got {
		require.Equal(t, types.UnspecifiedPartner, r.PartnerRoleOrDefault())
	}
}

func TestListCompletedIntensityResolution(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewEpisodeRecordRepo(db, testutil.Logger(t))
	user := uuid.New()
	ep := testutil.SeedEpisode(t, ctx, db, testutil.EpisodeFixture{UserID: user, WithOutcome: true})

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Planned only: falls back to planned.
	testutil.SeedPreparation(t, ctx, db, ep.ID, types.TreatmentJournaling, pointers.Int(4), nil, t0)
	// Actual beats planned.
	testutil.SeedPreparation(t, ctx, db, ep.ID, types.TreatmentMessages, pointers.Int(9), pointers.Int(2), t0)
	// Neither: zero.
	testutil.SeedPreparation(t, ctx, db, ep.ID, types.TreatmentRoleplay, nil, nil, t0)
	// Duplicate key: the most recent row wins.
	testutil.SeedPreparation(t, ctx, db, ep.ID, types.TreatmentSafeWord, nil, pointers.Int(8), t0.Add(time.Minute))
	testutil.SeedPreparation(t, ctx, db, ep.ID, types.TreatmentSafeWord, nil, pointers.Int(1), t0)

	got, err := repo.ListCompleted(dbctx.Context{Ctx: ctx}, EpisodeFilter{UserID: &user})
	require.NoError(t, err)
	require.Len(t, got, 1)
	in := got[0].Intensity
	require.Equal(t, 4.0, in[types.TreatmentJournaling])
	require.Equal(t, 2.0, in[types.TreatmentMessages])
	require.Equal(t, 0.0, in[types.TreatmentRoleplay])
	require.Equal(t, 8.0, in[types.TreatmentSafeWord])
	require.Equal(t, 0.0, in[types.TreatmentBreathing])
}
