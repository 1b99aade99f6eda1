package emotion

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cqox-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

func TestTreatmentEffectUpsertUpdatesInPlace(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewTreatmentEffectRepo(db, testutil.Logger(t))
	user := uuid.New()

	first := &types.TreatmentEffect{
		UserID: user, TreatmentKey: types.TreatmentJournaling, OutcomeName: types.OutcomeCrying,
		ATE: -1.2, CILower: pointers.Float64(-2), CIUpper: pointers.Float64(-0.4),
		NTreated: 20, NControl: 15, ModelVersion: types.TreatmentModelVersion,
	}
	require.NoError(t, repo.Upsert(dbc, first))
	require.NotEqual(t, uuid.Nil, first.ID)

	second := &types.TreatmentEffect{
		UserID: user, TreatmentKey: types.TreatmentJournaling, OutcomeName: types.OutcomeCrying,
		ATE: -0.5, CILower: pointers.Float64(-1), CIUpper: pointers.Float64(0),
		NTreated: 22, NControl: 16, ModelVersion: types.TreatmentModelVersion,
	}
	require.NoError(t, repo.Upsert(dbc, second))
	require.Equal(t, first.ID, second.ID)

	other := &types.TreatmentEffect{
		UserID: user, TreatmentKey: types.TreatmentBreathing, OutcomeName: types.OutcomeCrying,
		ATE: 0.3, NTreated: 10, NControl: 25, ModelVersion: types.TreatmentModelVersion,
	}
	require.NoError(t, repo.Upsert(dbc, other))

	rows, err := repo.ListByUser(dbc, user)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, types.TreatmentBreathing, rows[0].TreatmentKey)
	require.Equal(t, -0.5, rows[1].ATE)
	require.Equal(t, 22, rows[1].NTreated)
	require.Equal(t, 0.0, *rows[1].CIUpper)
}

func TestPathSummaryUpsertOverwritesAllColumns(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewPathSummaryRepo(db, testutil.Logger(t))
	user := uuid.New()

	missing, err := repo.GetByUser(dbc, user)
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, repo.Upsert(dbc, &types.PathSummary{
		UserID: user, BetaEvalToCry: pointers.Float64(1), TotalEvalToCry: pointers.Float64(1.5), NEpisodes: 12,
	}))
	require.NoError(t, repo.Upsert(dbc, &types.PathSummary{
		UserID: user, BetaEvalToCry: pointers.Float64(2), NEpisodes: 14,
	}))

	got, err := repo.GetByUser(dbc, user)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 2.0, *got.BetaEvalToCry)
	require.Nil(t, got.TotalEvalToCry)
	require.Equal(t, 14, got.NEpisodes)

	var count int64
	require.NoError(t, db.Model(&types.PathSummary{}).Where("user_id = ?", user).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPathPartnerSummaryUpsert(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewPathPartnerSummaryRepo(db, testutil.Logger(t))
	user := uuid.New()

	require.NoError(t, repo.Upsert(dbc, &types.PathPartnerSummary{UserID: user, PartnerRole: "上司", TotalEvalToCry: pointers.Float64(1), NEpisodes: 10}))
	require.NoError(t, repo.Upsert(dbc, &types.PathPartnerSummary{UserID: user, PartnerRole: "上司", TotalEvalToCry: pointers.Float64(3), NEpisodes: 11}))
	require.NoError(t, repo.Upsert(dbc, &types.PathPartnerSummary{UserID: user, PartnerRole: types.UnspecifiedPartner, NEpisodes: 10}))

	rows, err := repo.ListByUser(dbc, user)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	byRole := map[string]*types.PathPartnerSummary{}
	for _, r := range rows {
		byRole[r.PartnerRole] = r
	}
	require.Equal(t, 3.0, *byRole["上司"].TotalEvalToCry)
	require.Equal(t, 11, byRole["上司"].NEpisodes)
}

func TestEpisodeLifecycle(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	log := testutil.Logger(t)
	episodes := NewEpisodeRepo(db, log)
	outcomes := NewOutcomeRepo(db, log)
	traits := NewTraitProfileRepo(db, log)
	user := uuid.New()

	created, err := episodes.Create(dbc, []*types.Episode{{
		UserID: user, ScenarioType: types.ScenarioOneOnOne, Topic: "評価面談", Location: "office",
	}})
	require.NoError(t, err)
	ep := created[0]
	require.Equal(t, types.EpisodePlanned, ep.Status)

	ids, err := episodes.ListUserIDsWithCompleted(dbc)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, outcomes.Create(dbc, &types.Outcome{EpisodeID: ep.ID, CryingLevel: 3}))
	require.NoError(t, episodes.MarkCompleted(dbc, ep.ID))

	got, err := episodes.GetByID(dbc, ep.ID)
	require.NoError(t, err)
	require.Equal(t, types.EpisodeCompleted, got.Status)
	o, err := outcomes.GetByEpisodeID(dbc, ep.ID)
	require.NoError(t, err)
	require.Equal(t, 3, o.CryingLevel)

	ids, err = episodes.ListUserIDsWithCompleted(dbc)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{user}, ids)

	require.NoError(t, traits.Upsert(dbc, &types.TraitProfile{UserID: user, TraitSocialAnxiety: 4}))
	require.NoError(t, traits.Upsert(dbc, &types.TraitProfile{UserID: user, TraitSocialAnxiety: 6}))
	tp, err := traits.GetByUserID(dbc, user)
	require.NoError(t, err)
	require.Equal(t, 6, tp.TraitSocialAnxiety)

	none, err := episodes.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	require.Nil(t, none)
}
