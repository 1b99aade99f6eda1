package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	emotionrepo "github.com/yungbote/cqox-backend/internal/data/repos/emotion"
	"github.com/yungbote/cqox-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

type failingPartnerRepo struct {
	emotionrepo.PathPartnerSummaryRepo
}

func (failingPartnerRepo) Upsert(dbctx.Context, *types.PathPartnerSummary) error {
	return errors.New("disk full")
}

func sampleResults(user uuid.UUID) UserResults {
	return UserResults{
		UserID: user,
		Effects: []*types.TreatmentEffect{{
			UserID: user, TreatmentKey: types.TreatmentJournaling, OutcomeName: types.OutcomeCrying,
			ATE: -1, CILower: pointers.Float64(-2), CIUpper: pointers.Float64(0),
			NTreated: 20, NControl: 12, ModelVersion: types.TreatmentModelVersion,
		}},
		Path:     &types.PathSummary{UserID: user, TotalEvalToCry: pointers.Float64(1.2), NEpisodes: 15},
		Partners: []*types.PathPartnerSummary{{UserID: user, PartnerRole: "上司", TotalEvalToCry: pointers.Float64(0.8), NEpisodes: 11}},
	}
}

func TestResultStoreCommitsAllRows(t *testing.T) {
	db := testutil.DB(t)
	store := NewResultStore(ResultStoreDeps{BaseDeps: BaseDeps{DB: db, Log: testutil.Logger(t)}})
	user := uuid.New()

	require.NoError(t, store.SaveUserResults(context.Background(), sampleResults(user)))
	require.NoError(t, store.SaveUserResults(context.Background(), sampleResults(user)))

	for _, model := range []interface{}{&types.TreatmentEffect{}, &types.PathSummary{}, &types.PathPartnerSummary{}} {
		var n int64
		require.NoError(t, db.Model(model).Where("user_id = ?", user).Count(&n).Error)
		require.Equal(t, int64(1), n)
	}
}

func TestResultStoreRollsBackOnFailure(t *testing.T) {
	db := testutil.DB(t)
	store := NewResultStore(ResultStoreDeps{
		BaseDeps: BaseDeps{DB: db, Log: testutil.Logger(t)},
		Partners: failingPartnerRepo{},
	})
	user := uuid.New()

	err := store.SaveUserResults(context.Background(), sampleResults(user))
	require.Error(t, err)
	require.Equal(t, CodeInternal, CodeOf(err))

	var n int64
	require.NoError(t, db.Model(&types.TreatmentEffect{}).Where("user_id = ?", user).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, db.Model(&types.PathSummary{}).Where("user_id = ?", user).Count(&n).Error)
	require.Zero(t, n)
}

func TestResultStoreRejectsForeignRows(t *testing.T) {
	store := NewResultStore(ResultStoreDeps{BaseDeps: BaseDeps{DB: testutil.DB(t)}})
	res := sampleResults(uuid.New())
	res.Path.UserID = uuid.New()

	err := store.SaveUserResults(context.Background(), res)
	require.True(t, IsCode(err, CodeValidation))
	require.NoError(t, store.SaveUserResults(context.Background(), UserResults{UserID: uuid.New()}))
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError("op", nil))
	require.Equal(t, CodeRetryable, CodeOf(MapError("op", context.Canceled)))
	require.Equal(t, CodeConflict, CodeOf(MapError("op", errors.New("UNIQUE constraint failed: emotion_path_summary.user_id"))))
	require.Equal(t, CodeRetryable, CodeOf(MapError("op", errors.New("database is locked"))))
	wrapped := MapError("op", ValidationError("bad"))
	require.Equal(t, CodeValidation, CodeOf(wrapped))
	require.Same(t, wrapped, MapError("outer", wrapped))
}
