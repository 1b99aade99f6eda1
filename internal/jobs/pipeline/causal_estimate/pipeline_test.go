package causal_estimate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/cqox-backend/internal/data/repos/jobs"
	"github.com/yungbote/cqox-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cqox-backend/internal/domain/jobs"
	jobrt "github.com/yungbote/cqox-backend/internal/jobs/runtime"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/services"
)

type stubEstimation struct {
	users []uuid.UUID
	err   error
}

func (s *stubEstimation) Run(context.Context) ([]services.UserRunSummary, error) {
	return nil, errors.New("not used")
}

func (s *stubEstimation) RunForUser(_ context.Context, userID uuid.UUID) (services.UserRunSummary, error) {
	s.users = append(s.users, userID)
	if s.err != nil {
		return services.UserRunSummary{}, s.err
	}
	return services.UserRunSummary{UserID: userID, Episodes: 40, Effects: 4, Skipped: 16, Path: true}, nil
}

func newJob(t *testing.T, repo jobs.JobRunRepo, owner uuid.UUID, payload map[string]any) *types.JobRun {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	job := &types.JobRun{
		OwnerUserID: owner,
		JobType:     services.JobTypeCausalEstimate,
		Status:      types.StatusRunning,
		Attempts:    1,
		Payload:     datatypes.JSON(b),
		CreatedAt:   time.Now().UTC(),
	}
	_, err = repo.Create(dbctx.Context{Ctx: context.Background()}, []*types.JobRun{job})
	require.NoError(t, err)
	return job
}

func TestPipelineRunsEstimationForPayloadUser(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobs.NewJobRunRepo(db, log)
	est := &stubEstimation{}
	p := New(log, est)
	require.Equal(t, "causal_estimate", p.Type())

	owner := uuid.New()
	target := uuid.New()
	job := newJob(t, repo, owner, map[string]any{"user_id": target.String()})

	jc := jobrt.NewContext(context.Background(), db, job, repo, nil)
	require.NoError(t, p.Run(jc))
	require.Equal(t, []uuid.UUID{target}, est.users)
	require.Equal(t, types.StatusSucceeded, jc.Job.Status)

	var result map[string]any
	require.NoError(t, json.Unmarshal(jc.Job.Result, &result))
	require.Equal(t, target.String(), result["user_id"])
	require.EqualValues(t, 4, result["effects"])
}

func TestPipelineFallsBackToOwner(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobs.NewJobRunRepo(db, log)
	est := &stubEstimation{}

	owner := uuid.New()
	job := newJob(t, repo, owner, map[string]any{})
	jc := jobrt.NewContext(context.Background(), db, job, repo, nil)
	require.NoError(t, New(log, est).Run(jc))
	require.Equal(t, []uuid.UUID{owner}, est.users)
}

func TestPipelineFailsOnEstimationError(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobs.NewJobRunRepo(db, log)
	est := &stubEstimation{err: errors.New("database is locked")}

	job := newJob(t, repo, uuid.New(), nil)
	jc := jobrt.NewContext(context.Background(), db, job, repo, nil)
	require.NoError(t, New(log, est).Run(jc))

	rows, err := repo.GetByIDs(dbctx.Context{Ctx: context.Background()}, []uuid.UUID{job.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, types.StatusFailed, rows[0].Status)
	require.Equal(t, "estimate", rows[0].Stage)
	require.Contains(t, rows[0].Error, "database is locked")
}
