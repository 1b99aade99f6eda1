package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cqox-backend/internal/data/repos/jobs"
	"github.com/yungbote/cqox-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cqox-backend/internal/domain/jobs"
	"github.com/yungbote/cqox-backend/internal/jobs/runtime"
	"github.com/yungbote/cqox-backend/internal/observability"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/services"
)

type funcHandler struct {
	typ string
	run func(*runtime.Context) error
}

func (h funcHandler) Type() string                  { return h.typ }
func (h funcHandler) Run(jc *runtime.Context) error { return h.run(jc) }

func setup(t *testing.T, handlers ...runtime.Handler) (*Worker, services.JobService, jobs.JobRunRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := jobs.NewJobRunRepo(db, log)
	notify := services.NewJobNotifier(services.NewLogEventBus(log), log)

	reg := runtime.NewRegistry()
	for _, h := range handlers {
		require.NoError(t, reg.Register(h))
	}
	w := NewWorker(db, log, repo, reg, notify, observability.New(), Config{Concurrency: 1})
	return w, services.NewJobService(db, log, repo, notify), repo
}

func reload(t *testing.T, repo jobs.JobRunRepo, id uuid.UUID) *types.JobRun {
	t.Helper()
	rows, err := repo.GetByIDs(dbctx.Context{Ctx: context.Background()}, []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func TestRunOnceSucceeds(t *testing.T) {
	var seen uuid.UUID
	w, svc, repo := setup(t, funcHandler{typ: "echo", run: func(jc *runtime.Context) error {
		seen, _ = jc.PayloadUUID("user_id")
		jc.Succeed("done", map[string]any{"ok": true})
		return nil
	}})
	ctx := context.Background()
	user := uuid.New()

	job, err := svc.Enqueue(dbctx.Context{Ctx: ctx}, user, "echo", "user", &user, map[string]any{"user_id": user.String()})
	require.NoError(t, err)

	ran, err := w.RunOnce(ctx, 1)
	require.NoError(t, err)
	require.True(t, ran)
	require.Equal(t, user, seen)

	got := reload(t, repo, job.ID)
	require.Equal(t, types.StatusSucceeded, got.Status)
	require.Equal(t, 1, got.Attempts)
	require.Equal(t, 100, got.Progress)

	ran, err = w.RunOnce(ctx, 1)
	require.NoError(t, err)
	require.False(t, ran)
}

func TestRunOnceRecordsFailures(t *testing.T) {
	w, svc, repo := setup(t,
		funcHandler{typ: "boom", run: func(*runtime.Context) error { return errors.New("exploded") }},
		funcHandler{typ: "panic", run: func(*runtime.Context) error { panic("bad state") }},
	)
	ctx := context.Background()
	user := uuid.New()

	errs := map[string]string{}
	for _, jobType := range []string{"boom", "panic", "unknown"} {
		job, err := svc.Enqueue(dbctx.Context{Ctx: ctx}, user, jobType, "", nil, nil)
		require.NoError(t, err)

		ran, err := w.RunOnce(ctx, 1)
		require.NoError(t, err)
		require.True(t, ran)

		got := reload(t, repo, job.ID)
		require.Equal(t, types.StatusFailed, got.Status, jobType)
		require.NotNil(t, got.LastErrorAt, jobType)
		errs[jobType] = got.Error
	}
	require.Equal(t, "exploded", errs["boom"])
	require.Contains(t, errs["panic"], "bad state")
	require.Contains(t, errs["unknown"], "no handler registered")

	// Failed rows wait out the retry delay before they are claimable again.
	ran, err := w.RunOnce(ctx, 1)
	require.NoError(t, err)
	require.False(t, ran)
}
