package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/cqox-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cqox-backend/internal/domain/jobs"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
)

func ptrTime(v time.Time) *time.Time { return &v }

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	owner := uuid.New()

	queued := &types.JobRun{
		OwnerUserID: owner,
		JobType:     "causal_estimate",
		Status:      types.StatusQueued,
		Payload:     datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-3 * time.Hour),
	}
	failed := &types.JobRun{
		OwnerUserID: owner,
		JobType:     "causal_estimate",
		Status:      types.StatusFailed,
		LastErrorAt: ptrTime(now.Add(-2 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-2 * time.Hour),
	}
	staleRunning := &types.JobRun{
		OwnerUserID: owner,
		JobType:     "causal_estimate",
		Status:      types.StatusRunning,
		HeartbeatAt: ptrTime(now.Add(-10 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-1 * time.Hour),
	}
	exhausted := &types.JobRun{
		OwnerUserID: owner,
		JobType:     "causal_estimate",
		Status:      types.StatusFailed,
		Attempts:    3,
		Payload:     datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-4 * time.Hour),
	}

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning, exhausted})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 4 || queued.ID == uuid.Nil {
		t.Fatalf("Create: expected 4 rows with ids, got %d", len(created))
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{queued.ID, failed.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	has, err := repo.HasQueued(dbc, owner, "causal_estimate")
	if err != nil || !has {
		t.Fatalf("HasQueued: expected true, got %v err=%v", has, err)
	}

	// Claims walk the runnable set in created_at order and skip exhausted rows.
	for i, want := range []uuid.UUID{queued.ID, failed.ID, staleRunning.ID} {
		got, err := repo.ClaimNextRunnable(dbc, 3, time.Hour, time.Hour)
		if err != nil {
			t.Fatalf("ClaimNextRunnable #%d: %v", i+1, err)
		}
		if got == nil || got.ID != want {
			t.Fatalf("ClaimNextRunnable #%d: expected %v got %v", i+1, want, got)
		}
		if got.Status != types.StatusRunning || got.Attempts < 1 {
			t.Fatalf("ClaimNextRunnable #%d: status=%s attempts=%d", i+1, got.Status, got.Attempts)
		}
	}
	if got, err := repo.ClaimNextRunnable(dbc, 3, time.Hour, time.Hour); err != nil || got != nil {
		t.Fatalf("ClaimNextRunnable #4: expected nil, got %v err=%v", got, err)
	}

	has, err = repo.HasQueued(dbc, owner, "causal_estimate")
	if err != nil || has {
		t.Fatalf("HasQueued after claims: expected false, got %v err=%v", has, err)
	}

	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{"status": types.StatusSucceeded, "progress": 100}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := repo.Heartbeat(dbc, failed.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{queued.ID, failed.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	for _, row := range rows {
		switch row.ID {
		case queued.ID:
			if row.Status != types.StatusSucceeded || row.Progress != 100 {
				t.Fatalf("UpdateFields: got status=%s progress=%d", row.Status, row.Progress)
			}
		case failed.ID:
			if row.HeartbeatAt == nil {
				t.Fatalf("Heartbeat: heartbeat_at not set")
			}
		}
	}
}
