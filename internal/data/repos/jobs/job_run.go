package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/cqox-backend/internal/domain/jobs"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

type JobRunRepo interface {
	Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error)
	ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.JobRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	// HasQueued reports a queued (not yet claimed) job of jobType for the
	// owner. A running job does not count: it may already have read the data
	// a new trigger wants included.
	HasQueued(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string) (bool, error)
}

type jobRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return &jobRunRepo{
		db:  db,
		log: baseLog.With("repo", "JobRunRepo"),
	}
}

func (r *jobRunRepo) Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	if len(jobs) == 0 {
		return []*types.JobRun{}, nil
	}
	now := time.Now().UTC()
	for _, j := range jobs {
		if j.ID == uuid.Nil {
			j.ID = uuid.New()
		}
		if j.Status == "" {
			j.Status = types.StatusQueued
		}
		if j.Stage == "" {
			j.Stage = j.Status
		}
		if j.CreatedAt.IsZero() {
			j.CreatedAt = now
		}
		if j.UpdatedAt.IsZero() {
			j.UpdatedAt = j.CreatedAt
		}
	}
	if err := dbc.DB(r.db).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRunRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error) {
	var out []*types.JobRun
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimNextRunnable picks the oldest queued job, a failed job that is due for
// retry, or a running job whose heartbeat went stale, and marks it running.
// Postgres skips rows locked by other workers; SQLite serializes writers.
func (r *jobRunRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.JobRun, error) {
	now := time.Now().UTC()
	retryCutoff := now.Add(-retryDelay)
	staleCutoff := now.Add(-staleRunning)
	var claimed *types.JobRun
	err := dbc.DB(r.db).Transaction(func(txx *gorm.DB) error {
		var job types.JobRun
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
        (
          status = ?
          OR (
            status = ?
            AND attempts < ?
            AND (last_error_at IS NULL OR last_error_at < ?)
          )
          OR (
            status = ?
            AND heartbeat_at IS NOT NULL
            AND heartbeat_at < ?
          )
        )
      `, types.StatusQueued, types.StatusFailed, maxAttempts, retryCutoff, types.StatusRunning, staleCutoff).
			Order("created_at ASC")
		qErr := q.First(&job).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		uErr := txx.Model(&types.JobRun{}).
			Where("id = ?", job.ID).
			Updates(map[string]interface{}{
				"status":       types.StatusRunning,
				"stage":        types.StatusRunning,
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_at":    now,
				"heartbeat_at": now,
				"updated_at":   now,
			}).Error
		if uErr != nil {
			return uErr
		}
		job.Status = types.StatusRunning
		job.Attempts++
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *jobRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.JobRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *jobRunRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.JobRun{}).
		Where("id = ? AND status = ?", id, types.StatusRunning).
		Updates(map[string]interface{}{
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}

func (r *jobRunRepo) HasQueued(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string) (bool, error) {
	if ownerUserID == uuid.Nil || jobType == "" {
		return false, nil
	}
	var count int64
	err := dbc.DB(r.db).
		Model(&types.JobRun{}).
		Where("owner_user_id = ? AND job_type = ? AND status = ?", ownerUserID, jobType, types.StatusQueued).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
