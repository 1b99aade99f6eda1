package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/cqox-backend/internal/data/repos"
	types "github.com/yungbote/cqox-backend/internal/domain/jobs"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

// JobTypeCausalEstimate re-estimates one user's effects and paths.
const JobTypeCausalEstimate = "causal_estimate"

type JobService interface {
	Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error)
	// EnqueueEstimateIfNeeded queues a causal_estimate job unless one is
	// already waiting for the user; the bool reports whether a row was created.
	EnqueueEstimateIfNeeded(dbc dbctx.Context, userID uuid.UUID, trigger string) (*types.JobRun, bool, error)
}

type jobService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.JobRunRepo
	notify JobNotifier
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, notify JobNotifier) JobService {
	return &jobService{
		db:     db,
		log:    baseLog.With("service", "JobService"),
		repo:   repo,
		notify: notify,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error) {
	if ownerUserID == uuid.Nil {
		return nil, fmt.Errorf("missing owner_user_id")
	}
	jobType = strings.TrimSpace(jobType)
	if jobType == "" {
		return nil, fmt.Errorf("missing job_type")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     jobType,
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      types.StatusQueued,
		Stage:       types.StatusQueued,
		Message:     "Queued",
		Payload:     datatypes.JSON(b),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if s.notify != nil {
		s.notify.JobCreated(ownerUserID, job)
	}
	return job, nil
}

func (s *jobService) EnqueueEstimateIfNeeded(dbc dbctx.Context, userID uuid.UUID, trigger string) (*types.JobRun, bool, error) {
	queued, err := s.repo.HasQueued(dbc, userID, JobTypeCausalEstimate)
	if err != nil {
		return nil, false, fmt.Errorf("check queued estimate: %w", err)
	}
	if queued {
		s.log.Debug("estimate already queued", "user_id", userID, "trigger", trigger)
		return nil, false, nil
	}
	job, err := s.Enqueue(dbc, userID, JobTypeCausalEstimate, "user", &userID, map[string]any{
		"user_id": userID.String(),
		"trigger": trigger,
	})
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}
