package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/cqox-backend/internal/domain/jobs"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

type JobNotifier interface {
	JobCreated(userID uuid.UUID, job *types.JobRun)
	JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string)
	JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string)
	JobDone(userID uuid.UUID, job *types.JobRun)
}

type jobNotifier struct {
	bus EventBus
	log *logger.Logger
}

// NewJobNotifier publishes job lifecycle events; publish failures are logged
// and never reach the job.
func NewJobNotifier(bus EventBus, baseLog *logger.Logger) JobNotifier {
	return &jobNotifier{bus: bus, log: baseLog.With("service", "JobNotifier")}
}

func (n *jobNotifier) publish(userID uuid.UUID, event string, data map[string]any) {
	if n.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.bus.Publish(ctx, Event{Channel: userID.String(), Event: event, Data: data}); err != nil {
		n.log.Warn("publish job event failed", "event", event, "error", err)
	}
}

func (n *jobNotifier) JobCreated(userID uuid.UUID, job *types.JobRun) {
	n.publish(userID, EventJobCreated, map[string]any{"job_id": job.ID, "job_type": job.JobType})
}

func (n *jobNotifier) JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string) {
	n.publish(userID, EventJobProgress, map[string]any{
		"job_id":   job.ID,
		"job_type": job.JobType,
		"stage":    stage,
		"progress": progress,
		"message":  message,
	})
}

func (n *jobNotifier) JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string) {
	n.publish(userID, EventJobFailed, map[string]any{
		"job_id":   job.ID,
		"job_type": job.JobType,
		"stage":    stage,
		"error":    errorMessage,
	})
}

func (n *jobNotifier) JobDone(userID uuid.UUID, job *types.JobRun) {
	n.publish(userID, EventJobDone, map[string]any{"job_id": job.ID, "job_type": job.JobType})
}
