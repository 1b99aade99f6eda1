package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/cqox-backend/internal/data/repos"
	types "github.com/yungbote/cqox-backend/internal/domain/jobs"
	"github.com/yungbote/cqox-backend/internal/jobs/runtime"
	"github.com/yungbote/cqox-backend/internal/observability"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/platform/envutil"
	"github.com/yungbote/cqox-backend/internal/services"
)

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
	StaleRunning time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Concurrency:  envutil.Int("WORKER_CONCURRENCY", 2),
		PollInterval: envutil.Duration("WORKER_POLL_INTERVAL", time.Second),
		MaxAttempts:  envutil.Int("WORKER_MAX_ATTEMPTS", 5),
		RetryDelay:   envutil.Duration("WORKER_RETRY_DELAY", 30*time.Second),
		StaleRunning: envutil.Duration("WORKER_STALE_RUNNING", 30*time.Minute),
	}
}

func (c Config) withDefaults() Config {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 30 * time.Second
	}
	if c.StaleRunning <= 0 {
		c.StaleRunning = 30 * time.Minute
	}
	return c
}

type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	notify   services.JobNotifier
	metrics  *observability.Metrics
	cfg      Config
	wg       sync.WaitGroup
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, notify services.JobNotifier, metrics *observability.Metrics, cfg Config) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
		metrics:  metrics,
		cfg:      cfg.withDefaults(),
	}
}

// Start launches the claim loops; they exit when ctx is cancelled. Wait
// blocks until they have.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting job worker pool", "concurrency", w.cfg.Concurrency)
	for i := 0; i < w.cfg.Concurrency; i++ {
		workerID := i + 1
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.runLoop(ctx, workerID)
		}()
	}
}

func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			// Drain whatever is runnable before sleeping again.
			for ctx.Err() == nil {
				ran, err := w.RunOnce(ctx, workerID)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
					break
				}
				if !ran {
					break
				}
			}
		}
	}
}

// RunOnce claims and executes at most one job. It reports whether a job was
// claimed; handler failures are recorded on the job, not returned.
func (w *Worker) RunOnce(ctx context.Context, workerID int) (bool, error) {
	job, err := w.repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, w.cfg.MaxAttempts, w.cfg.RetryDelay, w.cfg.StaleRunning)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	start := time.Now()
	jc := runtime.NewContext(ctx, w.db, job, w.repo, w.notify)
	defer func() {
		w.metrics.ObserveJob(job.JobType, jobResult(jc.Job), time.Since(start))
	}()

	h, ok := w.registry.Get(job.JobType)
	if !ok {
		w.log.Warn("No handler registered for job_type",
			"worker_id", workerID,
			"job_type", job.JobType,
			"job_id", job.ID,
		)
		jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
		return true, nil
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				w.log.Error("Job handler panic",
					"worker_id", workerID,
					"job_id", job.ID,
					"job_type", job.JobType,
					"panic", r,
				)
				jc.Fail("panic", errFromRecover(r))
			}
		}()

		if runErr := h.Run(jc); runErr != nil {
			// Handlers normally call jc.Fail themselves; this is a safety net.
			jc.Fail("run", runErr)
		}
	}()
	return true, nil
}

func jobResult(job *types.JobRun) string {
	if job == nil {
		return "unknown"
	}
	switch job.Status {
	case types.StatusSucceeded, types.StatusFailed:
		return job.Status
	default:
		return "incomplete"
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
