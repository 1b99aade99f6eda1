package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/cqox-backend/internal/data/repos"
	types "github.com/yungbote/cqox-backend/internal/domain/jobs"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/services"
)

/*
Context is the execution handle for one claimed job run. Handlers report
progress and terminate through it and never write job_run themselves.
  - Ctx: cancellation for the run (worker shutdown)
  - DB: database handle for handlers that open their own transactions
  - Job: the claimed row, kept in sync with what was persisted
  - Notify: side channel for lifecycle events
*/
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	Notify  services.JobNotifier
	payload map[string]any
}

func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo, notify services.JobNotifier) *Context {
	c := &Context{
		Ctx:    ctx,
		DB:     db,
		Job:    job,
		Repo:   repo,
		Notify: notify,
	}
	_ = c.decodePayload()
	return c
}

// decodePayload leaves an empty map behind on malformed JSON; handlers
// validate the fields they need.
func (c *Context) decodePayload() error {
	c.payload = map[string]any{}
	if c.Job == nil || len(c.Job.Payload) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		return err
	}
	if m != nil {
		c.payload = m
	}
	return nil
}

// Payload never returns nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

// PayloadUUID parses payload[key] as a UUID.
func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(fmt.Sprint(v))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (c *Context) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

/*
Progress persists a non-terminal stage/progress/message with a fresh
heartbeat, mirrors it onto c.Job and emits a progress event.
*/
func (c *Context) Progress(stage string, pct int, msg string) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(dbctx.Context{Ctx: c.ctx()}, c.Job.ID, map[string]interface{}{
			"stage":        stage,
			"progress":     pct,
			"message":      msg,
			"heartbeat_at": now,
			"updated_at":   now,
		})
	}
	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.Progress = pct
		c.Job.Message = msg
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
	if c.Notify != nil && c.Job != nil {
		c.Notify.JobProgress(c.Job.OwnerUserID, c.Job, stage, pct, msg)
	}
}

/*
Fail marks the run failed at stage and records err. The worker's claim loop
picks failed rows up again after the retry delay until attempts run out.
*/
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(dbctx.Context{Ctx: context.WithoutCancel(c.ctx())}, c.Job.ID, map[string]interface{}{
			"status":        types.StatusFailed,
			"stage":         stage,
			"message":       "",
			"error":         msg,
			"last_error_at": now,
			"locked_at":     nil,
			"updated_at":    now,
		})
	}
	if c.Job != nil {
		c.Job.Status = types.StatusFailed
		c.Job.Stage = stage
		c.Job.Message = ""
		c.Job.Error = msg
		c.Job.LastErrorAt = &now
		c.Job.LockedAt = nil
		c.Job.UpdatedAt = now
	}
	if c.Notify != nil && c.Job != nil {
		c.Notify.JobFailed(c.Job.OwnerUserID, c.Job, stage, msg)
	}
}

// Succeed marks the run succeeded and stores result as JSON.
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	var res datatypes.JSON
	if result != nil {
		b, _ := json.Marshal(result)
		res = datatypes.JSON(b)
	}
	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		_ = c.Repo.UpdateFields(dbctx.Context{Ctx: context.WithoutCancel(c.ctx())}, c.Job.ID, map[string]interface{}{
			"status":       types.StatusSucceeded,
			"stage":        finalStage,
			"progress":     100,
			"message":      "",
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
			"updated_at":   now,
		})
	}
	if c.Job != nil {
		c.Job.Status = types.StatusSucceeded
		c.Job.Stage = finalStage
		c.Job.Progress = 100
		c.Job.Message = ""
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.LockedAt = nil
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
	if c.Notify != nil && c.Job != nil {
		c.Notify.JobDone(c.Job.OwnerUserID, c.Job)
	}
}
