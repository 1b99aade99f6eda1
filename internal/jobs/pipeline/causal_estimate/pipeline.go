package causal_estimate

import (
	"fmt"

	"github.com/google/uuid"

	jobrt "github.com/yungbote/cqox-backend/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	userID, ok := jc.PayloadUUID("user_id")
	if !ok {
		userID = jc.Job.OwnerUserID
	}
	if userID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing user_id"))
		return nil
	}

	jc.Progress("estimate", 10, "Estimating treatment effects and paths")
	sum, err := p.estimate.RunForUser(jc.Ctx, userID)
	if err != nil {
		p.log.Warn("estimation failed", "user_id", userID, "attempt", jc.Job.Attempts, "error", err)
		jc.Fail("estimate", err)
		return nil
	}

	jc.Succeed("done", map[string]any{
		"user_id":  userID.String(),
		"episodes": sum.Episodes,
		"effects":  sum.Effects,
		"skipped":  sum.Skipped,
		"path":     sum.Path,
		"partners": sum.Partners,
	})
	return nil
}
