package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// executeWrite runs fn in one transaction and reports the mapped outcome.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	mapped := MapError(op, deps.Runner.InTx(ctx, fn))

	status := "success"
	if mapped != nil {
		status = string(CodeOf(mapped))
		if IsCode(mapped, CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}
