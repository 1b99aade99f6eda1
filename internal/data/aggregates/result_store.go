package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	emotionrepo "github.com/yungbote/cqox-backend/internal/data/repos/emotion"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
)

// UserResults is everything one estimation run produced for one user.
type UserResults struct {
	UserID   uuid.UUID
	Effects  []*types.TreatmentEffect
	Path     *types.PathSummary
	Partners []*types.PathPartnerSummary
}

func (r UserResults) Empty() bool {
	return len(r.Effects) == 0 && r.Path == nil && len(r.Partners) == 0
}

// ResultStore persists a user's estimates atomically: either every upsert of
// the run commits or none does.
type ResultStore interface {
	SaveUserResults(ctx context.Context, res UserResults) error
}

type ResultStoreDeps struct {
	BaseDeps
	Effects  emotionrepo.TreatmentEffectRepo
	Paths    emotionrepo.PathSummaryRepo
	Partners emotionrepo.PathPartnerSummaryRepo
}

type resultStore struct {
	deps ResultStoreDeps
}

func NewResultStore(deps ResultStoreDeps) ResultStore {
	deps.BaseDeps = deps.BaseDeps.withDefaults()
	if deps.Effects == nil {
		deps.Effects = emotionrepo.NewTreatmentEffectRepo(deps.DB, deps.Log)
	}
	if deps.Paths == nil {
		deps.Paths = emotionrepo.NewPathSummaryRepo(deps.DB, deps.Log)
	}
	if deps.Partners == nil {
		deps.Partners = emotionrepo.NewPathPartnerSummaryRepo(deps.DB, deps.Log)
	}
	return &resultStore{deps: deps}
}

func (s *resultStore) SaveUserResults(ctx context.Context, res UserResults) error {
	const op = "result_store.save_user_results"
	if err := res.validate(); err != nil {
		return MapError(op, err)
	}
	if res.Empty() {
		return nil
	}
	return executeWrite(ctx, s.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		for _, row := range res.Effects {
			if err := s.deps.Effects.Upsert(dbc, row); err != nil {
				return fmt.Errorf("upsert treatment effect %s/%s: %w", row.TreatmentKey, row.OutcomeName, err)
			}
		}
		if res.Path != nil {
			if err := s.deps.Paths.Upsert(dbc, res.Path); err != nil {
				return fmt.Errorf("upsert path summary: %w", err)
			}
		}
		for _, row := range res.Partners {
			if err := s.deps.Partners.Upsert(dbc, row); err != nil {
				return fmt.Errorf("upsert partner summary %q: %w", row.PartnerRole, err)
			}
		}
		return nil
	})
}

func (r UserResults) validate() error {
	if r.UserID == uuid.Nil {
		return ValidationError("user id is required")
	}
	for _, row := range r.Effects {
		if row == nil || row.UserID != r.UserID {
			return ValidationError("treatment effect belongs to another user")
		}
	}
	if r.Path != nil && r.Path.UserID != r.UserID {
		return ValidationError("path summary belongs to another user")
	}
	for _, row := range r.Partners {
		if row == nil || row.UserID != r.UserID {
			return ValidationError("partner summary belongs to another user")
		}
	}
	return nil
}
