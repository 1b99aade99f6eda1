package emotion

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

type PathSummaryRepo interface {
	Upsert(dbc dbctx.Context, row *types.PathSummary) error
	GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.PathSummary, error)
}

type pathSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathSummaryRepo(db *gorm.DB, baseLog *logger.Logger) PathSummaryRepo {
	return &pathSummaryRepo{db: db, log: baseLog.With("repo", "PathSummaryRepo")}
}

// Upsert overwrites every coefficient column; a re-estimation never keeps
// values from an earlier fit.
func (r *pathSummaryRepo) Upsert(dbc dbctx.Context, row *types.PathSummary) error {
	if row == nil {
		return nil
	}
	t := dbc.DB(r.db)
	row.UpdatedAt = time.Now().UTC()

	var existing types.PathSummary
	if err := t.Where("user_id = ?", row.UserID).Limit(1).Find(&existing).Error; err != nil {
		return err
	}

	if existing.ID != uuid.Nil {
		row.ID = existing.ID
		return t.Model(&types.PathSummary{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"intercept":               row.Intercept,
				"intercept_lo":            row.InterceptLo,
				"intercept_hi":            row.InterceptHi,
				"alpha_eval_to_stress":    row.AlphaEvalToStress,
				"alpha_eval_to_stress_lo": row.AlphaEvalToStressLo,
				"alpha_eval_to_stress_hi": row.AlphaEvalToStressHi,
				"beta_eval_to_cry":        row.BetaEvalToCry,
				"beta_eval_to_cry_lo":     row.BetaEvalToCryLo,
				"beta_eval_to_cry_hi":     row.BetaEvalToCryHi,
				"beta_stress_to_cry":      row.BetaStressToCry,
				"beta_stress_to_cry_lo":   row.BetaStressToCryLo,
				"beta_stress_to_cry_hi":   row.BetaStressToCryHi,
				"beta_suppress_to_cry":    row.BetaSuppressToCry,
				"beta_suppress_to_cry_lo": row.BetaSuppressToCryLo,
				"beta_suppress_to_cry_hi": row.BetaSuppressToCryHi,
				"beta_trait_to_cry":       row.BetaTraitToCry,
				"beta_trait_to_cry_lo":    row.BetaTraitToCryLo,
				"beta_trait_to_cry_hi":    row.BetaTraitToCryHi,
				"indirect_eval_to_cry":    row.IndirectEvalToCry,
				"indirect_eval_to_cry_lo": row.IndirectEvalToCryLo,
				"indirect_eval_to_cry_hi": row.IndirectEvalToCryHi,
				"total_eval_to_cry":       row.TotalEvalToCry,
				"total_eval_to_cry_lo":    row.TotalEvalToCryLo,
				"total_eval_to_cry_hi":    row.TotalEvalToCryHi,
				"n_episodes":              row.NEpisodes,
				"updated_at":              row.UpdatedAt,
			}).Error
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.Create(row).Error
}

// GetByUser returns nil, nil when the user has no summary yet.
func (r *pathSummaryRepo) GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.PathSummary, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.PathSummary
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

type PathPartnerSummaryRepo interface {
	Upsert(dbc dbctx.Context, row *types.PathPartnerSummary) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.PathPartnerSummary, error)
}

type pathPartnerSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathPartnerSummaryRepo(db *gorm.DB, baseLog *logger.Logger) PathPartnerSummaryRepo {
	return &pathPartnerSummaryRepo{db: db, log: baseLog.With("repo", "PathPartnerSummaryRepo")}
}

func (r *pathPartnerSummaryRepo) Upsert(dbc dbctx.Context, row *types.PathPartnerSummary) error {
	if row == nil {
		return nil
	}
	t := dbc.DB(r.db)
	row.UpdatedAt = time.Now().UTC()

	var existing types.PathPartnerSummary
	if err := t.Where("user_id = ? AND partner_role = ?", row.UserID, row.PartnerRole).
		Limit(1).
		Find(&existing).Error; err != nil {
		return err
	}

	if existing.ID != uuid.Nil {
		row.ID = existing.ID
		return t.Model(&types.PathPartnerSummary{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"total_eval_to_cry": row.TotalEvalToCry,
				"n_episodes":        row.NEpisodes,
				"updated_at":        row.UpdatedAt,
			}).Error
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.Create(row).Error
}

func (r *pathPartnerSummaryRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.PathPartnerSummary, error) {
	var out []*types.PathPartnerSummary
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("partner_role ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
