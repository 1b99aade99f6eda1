package emotion

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

type TreatmentEffectRepo interface {
	// Upsert looks up (user_id, treatment_key, outcome_name), then updates in
	// place or inserts.
	Upsert(dbc dbctx.Context, row *types.TreatmentEffect) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.TreatmentEffect, error)
}

type treatmentEffectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTreatmentEffectRepo(db *gorm.DB, baseLog *logger.Logger) TreatmentEffectRepo {
	return &treatmentEffectRepo{db: db, log: baseLog.With("repo", "TreatmentEffectRepo")}
}

func (r *treatmentEffectRepo) Upsert(dbc dbctx.Context, row *types.TreatmentEffect) error {
	if row == nil {
		return nil
	}
	t := dbc.DB(r.db)
	row.UpdatedAt = time.Now().UTC()

	var existing types.TreatmentEffect
	err := t.Where("user_id = ? AND treatment_key = ? AND outcome_name = ?",
		row.UserID, row.TreatmentKey, row.OutcomeName).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return err
	}

	if existing.ID != uuid.Nil {
		row.ID = existing.ID
		return t.Model(&types.TreatmentEffect{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"ate":           row.ATE,
				"ci_lower":      row.CILower,
				"ci_upper":      row.CIUpper,
				"n_treated":     row.NTreated,
				"n_control":     row.NControl,
				"model_version": row.ModelVersion,
				"updated_at":    row.UpdatedAt,
			}).Error
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.Create(row).Error
}

func (r *treatmentEffectRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.TreatmentEffect, error) {
	var out []*types.TreatmentEffect
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("treatment_key ASC, outcome_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
