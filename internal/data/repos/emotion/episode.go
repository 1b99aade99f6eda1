package emotion

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

type EpisodeRepo interface {
	Create(dbc dbctx.Context, rows []*types.Episode) ([]*types.Episode, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Episode, error)
	MarkCompleted(dbc dbctx.Context, id uuid.UUID) error
	ListUserIDsWithCompleted(dbc dbctx.Context) ([]uuid.UUID, error)
}

type episodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpisodeRepo(db *gorm.DB, baseLog *logger.Logger) EpisodeRepo {
	return &episodeRepo{db: db, log: baseLog.With("repo", "EpisodeRepo")}
}

func (r *episodeRepo) Create(dbc dbctx.Context, rows []*types.Episode) ([]*types.Episode, error) {
	if len(rows) == 0 {
		return []*types.Episode{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.Status == "" {
			row.Status = types.EpisodePlanned
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns nil, nil when the episode does not exist.
func (r *episodeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Episode, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var ep types.Episode
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&ep).Error; err != nil {
		return nil, err
	}
	if ep.ID == uuid.Nil {
		return nil, nil
	}
	return &ep, nil
}

func (r *episodeRepo) MarkCompleted(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Episode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     types.EpisodeCompleted,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListUserIDsWithCompleted returns users owning at least one completed
// episode with an outcome, in id order.
func (r *episodeRepo) ListUserIDsWithCompleted(dbc dbctx.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := dbc.DB(r.db).
		Table("emotion_episode AS e").
		Joins("JOIN emotion_outcome AS o ON o.episode_id = e.id").
		Where("e.status = ?", types.EpisodeCompleted).
		Distinct("e.user_id").
		Order("e.user_id ASC").
		Pluck("e.user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type PreparationRepo interface {
	Create(dbc dbctx.Context, rows []*types.PreparationExecution) ([]*types.PreparationExecution, error)
	ListByEpisode(dbc dbctx.Context, episodeID uuid.UUID) ([]*types.PreparationExecution, error)
}

type preparationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreparationRepo(db *gorm.DB, baseLog *logger.Logger) PreparationRepo {
	return &preparationRepo{db: db, log: baseLog.With("repo", "PreparationRepo")}
}

func (r *preparationRepo) Create(dbc dbctx.Context, rows []*types.PreparationExecution) ([]*types.PreparationExecution, error) {
	if len(rows) == 0 {
		return []*types.PreparationExecution{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *preparationRepo) ListByEpisode(dbc dbctx.Context, episodeID uuid.UUID) ([]*types.PreparationExecution, error) {
	var out []*types.PreparationExecution
	if episodeID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("episode_id = ?", episodeID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type OutcomeRepo interface {
	Create(dbc dbctx.Context, row *types.Outcome) error
	GetByEpisodeID(dbc dbctx.Context, episodeID uuid.UUID) (*types.Outcome, error)
}

type outcomeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOutcomeRepo(db *gorm.DB, baseLog *logger.Logger) OutcomeRepo {
	return &outcomeRepo{db: db, log: baseLog.With("repo", "OutcomeRepo")}
}

func (r *outcomeRepo) Create(dbc dbctx.Context, row *types.Outcome) error {
	if row == nil {
		return nil
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Create(row).Error
}

// GetByEpisodeID returns nil, nil when no outcome is recorded.
func (r *outcomeRepo) GetByEpisodeID(dbc dbctx.Context, episodeID uuid.UUID) (*types.Outcome, error) {
	if episodeID == uuid.Nil {
		return nil, nil
	}
	var o types.Outcome
	if err := dbc.DB(r.db).Where("episode_id = ?", episodeID).Limit(1).Find(&o).Error; err != nil {
		return nil, err
	}
	if o.EpisodeID == uuid.Nil {
		return nil, nil
	}
	return &o, nil
}

type TraitProfileRepo interface {
	Upsert(dbc dbctx.Context, row *types.TraitProfile) error
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.TraitProfile, error)
}

type traitProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTraitProfileRepo(db *gorm.DB, baseLog *logger.Logger) TraitProfileRepo {
	return &traitProfileRepo{db: db, log: baseLog.With("repo", "TraitProfileRepo")}
}

func (r *traitProfileRepo) Upsert(dbc dbctx.Context, row *types.TraitProfile) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	t := dbc.DB(r.db)
	row.UpdatedAt = time.Now().UTC()

	var existing types.TraitProfile
	if err := t.Where("user_id = ?", row.UserID).Limit(1).Find(&existing).Error; err != nil {
		return err
	}
	if existing.UserID != uuid.Nil {
		return t.Model(&types.TraitProfile{}).
			Where("user_id = ?", row.UserID).
			Updates(map[string]interface{}{
				"trait_social_anxiety":   row.TraitSocialAnxiety,
				"trait_crying_proneness": row.TraitCryingProneness,
				"trait_suppression":      row.TraitSuppression,
				"updated_at":             row.UpdatedAt,
			}).Error
	}
	return t.Create(row).Error
}

func (r *traitProfileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.TraitProfile, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var tp types.TraitProfile
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&tp).Error; err != nil {
		return nil, err
	}
	if tp.UserID == uuid.Nil {
		return nil, nil
	}
	return &tp, nil
}
