package emotion

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

// preparationBatch keeps IN lists under SQLite's bound-parameter limit.
const preparationBatch = 500

// EpisodeFilter narrows ListCompleted. A nil field means "any". PartnerRole
// "unspecified" matches episodes without a recorded role.
type EpisodeFilter struct {
	UserID      *uuid.UUID
	PartnerRole *string
}

// EpisodeRecordRepo is the read side the estimators consume.
type EpisodeRecordRepo interface {
	ListCompleted(dbc dbctx.Context, filter EpisodeFilter) ([]types.EpisodeRecord, error)
}

type episodeRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpisodeRecordRepo(db *gorm.DB, baseLog *logger.Logger) EpisodeRecordRepo {
	return &episodeRecordRepo{db: db, log: baseLog.With("repo", "EpisodeRecordRepo")}
}

type completedEpisodeRow struct {
	EpisodeID            uuid.UUID
	UserID               uuid.UUID
	ScenarioType         string
	Topic                string
	Location             string
	PreAnxiety           int
	PreCryingRisk        int
	PreSpeechBlockRisk   int
	EvalThreatLevel      *int
	SuppressIntentLevel  *int
	ContextPartnerRole   *string
	CryingLevel          int
	StressAfter          int
	ExpressionScore      int
	RelationshipImpact   int
	TraitSocialAnxiety   *int
	TraitCryingProneness *int
}

// ListCompleted returns completed episodes that carry an outcome, ordered by
// user, scheduled time and id. Intensities come from the most recently
// created preparation row per template key.
func (r *episodeRecordRepo) ListCompleted(dbc dbctx.Context, filter EpisodeFilter) ([]types.EpisodeRecord, error) {
	t := dbc.DB(r.db)

	q := t.Table("emotion_episode AS e").
		Select(`e.id AS episode_id, e.user_id AS user_id, e.scenario_type AS scenario_type,
			e.topic AS topic, e.location AS location,
			e.pre_anxiety AS pre_anxiety, e.pre_crying_risk AS pre_crying_risk,
			e.pre_speech_block_risk AS pre_speech_block_risk,
			e.eval_threat_level AS eval_threat_level, e.suppress_intent_level AS suppress_intent_level,
			e.context_partner_role AS context_partner_role,
			o.crying_level AS crying_level, o.stress_after AS stress_after,
			o.expression_score AS expression_score, o.relationship_impact AS relationship_impact,
			tp.trait_social_anxiety AS trait_social_anxiety,
			tp.trait_crying_proneness AS trait_crying_proneness`).
		Joins("JOIN emotion_outcome AS o ON o.episode_id = e.id").
		Joins("LEFT JOIN emotion_trait_profile AS tp ON tp.user_id = e.user_id").
		Where("e.status = ?", types.EpisodeCompleted)

	if filter.UserID != nil {
		q = q.Where("e.user_id = ?", *filter.UserID)
	}
	if filter.PartnerRole != nil {
		role := strings.TrimSpace(*filter.PartnerRole)
		if role == "" || role == types.UnspecifiedPartner {
			q = q.Where("(e.context_partner_role IS NULL OR TRIM(e.context_partner_role) = '')")
		} else {
			q = q.Where("TRIM(e.context_partner_role) = ?", role)
		}
	}

	var rows []completedEpisodeRow
	if err := q.Order("e.user_id ASC, e.scheduled_at ASC, e.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completed episodes: %w", err)
	}
	if len(rows) == 0 {
		return []types.EpisodeRecord{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].EpisodeID
	}
	intensities, err := r.intensitiesByEpisode(t, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.EpisodeRecord, 0, len(rows))
	for _, row := range rows {
		intensity := make(map[string]float64, len(types.TreatmentKeys))
		for _, k := range types.TreatmentKeys {
			intensity[k] = 0
		}
		for k, v := range intensities[row.EpisodeID] {
			intensity[k] = v
		}
		out = append(out, types.EpisodeRecord{
			EpisodeID:            row.EpisodeID,
			UserID:               row.UserID,
			ScenarioType:         row.ScenarioType,
			Topic:                row.Topic,
			Location:             row.Location,
			PreAnxiety:           float64(row.PreAnxiety),
			PreCryingRisk:        float64(row.PreCryingRisk),
			PreSpeechBlockRisk:   float64(row.PreSpeechBlockRisk),
			CryingLevel:          float64(row.CryingLevel),
			StressAfter:          float64(row.StressAfter),
			ExpressionScore:      float64(row.ExpressionScore),
			RelationshipImpact:   float64(row.RelationshipImpact),
			Intensity:            intensity,
			EvalThreatLevel:      pointers.Float64From(row.EvalThreatLevel),
			SuppressIntentLevel:  pointers.Float64From(row.SuppressIntentLevel),
			PartnerRole:          row.ContextPartnerRole,
			TraitSocialAnxiety:   pointers.Float64From(row.TraitSocialAnxiety),
			TraitCryingProneness: pointers.Float64From(row.TraitCryingProneness),
		})
	}
	return out, nil
}

func (r *episodeRecordRepo) intensitiesByEpisode(t *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]map[string]float64, error) {
	out := make(map[uuid.UUID]map[string]float64, len(ids))
	for start := 0; start < len(ids); start += preparationBatch {
		end := min(start+preparationBatch, len(ids))
		var preps []types.PreparationExecution
		err := t.Where("episode_id IN ? AND template_key IN ?", ids[start:end], types.TreatmentKeys).
			Order("created_at ASC, id ASC").
			Find(&preps).Error
		if err != nil {
			return nil, fmt.Errorf("list preparations: %w", err)
		}
		// Ascending creation order: later rows overwrite earlier ones.
		for _, p := range preps {
			m := out[p.EpisodeID]
			if m == nil {
				m = make(map[string]float64, len(types.TreatmentKeys))
				out[p.EpisodeID] = m
			}
			m[p.TemplateKey] = float64(p.EffectiveIntensity())
		}
	}
	return out, nil
}
