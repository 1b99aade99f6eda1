package emotion

import (
	"time"

	"github.com/google/uuid"
)

// Episode is a single journaled conversation, planned ahead and completed
// once an outcome is recorded.
type Episode struct {
	ID                    uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	ScenarioType          ScenarioType  `gorm:"column:scenario_type;type:varchar(32);not null" json:"scenario_type"`
	Topic                 string        `gorm:"column:topic;type:varchar(128);not null" json:"topic"`
	ScheduledAt           time.Time     `gorm:"column:scheduled_at;not null" json:"scheduled_at"`
	Location              string        `gorm:"column:location;type:varchar(64);not null" json:"location"`
	Status                EpisodeStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	PreAnxiety            int           `gorm:"column:pre_anxiety;not null" json:"pre_anxiety"`
	PreCryingRisk         int           `gorm:"column:pre_crying_risk;not null" json:"pre_crying_risk"`
	PreSpeechBlockRisk    int           `gorm:"column:pre_speech_block_risk;not null" json:"pre_speech_block_risk"`
	EvalThreatLevel       *int          `gorm:"column:eval_threat_level" json:"eval_threat_level,omitempty"`
	SuppressIntentLevel   *int          `gorm:"column:suppress_intent_level" json:"suppress_intent_level,omitempty"`
	ContextPartnerRole    *string       `gorm:"column:context_partner_role;type:varchar(32);index" json:"context_partner_role,omitempty"`
	ContextFormality      *int          `gorm:"column:context_formality" json:"context_formality,omitempty"`
	ContextSelfDisclosure *int          `gorm:"column:context_self_disclosure" json:"context_self_disclosure,omitempty"`
	ContextEvalFocus      *int          `gorm:"column:context_eval_focus" json:"context_eval_focus,omitempty"`
	CreatedAt             time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time     `gorm:"not null" json:"updated_at"`
}

func (Episode) TableName() string { return "emotion_episode" }

// PreparationExecution records a planned preparation and, once done, how
// intensely it was actually carried out.
type PreparationExecution struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EpisodeID        uuid.UUID `gorm:"type:uuid;not null;index" json:"episode_id"`
	TemplateKey      string    `gorm:"column:template_key;type:varchar(64);not null" json:"template_key"`
	PlannedIntensity *int      `gorm:"column:planned_intensity" json:"planned_intensity,omitempty"`
	ActualIntensity  *int      `gorm:"column:actual_intensity" json:"actual_intensity,omitempty"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

func (PreparationExecution) TableName() string { return "emotion_preparation_execution" }

// EffectiveIntensity is the executed intensity when recorded, else the
// planned one, else zero.
func (p PreparationExecution) EffectiveIntensity() int {
	switch {
	case p.ActualIntensity != nil:
		return *p.ActualIntensity
	case p.PlannedIntensity != nil:
		return *p.PlannedIntensity
	default:
		return 0
	}
}

type Outcome struct {
	EpisodeID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"episode_id"`
	StressDuring           int              `gorm:"column:stress_during;not null" json:"stress_during"`
	StressAfter            int              `gorm:"column:stress_after;not null" json:"stress_after"`
	CryingLevel            int              `gorm:"column:crying_level;not null" json:"crying_level"`
	SpeechBlockLevel       int              `gorm:"column:speech_block_level;not null" json:"speech_block_level"`
	ExpressionScore        int              `gorm:"column:expression_score;not null" json:"expression_score"`
	RelationshipImpact     int              `gorm:"column:relationship_impact;not null" json:"relationship_impact"`
	PartnerReaction        *PartnerReaction `gorm:"column:partner_reaction;type:varchar(16)" json:"partner_reaction,omitempty"`
	DaysAfterReflection    *int             `gorm:"column:days_after_reflection" json:"days_after_reflection,omitempty"`
	WouldRepeatPreparation *int             `gorm:"column:would_repeat_preparation" json:"would_repeat_preparation,omitempty"`
	ReflectionShort        *string          `gorm:"column:reflection_short;type:text" json:"reflection_short,omitempty"`
	CreatedAt              time.Time        `gorm:"not null" json:"created_at"`
}

func (Outcome) TableName() string { return "emotion_outcome" }

// TraitProfile holds baseline dispositions; one row per user.
type TraitProfile struct {
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TraitSocialAnxiety   int       `gorm:"column:trait_social_anxiety;not null" json:"trait_social_anxiety"`
	TraitCryingProneness int       `gorm:"column:trait_crying_proneness;not null" json:"trait_crying_proneness"`
	TraitSuppression     int       `gorm:"column:trait_suppression;not null" json:"trait_suppression"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

func (TraitProfile) TableName() string { return "emotion_trait_profile" }
