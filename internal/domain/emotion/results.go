package emotion

import (
	"time"

	"github.com/google/uuid"
)

// TreatmentEffect is the persisted ATE for one (user, preparation, outcome).
// A missing row means "not estimated yet", never "zero effect".
type TreatmentEffect struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_treatment_effect,priority:1;index" json:"user_id"`
	TreatmentKey string    `gorm:"column:treatment_key;type:varchar(64);not null;uniqueIndex:uq_treatment_effect,priority:2" json:"treatment_key"`
	OutcomeName  string    `gorm:"column:outcome_name;type:varchar(64);not null;uniqueIndex:uq_treatment_effect,priority:3" json:"outcome_name"`
	ATE          float64   `gorm:"column:ate;not null" json:"ate"`
	CILower      *float64  `gorm:"column:ci_lower" json:"ci_lower"`
	CIUpper      *float64  `gorm:"column:ci_upper" json:"ci_upper"`
	NTreated     int       `gorm:"column:n_treated;not null" json:"n_treated"`
	NControl     int       `gorm:"column:n_control;not null" json:"n_control"`
	ModelVersion string    `gorm:"column:model_version;type:varchar(32);not null" json:"model_version"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (TreatmentEffect) TableName() string { return "emotion_treatment_effect" }

// PathSummary is the per-user evaluation -> crying path model. Overwritten
// on every successful re-estimation.
type PathSummary struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Intercept           *float64  `gorm:"column:intercept" json:"intercept"`
	InterceptLo         *float64  `gorm:"column:intercept_lo" json:"intercept_lo"`
	InterceptHi         *float64  `gorm:"column:intercept_hi" json:"intercept_hi"`
	AlphaEvalToStress   *float64  `gorm:"column:alpha_eval_to_stress" json:"alpha_eval_to_stress"`
	AlphaEvalToStressLo *float64  `gorm:"column:alpha_eval_to_stress_lo" json:"alpha_eval_to_stress_lo"`
	AlphaEvalToStressHi *float64  `gorm:"column:alpha_eval_to_stress_hi" json:"alpha_eval_to_stress_hi"`
	BetaEvalToCry       *float64  `gorm:"column:beta_eval_to_cry" json:"beta_eval_to_cry"`
	BetaEvalToCryLo     *float64  `gorm:"column:beta_eval_to_cry_lo" json:"beta_eval_to_cry_lo"`
	BetaEvalToCryHi     *float64  `gorm:"column:beta_eval_to_cry_hi" json:"beta_eval_to_cry_hi"`
	BetaStressToCry     *float64  `gorm:"column:beta_stress_to_cry" json:"beta_stress_to_cry"`
	BetaStressToCryLo   *float64  `gorm:"column:beta_stress_to_cry_lo" json:"beta_stress_to_cry_lo"`
	BetaStressToCryHi   *float64  `gorm:"column:beta_stress_to_cry_hi" json:"beta_stress_to_cry_hi"`
	BetaSuppressToCry   *float64  `gorm:"column:beta_suppress_to_cry" json:"beta_suppress_to_cry"`
	BetaSuppressToCryLo *float64  `gorm:"column:beta_suppress_to_cry_lo" json:"beta_suppress_to_cry_lo"`
	BetaSuppressToCryHi *float64  `gorm:"column:beta_suppress_to_cry_hi" json:"beta_suppress_to_cry_hi"`
	BetaTraitToCry      *float64  `gorm:"column:beta_trait_to_cry" json:"beta_trait_to_cry"`
	BetaTraitToCryLo    *float64  `gorm:"column:beta_trait_to_cry_lo" json:"beta_trait_to_cry_lo"`
	BetaTraitToCryHi    *float64  `gorm:"column:beta_trait_to_cry_hi" json:"beta_trait_to_cry_hi"`
	IndirectEvalToCry   *float64  `gorm:"column:indirect_eval_to_cry" json:"indirect_eval_to_cry"`
	IndirectEvalToCryLo *float64  `gorm:"column:indirect_eval_to_cry_lo" json:"indirect_eval_to_cry_lo"`
	IndirectEvalToCryHi *float64  `gorm:"column:indirect_eval_to_cry_hi" json:"indirect_eval_to_cry_hi"`
	TotalEvalToCry      *float64  `gorm:"column:total_eval_to_cry" json:"total_eval_to_cry"`
	TotalEvalToCryLo    *float64  `gorm:"column:total_eval_to_cry_lo" json:"total_eval_to_cry_lo"`
	TotalEvalToCryHi    *float64  `gorm:"column:total_eval_to_cry_hi" json:"total_eval_to_cry_hi"`
	NEpisodes           int       `gorm:"column:n_episodes;not null" json:"n_episodes"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (PathSummary) TableName() string { return "emotion_path_summary" }

// PathPartnerSummary restricts the path model to one partner role.
type PathPartnerSummary struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_path_partner,priority:1" json:"user_id"`
	PartnerRole    string    `gorm:"column:partner_role;type:varchar(32);not null;uniqueIndex:uq_path_partner,priority:2" json:"partner_role"`
	TotalEvalToCry *float64  `gorm:"column:total_eval_to_cry" json:"total_eval_to_cry"`
	NEpisodes      int       `gorm:"column:n_episodes;not null" json:"n_episodes"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (PathPartnerSummary) TableName() string { return "emotion_path_partner_summary" }
