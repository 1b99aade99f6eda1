package emotion

type ScenarioType string

const (
	ScenarioInterview ScenarioType = "interview"
	ScenarioOneOnOne  ScenarioType = "one_on_one"
	ScenarioPartner   ScenarioType = "partner"
	ScenarioFamily    ScenarioType = "family"
	ScenarioFriend    ScenarioType = "friend"
	ScenarioClient    ScenarioType = "client"
	ScenarioOther     ScenarioType = "other"
)

type EpisodeStatus string

const (
	EpisodePlanned   EpisodeStatus = "planned"
	EpisodeCompleted EpisodeStatus = "completed"
	EpisodeCancelled EpisodeStatus = "cancelled"
)

type PartnerReaction string

const (
	ReactionVeryPositive PartnerReaction = "very_positive"
	ReactionPositive     PartnerReaction = "positive"
	ReactionNeutral      PartnerReaction = "neutral"
	ReactionNegative     PartnerReaction = "negative"
	ReactionVeryNegative PartnerReaction = "very_negative"
	ReactionUnknown      PartnerReaction = "unknown"
)

// Preparation template keys. Order is stable and is used for seed derivation.
const (
	TreatmentJournaling   = "journaling_10m"
	TreatmentMessages     = "three_messages"
	TreatmentBreathing    = "breathing_4_7_8"
	TreatmentRoleplay     = "roleplay_self_qa"
	TreatmentSafeWord     = "safe_word_plan"
	OutcomeCrying         = "crying_level"
	OutcomeStressAfter    = "stress_after"
	OutcomeExpression     = "expression_score"
	OutcomeRelationship   = "relationship_impact"
	UnspecifiedPartner    = "unspecified"
	TreatmentModelVersion = "v1.0-dml"
)

var TreatmentKeys = []string{
	TreatmentJournaling,
	TreatmentMessages,
	TreatmentBreathing,
	TreatmentRoleplay,
	TreatmentSafeWord,
}

var OutcomeNames = []string{
	OutcomeCrying,
	OutcomeStressAfter,
	OutcomeExpression,
	OutcomeRelationship,
}

func IsTreatmentKey(key string) bool {
	for _, k := range TreatmentKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (r PartnerReaction) Valid() bool {
	switch r {
	case ReactionVeryPositive, ReactionPositive, ReactionNeutral,
		ReactionNegative, ReactionVeryNegative, ReactionUnknown:
		return true
	}
	return false
}
