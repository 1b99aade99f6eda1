package emotion

import (
	"strings"

	"github.com/google/uuid"
)

// EpisodeRecord is the flat, read-only view of one completed episode that the
// estimators consume. Optional inputs stay nil when absent; they are never
// zero-filled here.
type EpisodeRecord struct {
	EpisodeID uuid.UUID
	UserID    uuid.UUID

	ScenarioType string
	Topic        string
	Location     string

	PreAnxiety         float64
	PreCryingRisk      float64
	PreSpeechBlockRisk float64

	CryingLevel        float64
	StressAfter        float64
	ExpressionScore    float64
	RelationshipImpact float64

	// Intensities keyed by template key; every key in TreatmentKeys is present.
	Intensity map[string]float64

	EvalThreatLevel     *float64
	SuppressIntentLevel *float64
	PartnerRole         *string

	TraitSocialAnxiety   *float64
	TraitCryingProneness *float64
}

// Outcome returns the named outcome metric.
func (r EpisodeRecord) Outcome(name string) (float64, bool) {
	switch name {
	case OutcomeCrying:
		return r.CryingLevel, true
	case OutcomeStressAfter:
		return r.StressAfter, true
	case OutcomeExpression:
		return r.ExpressionScore, true
	case OutcomeRelationship:
		return r.RelationshipImpact, true
	default:
		return 0, false
	}
}

// PartnerRoleOrDefault groups episodes without a recorded role together.
// Surrounding whitespace is ignored, so a blank role is unspecified.
func (r EpisodeRecord) PartnerRoleOrDefault() string {
	if r.PartnerRole == nil {
		return UnspecifiedPartner
	}
	role := strings.TrimSpace(*r.PartnerRole)
	if role == "" {
		return UnspecifiedPartner
	}
	return role
}
