package causal

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

var testUser = uuid.MustParse("6f1c1a52-8d0e-4f7e-9a55-0c1b2d3e4f50")

// baseRecord is a complete record with every treatment at zero.
func baseRecord(i int) emotion.EpisodeRecord {
	intensity := make(map[string]float64, len(emotion.TreatmentKeys))
	for _, k := range emotion.TreatmentKeys {
		intensity[k] = 0
	}
	return emotion.EpisodeRecord{
		EpisodeID:          uuid.NewSHA1(testUser, []byte{byte(i), byte(i >> 8)}),
		UserID:             testUser,
		ScenarioType:       string(emotion.ScenarioInterview),
		Topic:              "転職理由",
		Location:           "online",
		PreAnxiety:         5,
		PreCryingRisk:      5,
		PreSpeechBlockRisk: 5,
		CryingLevel:        5,
		StressAfter:        5,
		ExpressionScore:    5,
		RelationshipImpact: 0,
		Intensity:          intensity,
	}
}

// negativeEffectRecords has treatment intensities cycling 0/5/8 with the
// outcome falling as intensity rises and confounders held fixed.
func negativeEffectRecords(n int) []emotion.EpisodeRecord {
	levels := []float64{0, 5, 8}
	out := make([]emotion.EpisodeRecord, n)
	for i := range out {
		r := baseRecord(i)
		v := levels[i%len(levels)]
		r.Intensity[emotion.TreatmentJournaling] = v
		noise := float64(i%4) * 0.1
		r.CryingLevel = 8 - 0.7*v + noise
		r.StressAfter = 7 - 0.5*v + noise
		r.ExpressionScore = 3 + 0.4*v - noise
		r.RelationshipImpact = 0.2*v - noise
		out[i] = r
	}
	return out
}

// pathRecords generates crying = 2*threat + noise with stress and
// suppression drawn independently of threat.
func pathRecords(n int, seed uint64) []emotion.EpisodeRecord {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]emotion.EpisodeRecord, n)
	for i := range out {
		r := baseRecord(i)
		threat := float64(rng.IntN(5))
		r.EvalThreatLevel = pointers.Float64(threat)
		r.SuppressIntentLevel = pointers.Float64(float64(rng.IntN(11)))
		r.PreAnxiety = float64(rng.IntN(11))
		r.CryingLevel = 2*threat + float64(rng.IntN(3))
		r.TraitSocialAnxiety = pointers.Float64(6)
		r.TraitCryingProneness = pointers.Float64(4)
		out[i] = r
	}
	return out
}
