// Package sample generates synthetic journaling data with a known causal
// structure so estimation can be exercised locally.
package sample

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

// namespace keeps generated ids stable for a given seed.
var namespace = uuid.MustParse("3b0c6f6e-5d4a-4c55-9e0e-6f1f3a2b9c10")

type Config struct {
	Episodes int
	Users    int
	// HeavyUsers get HeavyWeight times the share of episodes of other users.
	HeavyUsers  int
	HeavyWeight int
	Seed        uint64
	// Today anchors scheduled_at; episodes after it stay planned or cancelled.
	Today time.Time
	// TraitCoverage is the share of users that get a trait profile.
	TraitCoverage float64
}

func DefaultConfig() Config {
	return Config{
		Episodes:      5000,
		Users:         30,
		HeavyUsers:    5,
		HeavyWeight:   5,
		Seed:          42,
		Today:         time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC),
		TraitCoverage: 0.8,
	}
}

// Data is one generated batch, ready to insert.
type Data struct {
	Users        []uuid.UUID
	Episodes     []*types.Episode
	Preparations []*types.PreparationExecution
	Outcomes     []*types.Outcome
	Traits       []*types.TraitProfile
}

type scenario struct {
	kind        types.ScenarioType
	weight      float64
	baseAnxiety float64
	topics      []string
	partnerRole string
}

var scenarios = []scenario{
	{types.ScenarioInterview, 0.25, 7.5, []string{"転職理由", "キャリアの方向性", "過去の退職理由", "評価面談"}, "面接官"},
	{types.ScenarioOneOnOne, 0.20, 6.0, []string{"評価フィードバック", "キャリア相談", "業務負荷の相談", "人間関係の摩擦"}, "上司"},
	{types.ScenarioPartner, 0.15, 7.0, []string{"将来の暮らし", "お金の話", "結婚について", "別れ話", "距離を置きたい"}, "恋人"},
	{types.ScenarioFamily, 0.10, 5.5, []string{"親への近況報告", "進路の話", "介護の相談", "家族との距離感"}, "親"},
	{types.ScenarioFriend, 0.10, 4.5, []string{"久しぶりの再会", "価値観のズレ", "謝罪", "疎遠になっている理由"}, "友人"},
	{types.ScenarioClient, 0.10, 6.5, []string{"トラブルの謝罪", "値上げ交渉", "契約更新", "納期遅延の相談"}, "顧客"},
	{types.ScenarioOther, 0.10, 5.0, []string{"自己開示の練習", "セラピーではない雑談", "将来への漠然とした不安"}, ""},
}

var locations = []string{"online", "office", "home", "cafe", "coworking", "client_site", "park"}

var cryingTopics = map[string]bool{"過去の退職理由": true, "別れ話": true, "距離を置きたい": true, "介護の相談": true}

var reflections = []string{
	"少し泣いたけど言いたいことは伝えられた。",
	"ほとんど話せずに終わってしまった。次は準備を変えたい。",
	"かなり落ち着いて話せた。準備が効いた感じがある。",
	"相手の反応が予想外で混乱した。振り返りが必要。",
	"泣かなかったが本音をあまり出せなかった。",
	"かなりつらかったが、終わってみると少し楽になった。",
	"正直、今回はタイミングを間違えたかもしれない。",
}

var reactions = []types.PartnerReaction{
	types.ReactionVeryPositive,
	types.ReactionPositive,
	types.ReactionNeutral,
	types.ReactionNegative,
	types.ReactionVeryNegative,
	types.ReactionUnknown,
}

type generator struct {
	rng *rand.Rand
}

func (g *generator) clippedNormal(mu, sigma, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, mu+sigma*g.rng.NormFloat64()))
}

func (g *generator) score(mu, sigma, lo, hi float64) int {
	return int(math.Round(g.clippedNormal(mu, sigma, lo, hi)))
}

func (g *generator) weighted(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	x := g.rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

func (g *generator) intBetween(lo, hi int) int { return lo + g.rng.IntN(hi-lo+1) }

func prepProbability(key string, kind types.ScenarioType) float64 {
	in := func(kinds ...types.ScenarioType) bool {
		for _, k := range kinds {
			if k == kind {
				return true
			}
		}
		return false
	}
	switch key {
	case types.TreatmentJournaling:
		if in(types.ScenarioInterview, types.ScenarioPartner, types.ScenarioFamily) {
			return 0.55
		}
		return 0.35
	case types.TreatmentMessages:
		if in(types.ScenarioInterview, types.ScenarioClient, types.ScenarioOneOnOne) {
			return 0.65
		}
		return 0.40
	case types.TreatmentBreathing:
		return 0.50
	case types.TreatmentRoleplay:
		if in(types.ScenarioInterview, types.ScenarioClient) {
			return 0.40
		}
		return 0.25
	case types.TreatmentSafeWord:
		if in(types.ScenarioPartner, types.ScenarioFamily, types.ScenarioFriend) {
			return 0.25
		}
		return 0.10
	}
	return 0
}

// Generate builds a deterministic batch for cfg.Seed. Outcomes depend on the
// preparations, the pre-state, evaluation threat and the user's traits.
func Generate(cfg Config) (*Data, error) {
	def := DefaultConfig()
	if cfg.Episodes <= 0 {
		return nil, fmt.Errorf("episodes must be positive")
	}
	if cfg.Users <= 0 {
		cfg.Users = def.Users
	}
	if cfg.HeavyUsers > cfg.Users {
		cfg.HeavyUsers = cfg.Users
	}
	if cfg.HeavyWeight <= 0 {
		cfg.HeavyWeight = 1
	}
	if cfg.Today.IsZero() {
		cfg.Today = def.Today
	}
	g := &generator{rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))}
	data := &Data{}

	userWeights := make([]float64, cfg.Users)
	traits := make(map[uuid.UUID]*types.TraitProfile, cfg.Users)
	for i := range userWeights {
		userWeights[i] = 1
		if i < cfg.HeavyUsers {
			userWeights[i] = float64(cfg.HeavyWeight)
		}
		uid := uuid.NewSHA1(namespace, []byte(fmt.Sprintf("user-%d-%d", cfg.Seed, i)))
		data.Users = append(data.Users, uid)
		if g.rng.Float64() < cfg.TraitCoverage {
			tp := &types.TraitProfile{
				UserID:               uid,
				TraitSocialAnxiety:   g.score(5, 2, 0, 10),
				TraitCryingProneness: g.score(5, 2, 0, 10),
				TraitSuppression:     g.score(5, 2, 0, 10),
				UpdatedAt:            cfg.Today,
			}
			traits[uid] = tp
			data.Traits = append(data.Traits, tp)
		}
	}

	scenarioWeights := make([]float64, len(scenarios))
	for i, s := range scenarios {
		scenarioWeights[i] = s.weight
	}

	for n := 0; n < cfg.Episodes; n++ {
		uid := data.Users[g.weighted(userWeights)]
		sc := scenarios[g.weighted(scenarioWeights)]
		topic := sc.topics[g.rng.IntN(len(sc.topics))]

		scheduled := cfg.Today.
			AddDate(0, 0, g.intBetween(-730, 90)).
			Add(time.Duration(g.intBetween(8, 22))*time.Hour + time.Duration(g.intBetween(0, 59))*time.Minute)
		location := locations[g.rng.IntN(len(locations))]

		var status types.EpisodeStatus
		if scheduled.After(cfg.Today) {
			status = []types.EpisodeStatus{types.EpisodePlanned, types.EpisodeCancelled}[g.weighted([]float64{0.8, 0.2})]
		} else {
			status = []types.EpisodeStatus{types.EpisodeCompleted, types.EpisodeCancelled}[g.weighted([]float64{0.85, 0.15})]
		}

		base := sc.baseAnxiety
		preAnxiety := g.score(base, 2, 0, 10)
		topicBonus := 0.0
		if cryingTopics[topic] {
			topicBonus = 1
		}
		preCrying := g.score(base-1+topicBonus, 2, 0, 10)
		preSpeech := g.score(base-0.5, 2, 0, 10)

		evalBonus := 0.0
		if sc.kind == types.ScenarioInterview || sc.kind == types.ScenarioOneOnOne || sc.kind == types.ScenarioClient {
			evalBonus = 1.5
		}
		evalThreat := g.score(base-1+evalBonus, 2, 0, 10)
		suppressMu := 5.0
		if tp := traits[uid]; tp != nil {
			suppressMu = float64(tp.TraitSuppression)
		}
		suppress := g.score(suppressMu, 2, 0, 10)

		ep := &types.Episode{
			ID:                  uuid.NewSHA1(namespace, []byte(fmt.Sprintf("episode-%d-%d", cfg.Seed, n))),
			UserID:              uid,
			ScenarioType:        sc.kind,
			Topic:               topic,
			ScheduledAt:         scheduled,
			Location:            location,
			Status:              status,
			PreAnxiety:          preAnxiety,
			PreCryingRisk:       preCrying,
			PreSpeechBlockRisk:  preSpeech,
			EvalThreatLevel:     pointers.Int(evalThreat),
			SuppressIntentLevel: pointers.Int(suppress),
			CreatedAt:           scheduled.Add(-72 * time.Hour),
			UpdatedAt:           scheduled,
		}
		if sc.partnerRole != "" {
			ep.ContextPartnerRole = pointers.String(sc.partnerRole)
		}
		data.Episodes = append(data.Episodes, ep)

		intensity := make(map[string]int, len(types.TreatmentKeys))
		for _, key := range types.TreatmentKeys {
			switch {
			case g.rng.Float64() < prepProbability(key, sc.kind):
				intensity[key] = g.score(7, 2, 3, 10)
			case g.rng.Float64() < 0.05:
				intensity[key] = g.intBetween(1, 3)
			}
			if intensity[key] == 0 {
				continue
			}
			prep := &types.PreparationExecution{
				EpisodeID:        ep.ID,
				TemplateKey:      key,
				PlannedIntensity: pointers.Int(intensity[key]),
				CreatedAt:        ep.CreatedAt,
			}
			if status == types.EpisodeCompleted {
				prep.ActualIntensity = pointers.Int(intensity[key])
			}
			data.Preparations = append(data.Preparations, prep)
		}

		if status != types.EpisodeCompleted {
			continue
		}
		data.Outcomes = append(data.Outcomes, g.outcome(ep, intensity, traits[uid]))
	}
	return data, nil
}

func (g *generator) outcome(ep *types.Episode, intensity map[string]int, tp *types.TraitProfile) *types.Outcome {
	f := func(key string) float64 { return float64(intensity[key]) }
	pre := float64(ep.PreAnxiety)
	prepEffect := (0.25*f(types.TreatmentJournaling) +
		0.35*f(types.TreatmentMessages) +
		0.20*f(types.TreatmentBreathing) +
		0.25*f(types.TreatmentRoleplay)) / 10

	stressDuring := g.score(pre+0.5-0.3*prepEffect, 1.8, 0, 10)
	stressAfter := g.score(math.Max(pre-1-1.5*prepEffect, 0), 2, 0, 10)

	traitCrying := 5.0
	if tp != nil {
		traitCrying = float64(tp.TraitCryingProneness)
	}
	cryingBase := float64(ep.PreCryingRisk) +
		0.5*(float64(stressDuring)-pre) -
		0.3*f(types.TreatmentJournaling)/2 -
		0.2*f(types.TreatmentBreathing)/2 +
		0.3*(float64(*ep.EvalThreatLevel)-5) -
		0.1*(float64(*ep.SuppressIntentLevel)-5) +
		0.2*(traitCrying-5)
	crying := g.score(cryingBase, 2, 0, 10)

	speechBase := float64(ep.PreSpeechBlockRisk) + 0.4*(float64(stressDuring)-pre) - 0.3*f(types.TreatmentMessages)/2
	speech := g.score(speechBase, 2, 0, 10)

	exprBase := 5 + 0.4*f(types.TreatmentMessages)/2 + 0.3*f(types.TreatmentRoleplay)/2 - 0.25*float64(speech) - 0.15*float64(crying)
	expression := g.score(exprBase, 2.5, 0, 10)

	relBase := -1 + 0.4*float64(expression-5)/2 - 0.25*math.Max(float64(stressDuring-6), 0)
	relationship := g.score(relBase, 1.8, -5, 5)

	r := float64(relationship)
	reaction := reactions[g.weighted([]float64{
		math.Max(0.1, 0.3+0.05*r),
		math.Max(0.1, 0.3+0.04*r),
		0.3,
		math.Max(0.05, 0.2-0.04*r),
		math.Max(0.02, 0.1-0.05*r),
		0.2,
	})]

	o := &types.Outcome{
		EpisodeID:          ep.ID,
		StressDuring:       stressDuring,
		StressAfter:        stressAfter,
		CryingLevel:        crying,
		SpeechBlockLevel:   speech,
		ExpressionScore:    expression,
		RelationshipImpact: relationship,
		PartnerReaction:    &reaction,
		CreatedAt:          ep.ScheduledAt.Add(2 * time.Hour),
	}
	if g.rng.Float64() < 0.7 {
		o.DaysAfterReflection = pointers.Int(g.intBetween(1, 14))
		o.WouldRepeatPreparation = pointers.Int(g.score(math.Max(5, float64(expression)-math.Max(float64(crying)-4, 0)), 2, 0, 10))
		o.ReflectionShort = pointers.String(reflections[g.rng.IntN(len(reflections))])
	}
	return o
}
