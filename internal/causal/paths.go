package causal

import (
	"context"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/google/uuid"

	"github.com/yungbote/cqox-backend/internal/domain/emotion"
)

// IntervalMode selects how the indirect and total intervals are formed.
type IntervalMode string

const (
	// IntervalJoint takes percentiles of the per-resample indirect and total.
	IntervalJoint IntervalMode = "joint"
	// IntervalMarginal combines the separate alpha and beta percentile bounds.
	IntervalMarginal IntervalMode = "marginal"
)

func ParseIntervalMode(s string) (IntervalMode, error) {
	switch IntervalMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", IntervalJoint:
		return IntervalJoint, nil
	case IntervalMarginal:
		return IntervalMarginal, nil
	default:
		return "", fmt.Errorf("unknown path interval mode %q", s)
	}
}

type PathOptions struct {
	MinEpisodes  int
	Bootstrap    int
	RidgeAlpha   float64
	TraitDefault float64
	IntervalMode IntervalMode
}

func DefaultPathOptions() PathOptions {
	return PathOptions{
		MinEpisodes:  10,
		Bootstrap:    100,
		RidgeAlpha:   1,
		TraitDefault: 5,
		IntervalMode: IntervalJoint,
	}
}

// PathRow is one complete observation of both structural equations.
type PathRow struct {
	EvalThreat           float64
	Stress               float64
	Suppress             float64
	Crying               float64
	TraitSocialAnxiety   float64
	TraitCryingProneness float64
}

// PathRows projects records onto the path model. Rows missing the threat,
// suppression, stress proxy or crying level are dropped; missing trait
// values take the mean of the observed ones, or traitDefault when none are.
func PathRows(records []emotion.EpisodeRecord, traitDefault float64) []PathRow {
	rows := make([]PathRow, 0, len(records))
	var social, crying []*float64
	for _, r := range records {
		if r.EvalThreatLevel == nil || r.SuppressIntentLevel == nil {
			continue
		}
		if !finite(*r.EvalThreatLevel) || !finite(*r.SuppressIntentLevel) ||
			!finite(r.PreAnxiety) || !finite(r.CryingLevel) {
			continue
		}
		rows = append(rows, PathRow{
			EvalThreat: *r.EvalThreatLevel,
			Stress:     r.PreAnxiety,
			Suppress:   *r.SuppressIntentLevel,
			Crying:     r.CryingLevel,
		})
		social = append(social, r.TraitSocialAnxiety)
		crying = append(crying, r.TraitCryingProneness)
	}
	socialFill := imputeValue(social, traitDefault)
	cryingFill := imputeValue(crying, traitDefault)
	for i := range rows {
		rows[i].TraitSocialAnxiety = valueOr(social[i], socialFill)
		rows[i].TraitCryingProneness = valueOr(crying[i], cryingFill)
	}
	return rows
}

func imputeValue(vals []*float64, fallback float64) float64 {
	var sum float64
	var n int
	for _, v := range vals {
		if v != nil && finite(*v) {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil || !finite(*v) {
		return fallback
	}
	return *v
}

// pathCoefficients is one fit of both equations.
type pathCoefficients struct {
	intercept    float64
	alphaEval    float64
	betaEval     float64
	betaStress   float64
	betaSuppress float64
	betaTrait    float64
	indirect     float64
	total        float64
}

// PathEstimate holds bootstrap summaries for every path quantity. Means are
// bootstrap means; Indirect.Mean and Total.Mean are derived from them so
// Total.Mean == BetaEvalToCry.Mean + AlphaEvalToStress.Mean*BetaStressToCry.Mean.
type PathEstimate struct {
	UserID            uuid.UUID
	Intercept         Interval
	AlphaEvalToStress Interval
	BetaEvalToCry     Interval
	BetaStressToCry   Interval
	BetaSuppressToCry Interval
	BetaTraitToCry    Interval
	IndirectEvalToCry Interval
	TotalEvalToCry    Interval
	NEpisodes         int
}

// PartnerPathEstimate is the per partner role total effect.
type PartnerPathEstimate struct {
	PartnerRole    string
	TotalEvalToCry Interval
	NEpisodes      int
}

type PathEstimator struct {
	opts PathOptions
	seed uint64
}

func NewPathEstimator(opts PathOptions, seed uint64) *PathEstimator {
	def := DefaultPathOptions()
	if opts.MinEpisodes <= 0 {
		opts.MinEpisodes = def.MinEpisodes
	}
	if opts.Bootstrap <= 0 {
		opts.Bootstrap = def.Bootstrap
	}
	if opts.RidgeAlpha <= 0 {
		opts.RidgeAlpha = def.RidgeAlpha
	}
	if opts.IntervalMode == "" {
		opts.IntervalMode = def.IntervalMode
	}
	return &PathEstimator{opts: opts, seed: seed}
}

func (p *PathEstimator) Options() PathOptions { return p.opts }

// Estimate fits the user's full path model. labels extend the random stream
// so partner-role fits draw different resamples than the user-level fit.
func (p *PathEstimator) Estimate(ctx context.Context, userID uuid.UUID, records []emotion.EpisodeRecord, labels ...string) (PathEstimate, error) {
	rows := PathRows(records, p.opts.TraitDefault)
	n := len(rows)
	if n < p.opts.MinEpisodes {
		return PathEstimate{}, fmt.Errorf("%w: %d complete path rows, need %d",
			ErrInsufficientData, n, p.opts.MinEpisodes)
	}

	rng := NewRand(p.seed, userID, append([]string{"path"}, labels...)...)
	b := p.opts.Bootstrap
	draws := make([]pathCoefficients, 0, b)
	idx := make([]int, n)
	sample := make([]PathRow, n)
	for k := 0; k < b; k++ {
		if err := ctx.Err(); err != nil {
			return PathEstimate{}, err
		}
		for i := range idx {
			idx[i] = rng.IntN(n)
		}
		for i, j := range idx {
			sample[i] = rows[j]
		}
		c, err := fitPathEquations(sample, p.opts.RidgeAlpha)
		if err != nil {
			return PathEstimate{}, err
		}
		draws = append(draws, c)
	}
	return p.summarize(userID, draws, n), nil
}

// EstimatePartners fits the path model per partner role; roles under the
// guard are omitted.
func (p *PathEstimator) EstimatePartners(ctx context.Context, userID uuid.UUID, records []emotion.EpisodeRecord) ([]PartnerPathEstimate, error) {
	roles, groups := GroupByPartnerRole(records)
	out := make([]PartnerPathEstimate, 0, len(roles))
	for _, role := range roles {
		est, err := p.Estimate(ctx, userID, groups[role], "partner", role)
		if err != nil {
			if IsSkip(err) {
				continue
			}
			return out, fmt.Errorf("partner %q: %w", role, err)
		}
		out = append(out, PartnerPathEstimate{
			PartnerRole:    role,
			TotalEvalToCry: est.TotalEvalToCry,
			NEpisodes:      est.NEpisodes,
		})
	}
	return out, nil
}

func fitPathEquations(rows []PathRow, alpha float64) (pathCoefficients, error) {
	n := len(rows)
	xs := mat.NewDense(n, 2, nil)
	ys := make([]float64, n)
	xc := mat.NewDense(n, 4, nil)
	yc := make([]float64, n)
	for i, r := range rows {
		xs.SetRow(i, []float64{r.EvalThreat, r.TraitSocialAnxiety})
		ys[i] = r.Stress
		xc.SetRow(i, []float64{r.EvalThreat, r.Stress, r.Suppress, r.TraitCryingProneness})
		yc[i] = r.Crying
	}
	mediator, err := FitRidge(xs, ys, alpha)
	if err != nil {
		return pathCoefficients{}, fmt.Errorf("fit stress equation: %w", err)
	}
	outcome, err := FitRidge(xc, yc, alpha)
	if err != nil {
		return pathCoefficients{}, fmt.Errorf("fit crying equation: %w", err)
	}
	c := pathCoefficients{
		intercept:    outcome.Intercept,
		alphaEval:    mediator.Coef[0],
		betaEval:     outcome.Coef[0],
		betaStress:   outcome.Coef[1],
		betaSuppress: outcome.Coef[2],
		betaTrait:    outcome.Coef[3],
	}
	c.indirect = float64(c.alphaEval * c.betaStress)
	c.total = c.betaEval + c.indirect
	return c, nil
}

func (p *PathEstimator) summarize(userID uuid.UUID, draws []pathCoefficients, n int) PathEstimate {
	column := func(get func(pathCoefficients) float64) []float64 {
		out := make([]float64, len(draws))
		for i, d := range draws {
			out[i] = get(d)
		}
		return out
	}
	mean := func(v []float64) float64 {
		var s float64
		for _, x := range v {
			s += x
		}
		return s / float64(len(v))
	}
	summary := func(v []float64) Interval { return percentileInterval(mean(v), v) }

	intercept := column(func(c pathCoefficients) float64 { return c.intercept })
	alphaEval := column(func(c pathCoefficients) float64 { return c.alphaEval })
	betaEval := column(func(c pathCoefficients) float64 { return c.betaEval })
	betaStress := column(func(c pathCoefficients) float64 { return c.betaStress })
	betaSuppress := column(func(c pathCoefficients) float64 { return c.betaSuppress })
	betaTrait := column(func(c pathCoefficients) float64 { return c.betaTrait })

	est := PathEstimate{
		UserID:            userID,
		Intercept:         summary(intercept),
		AlphaEvalToStress: summary(alphaEval),
		BetaEvalToCry:     summary(betaEval),
		BetaStressToCry:   summary(betaStress),
		BetaSuppressToCry: summary(betaSuppress),
		BetaTraitToCry:    summary(betaTrait),
		NEpisodes:         n,
	}

	indirect := float64(est.AlphaEvalToStress.Mean * est.BetaStressToCry.Mean)
	total := est.BetaEvalToCry.Mean + indirect

	switch p.opts.IntervalMode {
	case IntervalMarginal:
		a, b := est.AlphaEvalToStress, est.BetaStressToCry
		iLo, iHi := productBounds(a.Lo, a.Hi, b.Lo, b.Hi)
		est.IndirectEvalToCry = covering(indirect, iLo, iHi)
		est.TotalEvalToCry = covering(total, est.BetaEvalToCry.Lo+iLo, est.BetaEvalToCry.Hi+iHi)
	default:
		est.IndirectEvalToCry = percentileInterval(indirect, column(func(c pathCoefficients) float64 { return c.indirect }))
		est.TotalEvalToCry = percentileInterval(total, column(func(c pathCoefficients) float64 { return c.total }))
	}
	return est
}
