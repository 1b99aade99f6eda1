package causal

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/google/uuid"

	"github.com/yungbote/cqox-backend/internal/domain/emotion"
)

// EffectOptions tunes the partialling-out estimator.
type EffectOptions struct {
	MinRows          int
	TreatedThreshold float64
	Z                float64
	ModelVersion     string
	Forest           ForestConfig
}

func DefaultEffectOptions() EffectOptions {
	return EffectOptions{
		MinRows:          30,
		TreatedThreshold: 3,
		Z:                1.96,
		ModelVersion:     emotion.TreatmentModelVersion,
		Forest:           DefaultForestConfig(),
	}
}

// EffectEstimate is the fitted ATE for one (user, treatment, outcome).
type EffectEstimate struct {
	UserID       uuid.UUID
	TreatmentKey string
	OutcomeName  string
	ATE          float64
	SE           float64
	CILower      float64
	CIUpper      float64
	NTreated     int
	NControl     int
	ModelVersion string
}

// EffectSkip records why a combination produced no estimate.
type EffectSkip struct {
	TreatmentKey string
	OutcomeName  string
	Err          error
}

type EffectEstimator struct {
	encoder *Encoder
	opts    EffectOptions
	seed    uint64
}

func NewEffectEstimator(enc *Encoder, opts EffectOptions, seed uint64) *EffectEstimator {
	def := DefaultEffectOptions()
	if opts.MinRows <= 0 {
		opts.MinRows = def.MinRows
	}
	if opts.Z <= 0 {
		opts.Z = def.Z
	}
	if opts.ModelVersion == "" {
		opts.ModelVersion = def.ModelVersion
	}
	return &EffectEstimator{encoder: enc, opts: opts, seed: seed}
}

// EstimateUser fits every treatment x outcome pair for one user's records.
// Skipped pairs are reported, not returned as errors; the error return is
// reserved for cancellation.
func (e *EffectEstimator) EstimateUser(ctx context.Context, userID uuid.UUID, records []emotion.EpisodeRecord) ([]EffectEstimate, []EffectSkip, error) {
	var (
		out   []EffectEstimate
		skips []EffectSkip
	)
	for _, t := range emotion.TreatmentKeys {
		for _, o := range emotion.OutcomeNames {
			if err := ctx.Err(); err != nil {
				return out, skips, err
			}
			est, err := e.Estimate(ctx, userID, records, t, o)
			switch {
			case err == nil:
				out = append(out, est)
			case IsSkip(err):
				skips = append(skips, EffectSkip{TreatmentKey: t, OutcomeName: o, Err: err})
			case ctx.Err() != nil:
				return out, skips, ctx.Err()
			default:
				// A numeric failure on one pair must not stop the rest.
				skips = append(skips, EffectSkip{TreatmentKey: t, OutcomeName: o, Err: fmt.Errorf("%w: %v", ErrDegenerate, err)})
			}
		}
	}
	return out, skips, nil
}

// Estimate runs the double-residualization fit for one combination.
func (e *EffectEstimator) Estimate(ctx context.Context, userID uuid.UUID, records []emotion.EpisodeRecord, treatmentKey, outcomeName string) (EffectEstimate, error) {
	width := e.encoder.Width()
	var (
		x       [][]float64
		y       []float64
		treated []float64
	)
	for _, r := range records {
		intensity, ok := r.Intensity[treatmentKey]
		if !ok || !finite(intensity) {
			continue
		}
		outcome, ok := r.Outcome(outcomeName)
		if !ok || !finite(outcome) {
			continue
		}
		row := make([]float64, width)
		if !e.encoder.Encode(r, row) {
			continue
		}
		t := 0.0
		if intensity >= e.opts.TreatedThreshold {
			t = 1
		}
		x = append(x, row)
		y = append(y, outcome)
		treated = append(treated, t)
	}

	n := len(y)
	if n < e.opts.MinRows {
		return EffectEstimate{}, fmt.Errorf("%w: %d complete rows for %s/%s, need %d",
			ErrInsufficientData, n, treatmentKey, outcomeName, e.opts.MinRows)
	}
	nTreated := 0
	for _, t := range treated {
		if t == 1 {
			nTreated++
		}
	}
	nControl := n - nTreated
	if nTreated == 0 || nControl == 0 {
		return EffectEstimate{}, fmt.Errorf("%w: %s has %d treated and %d control rows",
			ErrDegenerate, treatmentKey, nTreated, nControl)
	}

	rng := NewRand(e.seed, userID, treatmentKey, outcomeName)
	forest, err := FitForest(ctx, x, y, e.opts.Forest, rng)
	if err != nil {
		return EffectEstimate{}, fmt.Errorf("fit outcome model: %w", err)
	}
	design := mat.NewDense(n, width, nil)
	for i, row := range x {
		design.SetRow(i, row)
	}
	propensity, err := FitOLS(design, treated)
	if err != nil {
		return EffectEstimate{}, fmt.Errorf("fit treatment model: %w", err)
	}

	ry := make([]float64, n)
	rt := make([]float64, n)
	for i := range x {
		ry[i] = y[i] - forest.Predict(x[i])
		rt[i] = treated[i] - propensity.Predict(x[i])
	}

	ate, se, err := residualSlope(rt, ry, treated)
	if err != nil {
		return EffectEstimate{}, err
	}
	return EffectEstimate{
		UserID:       userID,
		TreatmentKey: treatmentKey,
		OutcomeName:  outcomeName,
		ATE:          ate,
		SE:           se,
		CILower:      ate - e.opts.Z*se,
		CIUpper:      ate + e.opts.Z*se,
		NTreated:     nTreated,
		NControl:     nControl,
		ModelVersion: e.opts.ModelVersion,
	}, nil
}

// residualSlope regresses ry on rt with an intercept and returns the slope
// with its standard error, sqrt(mean(resid^2) / sum((rt - mean rt)^2)).
// A residualized treatment whose spread is lost to rounding relative to the
// raw treatment is reported as degenerate.
func residualSlope(rt, ry, treated []float64) (float64, float64, error) {
	rtMean := stat.Mean(rt, nil)
	var sxx float64
	for _, v := range rt {
		d := v - rtMean
		sxx += d * d
	}
	_, tVar := stat.PopMeanVariance(treated, nil)
	if sxx <= 1e-9*tVar*float64(len(treated)) || sxx == 0 {
		return 0, 0, fmt.Errorf("%w: residualized treatment has no variance", ErrDegenerate)
	}

	alpha, beta := stat.LinearRegression(rt, ry, nil, false)
	var sse float64
	for i := range rt {
		d := ry[i] - (alpha + beta*rt[i])
		sse += d * d
	}
	mse := sse / float64(len(rt))
	se := math.Sqrt(mse / sxx)
	if !finite(beta) || !finite(se) {
		return 0, 0, fmt.Errorf("%w: non-finite standard error", ErrDegenerate)
	}
	return beta, se, nil
}
