package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/cqox-backend/internal/causal"
	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	"github.com/yungbote/cqox-backend/internal/data/repos"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/observability"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/pkg/pointers"
)

// EstimationConfig carries the estimator knobs resolved from configuration.
type EstimationConfig struct {
	Seed   uint64
	Effect causal.EffectOptions
	Path   causal.PathOptions
}

func DefaultEstimationConfig() EstimationConfig {
	return EstimationConfig{
		Effect: causal.DefaultEffectOptions(),
		Path:   causal.DefaultPathOptions(),
	}
}

// UserRunSummary describes what one user's estimation wrote.
type UserRunSummary struct {
	UserID   uuid.UUID
	Episodes int
	Effects  int
	Skipped  int
	Path     bool
	Partners int
}

type EstimationService interface {
	// Run re-estimates every user with completed episodes. A failure for one
	// user is logged and does not stop the others; the joined errors are
	// returned at the end.
	Run(ctx context.Context) ([]UserRunSummary, error)
	RunForUser(ctx context.Context, userID uuid.UUID) (UserRunSummary, error)
}

type estimationService struct {
	log     *logger.Logger
	records repos.EpisodeRecordRepo
	store   aggregates.ResultStore
	effects *causal.EffectEstimator
	paths   *causal.PathEstimator
	bus     EventBus
	metrics *observability.Metrics
}

func NewEstimationService(
	baseLog *logger.Logger,
	records repos.EpisodeRecordRepo,
	store aggregates.ResultStore,
	enc *causal.Encoder,
	cfg EstimationConfig,
	bus EventBus,
	metrics *observability.Metrics,
) EstimationService {
	if enc == nil {
		enc = causal.NewEncoder(causal.DefaultCatalog())
	}
	return &estimationService{
		log:     baseLog.With("service", "EstimationService"),
		records: records,
		store:   store,
		effects: causal.NewEffectEstimator(enc, cfg.Effect, cfg.Seed),
		paths:   causal.NewPathEstimator(cfg.Path, cfg.Seed),
		bus:     bus,
		metrics: metrics,
	}
}

func (s *estimationService) Run(ctx context.Context) ([]UserRunSummary, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRun(time.Since(start)) }()

	ctx, span := observability.Tracer().Start(ctx, "estimation.run")
	defer span.End()

	records, err := s.records.ListCompleted(dbctx.Context{Ctx: ctx}, repos.EpisodeFilter{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract")
		return nil, fmt.Errorf("extract episodes: %w", err)
	}
	ds := causal.NewDataset(records)
	users := ds.Users()
	span.SetAttributes(attribute.Int("episodes", ds.Len()), attribute.Int("users", len(users)))
	s.log.Info("estimation run started", "episodes", ds.Len(), "users", len(users))

	var (
		summaries = make([]UserRunSummary, 0, len(users))
		errs      []error
	)
	for _, uid := range users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		sum, err := s.estimateUser(ctx, uid, ds.UserRecords(uid))
		if err != nil {
			s.log.Error("user estimation failed", "user_id", uid, "error", err)
			errs = append(errs, fmt.Errorf("user %s: %w", uid, err))
			continue
		}
		summaries = append(summaries, sum)
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "partial failure")
		s.log.Warn("estimation run finished with failures", "users", len(users), "failed", len(errs), "elapsed", time.Since(start))
		return summaries, err
	}
	s.log.Info("estimation run finished", "users", len(users), "elapsed", time.Since(start))
	return summaries, nil
}

func (s *estimationService) RunForUser(ctx context.Context, userID uuid.UUID) (UserRunSummary, error) {
	if userID == uuid.Nil {
		return UserRunSummary{}, fmt.Errorf("missing user id")
	}
	records, err := s.records.ListCompleted(dbctx.Context{Ctx: ctx}, repos.EpisodeFilter{UserID: &userID})
	if err != nil {
		return UserRunSummary{}, fmt.Errorf("extract episodes: %w", err)
	}
	return s.estimateUser(ctx, userID, records)
}

func (s *estimationService) estimateUser(ctx context.Context, userID uuid.UUID, records []types.EpisodeRecord) (UserRunSummary, error) {
	ctx, span := observability.Tracer().Start(ctx, "estimation.user")
	defer span.End()
	span.SetAttributes(attribute.Int("episodes", len(records)))

	sum := UserRunSummary{UserID: userID, Episodes: len(records)}
	now := time.Now().UTC()
	res := aggregates.UserResults{UserID: userID}

	start := time.Now()
	effects, skips, err := s.effects.EstimateUser(ctx, userID, records)
	s.metrics.ObserveFit("effect", time.Since(start))
	if err != nil {
		s.fail(span, "effects", err)
		return sum, err
	}
	for _, sk := range skips {
		s.metrics.IncEstimateSkip("effect", skipReason(sk.Err))
		s.log.Debug("effect skipped",
			"user_id", userID,
			"treatment_key", sk.TreatmentKey,
			"outcome_name", sk.OutcomeName,
			"reason", sk.Err.Error(),
		)
	}
	for _, est := range effects {
		s.metrics.IncEstimate("effect")
		res.Effects = append(res.Effects, treatmentEffectRow(est, now))
	}
	sum.Effects = len(effects)
	sum.Skipped = len(skips)

	start = time.Now()
	path, err := s.paths.Estimate(ctx, userID, records)
	s.metrics.ObserveFit("path", time.Since(start))
	switch {
	case err == nil:
		s.metrics.IncEstimate("path")
		res.Path = pathSummaryRow(path, now)
		sum.Path = true
	case causal.IsSkip(err):
		s.metrics.IncEstimateSkip("path", skipReason(err))
		s.log.Debug("path model skipped", "user_id", userID, "reason", err.Error())
	default:
		s.fail(span, "path", err)
		return sum, fmt.Errorf("path model: %w", err)
	}

	start = time.Now()
	partners, err := s.paths.EstimatePartners(ctx, userID, records)
	s.metrics.ObserveFit("partner_path", time.Since(start))
	if err != nil {
		s.fail(span, "partner_path", err)
		return sum, fmt.Errorf("partner path model: %w", err)
	}
	for _, p := range partners {
		s.metrics.IncEstimate("partner_path")
		res.Partners = append(res.Partners, &types.PathPartnerSummary{
			UserID:         userID,
			PartnerRole:    p.PartnerRole,
			TotalEvalToCry: pointers.Float64(p.TotalEvalToCry.Mean),
			NEpisodes:      p.NEpisodes,
			UpdatedAt:      now,
		})
	}
	sum.Partners = len(partners)

	if res.Empty() {
		s.metrics.IncRunUser("empty")
		return sum, nil
	}
	if err := s.store.SaveUserResults(ctx, res); err != nil {
		s.fail(span, "store", err)
		return sum, fmt.Errorf("save results: %w", err)
	}
	s.metrics.IncRunUser("ok")
	s.log.Info("user estimates saved",
		"user_id", userID,
		"effects", sum.Effects,
		"skipped", sum.Skipped,
		"path", sum.Path,
		"partners", sum.Partners,
	)
	s.publishUpdated(ctx, sum)
	return sum, nil
}

func (s *estimationService) fail(span trace.Span, stage string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	if !errors.Is(err, context.Canceled) {
		s.metrics.IncRunUser("error")
	}
}

func (s *estimationService) publishUpdated(ctx context.Context, sum UserRunSummary) {
	if s.bus == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	err := s.bus.Publish(pctx, Event{
		Channel: sum.UserID.String(),
		Event:   EventEstimatesUpdated,
		Data: map[string]any{
			"effects":  sum.Effects,
			"path":     sum.Path,
			"partners": sum.Partners,
		},
	})
	if err != nil {
		s.log.Warn("publish estimates_updated failed", "user_id", sum.UserID, "error", err)
	}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, causal.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, causal.ErrDegenerate):
		return "degenerate"
	default:
		return "other"
	}
}

func treatmentEffectRow(est causal.EffectEstimate, now time.Time) *types.TreatmentEffect {
	return &types.TreatmentEffect{
		UserID:       est.UserID,
		TreatmentKey: est.TreatmentKey,
		OutcomeName:  est.OutcomeName,
		ATE:          est.ATE,
		CILower:      pointers.Float64(est.CILower),
		CIUpper:      pointers.Float64(est.CIUpper),
		NTreated:     est.NTreated,
		NControl:     est.NControl,
		ModelVersion: est.ModelVersion,
		UpdatedAt:    now,
	}
}

func pathSummaryRow(est causal.PathEstimate, now time.Time) *types.PathSummary {
	row := &types.PathSummary{
		UserID:    est.UserID,
		NEpisodes: est.NEpisodes,
		UpdatedAt: now,
	}
	row.Intercept, row.InterceptLo, row.InterceptHi = intervalPtrs(est.Intercept)
	row.AlphaEvalToStress, row.AlphaEvalToStressLo, row.AlphaEvalToStressHi = intervalPtrs(est.AlphaEvalToStress)
	row.BetaEvalToCry, row.BetaEvalToCryLo, row.BetaEvalToCryHi = intervalPtrs(est.BetaEvalToCry)
	row.BetaStressToCry, row.BetaStressToCryLo, row.BetaStressToCryHi = intervalPtrs(est.BetaStressToCry)
	row.BetaSuppressToCry, row.BetaSuppressToCryLo, row.BetaSuppressToCryHi = intervalPtrs(est.BetaSuppressToCry)
	row.BetaTraitToCry, row.BetaTraitToCryLo, row.BetaTraitToCryHi = intervalPtrs(est.BetaTraitToCry)
	row.IndirectEvalToCry, row.IndirectEvalToCryLo, row.IndirectEvalToCryHi = intervalPtrs(est.IndirectEvalToCry)
	row.TotalEvalToCry, row.TotalEvalToCryLo, row.TotalEvalToCryHi = intervalPtrs(est.TotalEvalToCry)
	return row
}

func intervalPtrs(iv causal.Interval) (*float64, *float64, *float64) {
	return pointers.Float64(iv.Mean), pointers.Float64(iv.Lo), pointers.Float64(iv.Hi)
}
