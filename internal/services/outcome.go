package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cqox-backend/internal/data/aggregates"
	"github.com/yungbote/cqox-backend/internal/data/repos"
	types "github.com/yungbote/cqox-backend/internal/domain/emotion"
	"github.com/yungbote/cqox-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/cqox-backend/internal/pkg/errors"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

// OutcomeInput is the post-conversation report for one episode.
type OutcomeInput struct {
	StressDuring           int                    `json:"stress_during"`
	StressAfter            int                    `json:"stress_after"`
	CryingLevel            int                    `json:"crying_level"`
	SpeechBlockLevel       int                    `json:"speech_block_level"`
	ExpressionScore        int                    `json:"expression_score"`
	RelationshipImpact     int                    `json:"relationship_impact"`
	PartnerReaction        *types.PartnerReaction `json:"partner_reaction,omitempty"`
	DaysAfterReflection    *int                   `json:"days_after_reflection,omitempty"`
	WouldRepeatPreparation *int                   `json:"would_repeat_preparation,omitempty"`
	ReflectionShort        *string                `json:"reflection_short,omitempty"`
}

func (in OutcomeInput) Validate() error {
	scores := []struct {
		name     string
		v        int
		min, max int
	}{
		{"stress_during", in.StressDuring, 0, 10},
		{"stress_after", in.StressAfter, 0, 10},
		{"crying_level", in.CryingLevel, 0, 10},
		{"speech_block_level", in.SpeechBlockLevel, 0, 10},
		{"expression_score", in.ExpressionScore, 0, 10},
		{"relationship_impact", in.RelationshipImpact, -5, 5},
	}
	for _, s := range scores {
		if s.v < s.min || s.v > s.max {
			return fmt.Errorf("%w: %s must be within [%d, %d]", pkgerrors.ErrInvalidArgument, s.name, s.min, s.max)
		}
	}
	if in.PartnerReaction != nil && !in.PartnerReaction.Valid() {
		return fmt.Errorf("%w: unknown partner_reaction %q", pkgerrors.ErrInvalidArgument, *in.PartnerReaction)
	}
	if v := in.DaysAfterReflection; v != nil && (*v < 0 || *v > 30) {
		return fmt.Errorf("%w: days_after_reflection must be within [0, 30]", pkgerrors.ErrInvalidArgument)
	}
	if v := in.WouldRepeatPreparation; v != nil && (*v < 0 || *v > 10) {
		return fmt.Errorf("%w: would_repeat_preparation must be within [0, 10]", pkgerrors.ErrInvalidArgument)
	}
	return nil
}

type OutcomeService interface {
	// RecordOutcome stores the outcome, completes the episode and queues a
	// re-estimation for the user. The enqueue runs after commit and its
	// failure never undoes the outcome.
	RecordOutcome(ctx context.Context, userID, episodeID uuid.UUID, in OutcomeInput) (*types.Outcome, error)
}

type outcomeService struct {
	log      *logger.Logger
	runner   aggregates.TxRunner
	episodes repos.EpisodeRepo
	outcomes repos.OutcomeRepo
	jobs     JobService
}

func NewOutcomeService(
	baseLog *logger.Logger,
	runner aggregates.TxRunner,
	episodes repos.EpisodeRepo,
	outcomes repos.OutcomeRepo,
	jobs JobService,
) OutcomeService {
	return &outcomeService{
		log:      baseLog.With("service", "OutcomeService"),
		runner:   runner,
		episodes: episodes,
		outcomes: outcomes,
		jobs:     jobs,
	}
}

func (s *outcomeService) RecordOutcome(ctx context.Context, userID, episodeID uuid.UUID, in OutcomeInput) (*types.Outcome, error) {
	if userID == uuid.Nil || episodeID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user or episode id", pkgerrors.ErrInvalidArgument)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var row *types.Outcome
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		ep, err := s.episodes.GetByID(dbc, episodeID)
		if err != nil {
			return fmt.Errorf("load episode: %w", err)
		}
		if ep == nil || ep.UserID != userID {
			return pkgerrors.ErrNotFound
		}
		existing, err := s.outcomes.GetByEpisodeID(dbc, episodeID)
		if err != nil {
			return fmt.Errorf("load outcome: %w", err)
		}
		if existing != nil {
			return pkgerrors.ErrAlreadyRecorded
		}

		row = &types.Outcome{
			EpisodeID:              episodeID,
			StressDuring:           in.StressDuring,
			StressAfter:            in.StressAfter,
			CryingLevel:            in.CryingLevel,
			SpeechBlockLevel:       in.SpeechBlockLevel,
			ExpressionScore:        in.ExpressionScore,
			RelationshipImpact:     in.RelationshipImpact,
			PartnerReaction:        in.PartnerReaction,
			DaysAfterReflection:    in.DaysAfterReflection,
			WouldRepeatPreparation: in.WouldRepeatPreparation,
			ReflectionShort:        in.ReflectionShort,
			CreatedAt:              time.Now().UTC(),
		}
		if err := s.outcomes.Create(dbc, row); err != nil {
			return fmt.Errorf("create outcome: %w", err)
		}
		if err := s.episodes.MarkCompleted(dbc, episodeID); err != nil {
			return fmt.Errorf("complete episode: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) || errors.Is(err, pkgerrors.ErrAlreadyRecorded) {
			return nil, err
		}
		// A concurrent insert for the same episode surfaces as a conflict.
		return nil, aggregates.MapError("outcome.record", err)
	}

	s.log.Info("outcome recorded", "user_id", userID, "episode_id", episodeID)
	if s.jobs != nil {
		if _, _, err := s.jobs.EnqueueEstimateIfNeeded(dbctx.Context{Ctx: context.WithoutCancel(ctx)}, userID, "outcome_recorded"); err != nil {
			s.log.Error("enqueue estimation failed", "user_id", userID, "error", err)
		}
	}
	return row, nil
}
